package ports

import (
	"context"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
)

// CredentialStoreInterface persists the session token pair.
// Load returns model.ErrSessionNotFound when nothing is stored.
// Clear wipes every key of the session namespace and is a no-op when empty.
type CredentialStoreInterface interface {
	Load(ctx context.Context) (*model.TokenPair, error)
	Save(ctx context.Context, pair *model.TokenPair) error
	Clear(ctx context.Context) error
}

// TokenRefresherInterface exchanges the current pair for a new one.
// A non-2xx answer is reported as *model.RefreshFailedError.
type TokenRefresherInterface interface {
	RefreshTokens(ctx context.Context, pair model.TokenPair) (*model.TokenPair, error)
}

type TokenSourceInterface interface {
	GetToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

type PaymentCredentialsFetcherInterface interface {
	FetchPaymentCredentials(ctx context.Context, hotelID int) ([]model.GatewayCredential, error)
}

type PromotionsFetcherInterface interface {
	FetchPromotions(ctx context.Context, hotelID int) ([]model.PromotionRule, error)
}

type NotifierInterface interface {
	NotifyPaymentConfigError(ctx context.Context, hotelID int, reason error)
}

type SessionManagerInterface interface {
	Seed(ctx context.Context, accessToken, refreshToken string) error
	Refresh(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
	Status(ctx context.Context) (model.SessionStatus, error)
}

type PaymentSignerInterface interface {
	Sign(ctx context.Context, request model.SigningRequest) (string, error)
	BuildCheckout(ctx context.Context, hotelID int, order model.CheckoutOrder) (*model.CheckoutForm, error)
}

type PromotionApplierInterface interface {
	Apply(ctx context.Context, hotelID int, code string, draft model.BookingDraft) (*model.PromotionRule, error)
}
