package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/logctx"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/metrics"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/ports"
)

const signedDateTimeLayout = "2006-01-02T15:04:05Z"

// checkoutSignedFields is the order the hosted payment page expects.
var checkoutSignedFields = []string{
	"access_key",
	"profile_id",
	"transaction_uuid",
	model.SignedFieldNamesKey,
	model.UnsignedFieldNamesKey,
	"signed_date_time",
	"locale",
	"transaction_type",
	"reference_number",
	"amount",
	"currency",
}

type PaymentDefaults struct {
	Locale          string
	TransactionType string
	Currency        string
}

// SignatureService signs payment-redirect field sets with the hotel's
// gateway secret. The secret never leaves this type.
type SignatureService struct {
	CredentialsFetcher ports.PaymentCredentialsFetcherInterface
	Notifier           ports.NotifierInterface
	Defaults           PaymentDefaults
	Now                func() time.Time
	NewTransactionID   func() string
}

func NewSignatureService(fetcher ports.PaymentCredentialsFetcherInterface, notifier ports.NotifierInterface, defaults PaymentDefaults) *SignatureService {
	return &SignatureService{
		CredentialsFetcher: fetcher,
		Notifier:           notifier,
		Defaults:           defaults,
	}
}

// Sign validates the request, resolves the hotel secret and returns the
// base64 HMAC-SHA256 of the canonical string.
func (s *SignatureService) Sign(ctx context.Context, request model.SigningRequest) (string, error) {
	const op = "service.SignatureService.Sign"

	if err := ValidateSigningRequest(request); err != nil {
		metrics.ObserveSignature(metrics.ResultRejected)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	credential, err := s.resolveCredential(ctx, request.HotelID)
	if err != nil {
		metrics.ObserveSignature(metrics.ResultError)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	signature := ComputeSignature(CanonicalString(request.Fields, request.SignedFieldNames), credential.SecretKey)
	metrics.ObserveSignature(metrics.ResultOK)
	logctx.From(ctx).Debug("payment fields signed",
		slog.Int("hotel_id", request.HotelID),
		slog.Int("signed_fields", len(request.SignedFieldNames)),
	)
	return signature, nil
}

// BuildCheckout assembles the full hosted-page field set for an order and
// signs it with a single credential lookup.
func (s *SignatureService) BuildCheckout(ctx context.Context, hotelID int, order model.CheckoutOrder) (*model.CheckoutForm, error) {
	const op = "service.SignatureService.BuildCheckout"

	if err := validateOrder(order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	credential, err := s.resolveCredential(ctx, hotelID)
	if err != nil {
		metrics.ObserveSignature(metrics.ResultError)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fields := map[string]string{
		"access_key":                credential.AccessKey,
		"profile_id":                credential.ProfileID,
		"transaction_uuid":          s.transactionID(),
		model.SignedFieldNamesKey:   strings.Join(checkoutSignedFields, ","),
		model.UnsignedFieldNamesKey: "",
		"signed_date_time":          s.now().UTC().Format(signedDateTimeLayout),
		"locale":                    firstNonEmpty(order.Locale, s.Defaults.Locale, "en"),
		"transaction_type":          firstNonEmpty(s.Defaults.TransactionType, "sale"),
		"reference_number":          order.ReferenceNumber,
		"amount":                    order.Amount,
		"currency":                  strings.ToUpper(firstNonEmpty(order.Currency, s.Defaults.Currency)),
	}

	signature := ComputeSignature(CanonicalString(fields, checkoutSignedFields), credential.SecretKey)
	metrics.ObserveSignature(metrics.ResultOK)
	logctx.From(ctx).Info("checkout form signed",
		slog.Int("hotel_id", hotelID),
		slog.String("reference_number", order.ReferenceNumber),
	)
	return &model.CheckoutForm{Fields: fields, Signature: signature}, nil
}

func (s *SignatureService) resolveCredential(ctx context.Context, hotelID int) (*model.GatewayCredential, error) {
	if hotelID <= 0 {
		return nil, model.ErrInvalidHotelID
	}

	records, err := s.CredentialsFetcher.FetchPaymentCredentials(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("fetch payment credentials: %w", err)
	}

	switch {
	case len(records) == 0:
		err = model.ErrHotelNotFound
	case records[0].SecretKey == "":
		err = model.ErrSecretMissing
	default:
		return &records[0], nil
	}

	logctx.From(ctx).Error("hotel payment configuration error", slog.Int("hotel_id", hotelID), slog.Any("err", err))
	if s.Notifier != nil {
		s.Notifier.NotifyPaymentConfigError(ctx, hotelID, err)
	}
	return nil, err
}

func (s *SignatureService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SignatureService) transactionID() string {
	if s.NewTransactionID != nil {
		return s.NewTransactionID()
	}
	return uuid.NewString()
}

// ValidateSigningRequest checks that names are given and all present in fields.
func ValidateSigningRequest(request model.SigningRequest) error {
	if len(request.SignedFieldNames) == 0 {
		return fmt.Errorf("%w: no signed field names", model.ErrMissingFields)
	}

	var missing []string
	for _, name := range request.SignedFieldNames {
		if _, ok := request.Fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", model.ErrMissingFields, strings.Join(missing, ","))
	}
	return nil
}

// CanonicalString joins name=value pairs with "," in the order of names.
func CanonicalString(fields map[string]string, names []string) string {
	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+fields[name])
	}
	return strings.Join(pairs, ",")
}

func ComputeSignature(canonical, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonical))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ParseSignedFieldNames reads the ordered names from the signed_field_names field.
func ParseSignedFieldNames(fields map[string]string) []string {
	raw, ok := fields[model.SignedFieldNamesKey]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}

	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func validateOrder(order model.CheckoutOrder) error {
	if strings.TrimSpace(order.ReferenceNumber) == "" {
		return fmt.Errorf("%w: reference number required", model.ErrInvalidOrder)
	}
	amount, err := strconv.ParseFloat(order.Amount, 64)
	if err != nil || amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive decimal", model.ErrInvalidOrder)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// IsPaymentConfigError reports errors caused by the property's gateway setup.
func IsPaymentConfigError(err error) bool {
	return errors.Is(err, model.ErrHotelNotFound) || errors.Is(err, model.ErrSecretMissing)
}
