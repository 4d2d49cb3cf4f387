package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/logctx"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
)

const operatorIssuer = "ibe"

// OperatorClaims identify who may manage the shared PMS session.
type OperatorClaims struct {
	jwt.RegisteredClaims
}

type operatorKey struct{}

var errNoOperatorSecret = errors.New("operator secret is not configured")

// SignOperatorToken issues an HS512 operator token for subject.
func SignOperatorToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errNoOperatorSecret
	}

	now := time.Now()
	claims := OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    operatorIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign operator token: %w", err)
	}
	return token, nil
}

// ValidateOperatorToken accepts only unexpired HS512 tokens signed with secret.
func ValidateOperatorToken(tokenStr string, secret []byte) (*OperatorClaims, error) {
	if len(secret) == 0 {
		return nil, errNoOperatorSecret
	}

	claims := &OperatorClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(operatorIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid operator token: %w", err)
	}
	return claims, nil
}

// OperatorFromContext returns the claims put there by OperatorMiddleware.
func OperatorFromContext(ctx context.Context) (*OperatorClaims, bool) {
	claims, ok := ctx.Value(operatorKey{}).(*OperatorClaims)
	return claims, ok
}

// OperatorMiddleware requires "Authorization: Bearer <operator token>". An
// empty secret rejects every request. Failures are written by onError with
// model.ErrUnauthorized.
func OperatorMiddleware(secret []byte, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			tokenStr, ok := strings.CutPrefix(request.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenStr == "" {
				onError(writer, request, model.ErrUnauthorized)
				return
			}

			claims, err := ValidateOperatorToken(tokenStr, secret)
			if err != nil {
				logctx.From(ctx).Warn("operator token rejected", slog.Any("err", err))
				onError(writer, request, errors.Join(model.ErrUnauthorized, err))
				return
			}

			ctx = context.WithValue(ctx, operatorKey{}, claims)
			ctx = logctx.Into(ctx, logctx.From(ctx).With(slog.String("operator", claims.Subject)))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
