package security

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
)

var operatorSecret = []byte("operator-secret")

func TestOperatorToken_RoundTrip(t *testing.T) {
	token, err := SignOperatorToken(operatorSecret, "front-desk", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateOperatorToken(token, operatorSecret)
	require.NoError(t, err)
	assert.Equal(t, "front-desk", claims.Subject)
	assert.Equal(t, "ibe", claims.Issuer)
}

func TestValidateOperatorToken_Rejects(t *testing.T) {
	foreign, err := SignOperatorToken([]byte("someone-else"), "front-desk", time.Hour)
	require.NoError(t, err)
	expired, err := SignOperatorToken(operatorSecret, "front-desk", -time.Minute)
	require.NoError(t, err)
	pmsToken, err := SignAccessToken(operatorSecret, 7, time.Hour)
	require.NoError(t, err)
	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ibe",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(operatorSecret)
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS512, OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "ibe"},
	}).SignedString(operatorSecret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", foreign},
		{"expired", expired},
		{"pms access token", pmsToken},
		{"hs256", hs256},
		{"no exp", noExp},
		{"garbage", "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateOperatorToken(tt.token, operatorSecret)
			assert.Error(t, err)
		})
	}
}

func TestOperatorToken_EmptySecret(t *testing.T) {
	_, err := SignOperatorToken(nil, "front-desk", time.Hour)
	assert.ErrorIs(t, err, errNoOperatorSecret)

	token, err := SignOperatorToken(operatorSecret, "front-desk", time.Hour)
	require.NoError(t, err)
	_, err = ValidateOperatorToken(token, nil)
	assert.ErrorIs(t, err, errNoOperatorSecret)
}

func TestOperatorMiddleware(t *testing.T) {
	valid, err := SignOperatorToken(operatorSecret, "front-desk", time.Hour)
	require.NoError(t, err)

	var (
		seenSubject string
		seenErr     error
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := OperatorFromContext(r.Context())
		require.True(t, ok)
		seenSubject = claims.Subject
		w.WriteHeader(http.StatusNoContent)
	})
	onError := func(w http.ResponseWriter, _ *http.Request, err error) {
		seenErr = err
		w.WriteHeader(http.StatusUnauthorized)
	}

	tests := []struct {
		name   string
		header string
		secret []byte
		status int
	}{
		{"valid", "Bearer " + valid, operatorSecret, http.StatusNoContent},
		{"missing header", "", operatorSecret, http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, operatorSecret, http.StatusUnauthorized},
		{"empty bearer", "Bearer ", operatorSecret, http.StatusUnauthorized},
		{"no secret configured", "Bearer " + valid, nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenSubject, seenErr = "", nil
			req := httptest.NewRequest(http.MethodPost, "/session/refresh", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			OperatorMiddleware(tt.secret, onError)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				assert.Equal(t, "front-desk", seenSubject)
				return
			}
			assert.Empty(t, seenSubject)
			assert.True(t, errors.Is(seenErr, model.ErrUnauthorized))
		})
	}
}
