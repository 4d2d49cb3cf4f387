package pms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
)

type MockTokenSource struct {
	mock.Mock
}

func (m *MockTokenSource) GetToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockTokenSource) Refresh(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL}, WithRequestLogging())
}

func TestRefreshTokens_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, DefaultRefreshPath, r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "old-access", body["accessToken"])
		assert.Equal(t, "old-refresh", body["refreshToken"])

		writeJSON(w, http.StatusOK, map[string]string{"accessToken": "new-access", "refreshToken": "new-refresh"})
	})

	pair, err := client.RefreshTokens(context.Background(), model.TokenPair{AccessToken: "old-access", RefreshToken: "old-refresh"})
	require.NoError(t, err)
	assert.Equal(t, "new-access", pair.AccessToken)
	assert.Equal(t, "new-refresh", pair.RefreshToken)
}

func TestRefreshTokens_Rejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "revoked"})
	})

	_, err := client.RefreshTokens(context.Background(), model.TokenPair{AccessToken: "a", RefreshToken: "r"})
	var refreshErr *model.RefreshFailedError
	require.ErrorAs(t, err, &refreshErr)
	assert.Equal(t, http.StatusForbidden, refreshErr.Status)
}

func TestRefreshTokens_EmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	_, err := client.RefreshTokens(context.Background(), model.TokenPair{AccessToken: "a", RefreshToken: "r"})
	assert.ErrorIs(t, err, ErrEmptyRefreshResponse)
}

func TestFetchPaymentCredentials_BearerAndPath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/hotels/7/payment-gateway", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"hotelId": 7, "accessKey": "ak", "profileId": "pf", "secretKey": "sk"},
		})
	})

	tokens := new(MockTokenSource)
	tokens.On("GetToken", mock.Anything).Return("access-1", nil)

	records, err := client.Authorized(tokens).FetchPaymentCredentials(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "sk", records[0].SecretKey)
	tokens.AssertNotCalled(t, "Refresh", mock.Anything)
}

func TestFetchPaymentCredentials_NotFoundIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	tokens := new(MockTokenSource)
	tokens.On("GetToken", mock.Anything).Return("access-1", nil)

	records, err := client.Authorized(tokens).FetchPaymentCredentials(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAuthorized_RefreshesOnceOnUnauthorized(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"promoCode": "SUMMER10", "dateFrom": "2025-01-01", "dateTo": "2025-12-31", "isActive": true, "promoType": "PERCENTAGE", "earlyBookingDays": 14},
		})
	})

	tokens := new(MockTokenSource)
	tokens.On("GetToken", mock.Anything).Return("stale", nil)
	tokens.On("Refresh", mock.Anything).Return("fresh", nil).Once()

	rules, err := client.Authorized(tokens).FetchPromotions(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, model.PromoTypePercentage, rules[0].PromoType)
	require.NotNil(t, rules[0].EarlyBookingDays)
	assert.Equal(t, 14, *rules[0].EarlyBookingDays)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	tokens.AssertExpectations(t)
}

func TestAuthorized_SecondUnauthorizedIsStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	tokens := new(MockTokenSource)
	tokens.On("GetToken", mock.Anything).Return("stale", nil)
	tokens.On("Refresh", mock.Anything).Return("still-bad", nil).Once()

	_, err := client.Authorized(tokens).Fetch(context.Background(), "/api/hotels/3")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Status)
	tokens.AssertExpectations(t)
}

func TestAuthorized_NoCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a token")
	})

	tokens := new(MockTokenSource)
	tokens.On("GetToken", mock.Anything).Return("", model.ErrNoCredentials)

	_, err := client.Authorized(tokens).Fetch(context.Background(), "/api/hotels/3")
	assert.ErrorIs(t, err, model.ErrNoCredentials)
}
