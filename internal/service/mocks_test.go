package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
)

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Load(ctx context.Context) (*model.TokenPair, error) {
	args := m.Called(ctx)
	pair := args.Get(0)
	if pair == nil {
		return nil, args.Error(1)
	}
	return pair.(*model.TokenPair), args.Error(1)
}

func (m *MockCredentialStore) Save(ctx context.Context, pair *model.TokenPair) error {
	return m.Called(ctx, pair).Error(0)
}

func (m *MockCredentialStore) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockTokenRefresher struct {
	mock.Mock
}

func (m *MockTokenRefresher) RefreshTokens(ctx context.Context, pair model.TokenPair) (*model.TokenPair, error) {
	args := m.Called(ctx, pair)
	next := args.Get(0)
	if next == nil {
		return nil, args.Error(1)
	}
	return next.(*model.TokenPair), args.Error(1)
}

type MockCredentialsFetcher struct {
	mock.Mock
}

func (m *MockCredentialsFetcher) FetchPaymentCredentials(ctx context.Context, hotelID int) ([]model.GatewayCredential, error) {
	args := m.Called(ctx, hotelID)
	records, _ := args.Get(0).([]model.GatewayCredential)
	return records, args.Error(1)
}

type MockPromotionsFetcher struct {
	mock.Mock
}

func (m *MockPromotionsFetcher) FetchPromotions(ctx context.Context, hotelID int) ([]model.PromotionRule, error) {
	args := m.Called(ctx, hotelID)
	rules, _ := args.Get(0).([]model.PromotionRule)
	return rules, args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyPaymentConfigError(ctx context.Context, hotelID int, reason error) {
	m.Called(ctx, hotelID, reason)
}
