package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/logctx"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/metrics"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/ports"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/security"
)

// DefaultFreshnessWindow bounds how old a persisted pair may be to be used
// without a refresh exchange.
const DefaultFreshnessWindow = 5 * time.Minute

// DefaultExchangeTimeout bounds a refresh exchange. The exchange is detached
// from the caller that started it, so it needs its own deadline.
const DefaultExchangeTimeout = 30 * time.Second

const refreshKey = "refresh"

// TokenManager owns one session: an in-memory copy of the token pair backed by
// a credential store, refreshed through the PMS refresh endpoint.
type TokenManager struct {
	CredentialStore ports.CredentialStoreInterface
	TokenRefresher  ports.TokenRefresherInterface
	FreshnessWindow time.Duration
	ExchangeTimeout time.Duration
	Now             func() time.Time

	mu          sync.RWMutex
	cached      *model.TokenPair
	lastCreated time.Time
	generation  uint64

	// storeMu serializes Saves and store reconciliation. Clear does not take
	// it, so a logout never waits behind a slow Save.
	storeMu sync.Mutex

	group singleflight.Group
}

func NewTokenManager(store ports.CredentialStoreInterface, refresher ports.TokenRefresherInterface, freshnessWindow time.Duration) *TokenManager {
	return &TokenManager{
		CredentialStore: store,
		TokenRefresher:  refresher,
		FreshnessWindow: freshnessWindow,
	}
}

func (m *TokenManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *TokenManager) freshnessWindow() time.Duration {
	if m.FreshnessWindow > 0 {
		return m.FreshnessWindow
	}
	return DefaultFreshnessWindow
}

func (m *TokenManager) exchangeTimeout() time.Duration {
	if m.ExchangeTimeout > 0 {
		return m.ExchangeTimeout
	}
	return DefaultExchangeTimeout
}

func (m *TokenManager) currentGeneration() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// Seed replaces the session with a pair obtained at login.
// Failing to persist is logged; the in-memory copy is still updated.
func (m *TokenManager) Seed(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return model.ErrEmptyToken
	}

	pair := &model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}

	m.mu.Lock()
	m.generation++
	generation := m.generation
	m.cacheLocked(pair)
	m.mu.Unlock()

	if !m.persist(ctx, pair, generation) {
		logctx.From(ctx).Info("seed superseded by a newer session change")
		return nil
	}
	logctx.From(ctx).Info("session seeded")
	return nil
}

// GetToken returns the cached access token, a fresh persisted one, or the
// result of a refresh exchange, in that order.
func (m *TokenManager) GetToken(ctx context.Context) (string, error) {
	const op = "service.TokenManager.GetToken"

	m.mu.RLock()
	cached, generation := m.cached, m.generation
	m.mu.RUnlock()
	if cached != nil {
		return cached.AccessToken, nil
	}

	stored, err := m.CredentialStore.Load(ctx)
	switch {
	case err == nil:
		if stored.Age(m.now()) < m.freshnessWindow() {
			if current, ok := m.adopt(stored, generation); ok {
				return current.AccessToken, nil
			}
			return "", fmt.Errorf("%s: %w", op, model.ErrNoCredentials)
		}
	case errors.Is(err, model.ErrSessionNotFound):
		return "", fmt.Errorf("%s: %w", op, model.ErrNoCredentials)
	default:
		logctx.From(ctx).Warn("credential store load failed", slog.String("op", op), slog.Any("err", err))
	}

	return m.Refresh(ctx)
}

// Refresh always performs the exchange. Concurrent callers share one request.
// The exchange runs detached from any single caller: a caller whose context
// ends stops waiting, but the exchange still completes and is persisted.
func (m *TokenManager) Refresh(ctx context.Context) (string, error) {
	ch := m.group.DoChan(refreshKey, func() (interface{}, error) {
		exchangeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.exchangeTimeout())
		defer cancel()
		return m.refresh(exchangeCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			logctx.From(ctx).Debug("joined in-flight token refresh")
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("service.TokenManager.Refresh: %w", ctx.Err())
	}
}

func (m *TokenManager) refresh(ctx context.Context) (string, error) {
	const op = "service.TokenManager.Refresh"

	generation := m.currentGeneration()

	current, err := m.CredentialStore.Load(ctx)
	if errors.Is(err, model.ErrSessionNotFound) {
		metrics.ObserveRefresh(metrics.ResultNone)
		return "", fmt.Errorf("%s: %w", op, model.ErrNoCredentials)
	}
	if err != nil {
		// The store write is best-effort, so the cache may hold the only copy.
		m.mu.RLock()
		current = m.cached
		m.mu.RUnlock()
		if current == nil {
			metrics.ObserveRefresh(metrics.ResultError)
			return "", fmt.Errorf("%s: %w", op, err)
		}
		logctx.From(ctx).Warn("credential store load failed, refreshing cached pair", slog.Any("err", err))
	}

	next, err := m.TokenRefresher.RefreshTokens(ctx, *current)
	if err != nil {
		if model.IsRefreshFailed(err) {
			metrics.ObserveRefresh(metrics.ResultRejected)
			logctx.From(ctx).Warn("token refresh rejected", slog.Any("err", err))
		} else {
			metrics.ObserveRefresh(metrics.ResultError)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	// A Clear or Seed during the exchange wins over its result.
	m.mu.Lock()
	live := m.generation == generation
	if live {
		m.cacheLocked(next)
	}
	m.mu.Unlock()

	if !live || !m.persist(ctx, next, generation) {
		m.mu.RLock()
		latest := m.cached
		m.mu.RUnlock()
		if latest == nil {
			return "", fmt.Errorf("%s: %w", op, model.ErrNoCredentials)
		}
		return latest.AccessToken, nil
	}
	metrics.ObserveRefresh(metrics.ResultOK)
	logctx.From(ctx).Info("session refreshed")
	return next.AccessToken, nil
}

// Clear drops the cached pair and wipes the persisted session namespace.
// Safe to call without a session.
func (m *TokenManager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.cached = nil
	m.generation++
	generation := m.generation
	m.mu.Unlock()

	if err := m.CredentialStore.Clear(ctx); err != nil {
		return fmt.Errorf("service.TokenManager.Clear: %w", err)
	}
	if m.currentGeneration() != generation {
		// a Seed raced the wipe
		m.storeMu.Lock()
		m.syncStoreLocked(ctx, generation)
		m.storeMu.Unlock()
	}
	logctx.From(ctx).Info("session cleared")
	return nil
}

// Status describes the session without revealing the tokens.
func (m *TokenManager) Status(ctx context.Context) (model.SessionStatus, error) {
	m.mu.RLock()
	pair := m.cached
	m.mu.RUnlock()

	if pair == nil {
		stored, err := m.CredentialStore.Load(ctx)
		if errors.Is(err, model.ErrSessionNotFound) {
			return model.SessionStatus{}, nil
		}
		if err != nil {
			return model.SessionStatus{}, fmt.Errorf("service.TokenManager.Status: %w", err)
		}
		pair = stored
	}

	createdAt := pair.CreatedAt
	status := model.SessionStatus{
		Active:    true,
		CreatedAt: &createdAt,
		Fresh:     pair.Age(m.now()) < m.freshnessWindow(),
	}
	if exp, ok := security.AccessTokenExpiry(pair.AccessToken); ok {
		status.AccessExpireAt = &exp
	}
	return status, nil
}

// cacheLocked stamps a strictly increasing createdAt and makes pair the
// cached session. The caller holds mu.
func (m *TokenManager) cacheLocked(pair *model.TokenPair) {
	createdAt := m.now()
	if !createdAt.After(m.lastCreated) {
		createdAt = m.lastCreated.Add(time.Nanosecond)
	}
	m.lastCreated = createdAt
	pair.CreatedAt = createdAt
	m.cached = pair
}

// persist writes the pair cached for generation to the store. It reports
// false when generation is no longer current, either before the write
// (nothing is written) or after it (the store is brought back in line with
// the newer session state).
func (m *TokenManager) persist(ctx context.Context, pair *model.TokenPair, generation uint64) bool {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	if m.currentGeneration() != generation {
		return false
	}
	if err := m.CredentialStore.Save(ctx, pair); err != nil {
		logctx.From(ctx).Warn("credential store save failed", slog.Any("err", err))
	}

	if m.currentGeneration() == generation {
		return true
	}
	m.syncStoreLocked(ctx, generation)
	return false
}

// syncStoreLocked rewrites the store from the cache until no session change
// lands during the write. The caller holds storeMu and has written state for
// generation, which is now stale.
func (m *TokenManager) syncStoreLocked(ctx context.Context, generation uint64) {
	for {
		m.mu.RLock()
		latest, current := m.cached, m.generation
		m.mu.RUnlock()
		if current == generation {
			return
		}
		generation = current

		var err error
		if latest == nil {
			err = m.CredentialStore.Clear(ctx)
		} else {
			err = m.CredentialStore.Save(ctx, latest)
		}
		if err != nil {
			logctx.From(ctx).Warn("credential store resync failed", slog.Any("err", err))
		}
	}
}

// adopt installs a persisted pair unless the session changed since it was
// read or another pair got cached first. It returns the pair now in effect.
func (m *TokenManager) adopt(pair *model.TokenPair, generation uint64) (*model.TokenPair, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != generation {
		return m.cached, m.cached != nil
	}
	if m.cached != nil {
		return m.cached, true
	}
	m.cached = pair
	if pair.CreatedAt.After(m.lastCreated) {
		m.lastCreated = pair.CreatedAt
	}
	return pair, true
}
