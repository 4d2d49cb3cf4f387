package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/citrus-hotelmate/ibe-v2-sub001/config"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/handler"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/logctx"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/notifier"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/pms"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/ports"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/repository"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/service"
)

// App holds the wired services shared by the HTTP server and the CLI.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Tokens     *service.TokenManager
	PMS        *pms.AuthorizedClient
	Signer     *service.SignatureService
	Promotions *service.PromotionService
	Notifier   *notifier.WebhookNotifier

	closers []func() error
}

func SetupLogger(cfg *config.Config) *slog.Logger {
	logger := logctx.New(cfg.Env)
	slog.SetDefault(logger)
	return logger
}

func SetupDatabase(ctx context.Context, cfg *config.Config) (*internal.Database, error) {
	database, err := internal.NewDatabaseConnection(ctx, cfg.Database.Driver, cfg.Database.ConnectionString, cfg.Database.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}
	return database, nil
}

// SetupCredentialStore builds the store selected by session.store. The
// returned close func is never nil.
func SetupCredentialStore(ctx context.Context, cfg *config.Config) (ports.CredentialStoreInterface, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Session.Store {
	case config.StoreMemory:
		return repository.NewMemorySessionRepository(), noop, nil
	case config.StoreFile:
		store, err := repository.NewFileSessionRepository(cfg.Session.FileDir, cfg.Session.Namespace, cfg.Session.EncryptionKey)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case config.StorePostgres:
		database, err := SetupDatabase(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		store := repository.NewSessionRepository(database, cfg.Session.Namespace)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = database.Close()
			return nil, noop, err
		}
		return store, database.Close, nil
	case config.StoreRedis:
		store, err := repository.NewRedisSessionRepository(ctx, cfg.Session.RedisURL, cfg.Session.Namespace, cfg.Session.RedisTTL)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: unknown session store %q", config.ErrInvalidConfig, cfg.Session.Store)
	}
}

// SetupApp wires the token manager, PMS client and domain services.
func SetupApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, closeStore, err := SetupCredentialStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var opts []pms.ClientOption
	if cfg.PMS.LogRequests {
		opts = append(opts, pms.WithRequestLogging())
	}
	client := pms.NewClient(pms.Config{
		BaseURL:         cfg.PMS.BaseURL,
		RefreshPath:     cfg.PMS.RefreshPath,
		CredentialsPath: cfg.PMS.CredentialsPath,
		PromotionsPath:  cfg.PMS.PromotionsPath,
		Timeout:         cfg.PMS.Timeout,
	}, opts...)

	tokens := service.NewTokenManager(store, client, cfg.Session.FreshnessWindow)
	tokens.ExchangeTimeout = cfg.PMS.Timeout
	authorized := client.Authorized(tokens)
	webhook := notifier.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout)

	app := &App{
		Config: cfg,
		Logger: logger,
		Tokens: tokens,
		PMS:    authorized,
		Signer: service.NewSignatureService(authorized, webhook, service.PaymentDefaults{
			Locale:          cfg.Payment.Locale,
			TransactionType: cfg.Payment.TransactionType,
			Currency:        cfg.Payment.Currency,
		}),
		Promotions: service.NewPromotionService(authorized),
		Notifier:   webhook,
		closers:    []func() error{closeStore},
	}
	return app, nil
}

// Close waits for pending webhook posts and releases the credential store.
func (app *App) Close() error {
	app.Notifier.Wait()

	var firstErr error
	for _, closeFn := range app.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func SetupServer(cfg *config.Config, app *App) *http.Server {
	sessions := handler.NewSessionHandler(app.Tokens)
	sessions.RequestTimeout = cfg.Server.RequestTimeout
	payments := handler.NewPaymentHandler(app.Signer)
	payments.RequestTimeout = cfg.Server.RequestTimeout
	promotions := handler.NewPromotionHandler(app.Promotions)
	promotions.RequestTimeout = cfg.Server.RequestTimeout

	router := handler.NewRouter(handler.Handlers{
		Session:   sessions,
		Payment:   payments,
		Promotion: promotions,
	}, handler.RouterOptions{
		Logger:         app.Logger,
		BasePath:       cfg.Server.BasePath,
		OperatorSecret: []byte(cfg.Server.OperatorSecret),
	})

	return &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}
}
