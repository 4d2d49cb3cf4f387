package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/logctx"
)

const defaultConnectTimeout = 20 * time.Second

type Database struct {
	*sqlx.DB
}

// NewDatabaseConnection opens the pool and pings it with exponential backoff
// until connectTimeout elapses.
func NewDatabaseConnection(ctx context.Context, dbDriver string, dbConnectionStr string, connectTimeout time.Duration) (*Database, error) {
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	database, err := sqlx.Open(dbDriver, dbConnectionStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = time.Second
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = connectTimeout / 4
	eb.MaxElapsedTime = connectTimeout

	err = backoff.Retry(func() error {
		return database.PingContext(ctx)
	}, backoff.WithContext(eb, ctx))
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logctx.From(ctx).Info("database connected", slog.String("driver", dbDriver))
	return &Database{
		database,
	}, nil
}

func (db *Database) Close() error {
	err := db.DB.Close()
	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	return nil
}
