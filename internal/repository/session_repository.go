package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal"
	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
)

const sessionTable = "ibe_session_state"

const sessionSchema = `CREATE TABLE IF NOT EXISTS ibe_session_state (
	namespace  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      BYTEA       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SessionRepository persists session values in Postgres, one row per key.
type SessionRepository struct {
	*internal.Database
	namespace string
}

func NewSessionRepository(database *internal.Database, namespace string) *SessionRepository {
	return &SessionRepository{Database: database, namespace: namespaceOrDefault(namespace)}
}

func (repository *SessionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := repository.DB.ExecContext(ctx, sessionSchema); err != nil {
		return fmt.Errorf("create session table: %w", err)
	}
	return nil
}

func (repository *SessionRepository) Load(ctx context.Context) (*model.TokenPair, error) {
	query, args, err := repository.selectQuery(model.SessionKey).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session query: %w", err)
	}

	var stored model.StoredSession
	err = repository.DB.GetContext(ctx, &stored, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}

	return decodePair(stored.Value)
}

func (repository *SessionRepository) Save(ctx context.Context, pair *model.TokenPair) error {
	data, err := encodePair(pair)
	if err != nil {
		return err
	}

	query, args, err := repository.upsertQuery(model.SessionKey, data, time.Now()).ToSql()
	if err != nil {
		return fmt.Errorf("build session upsert: %w", err)
	}

	if _, err := repository.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Clear deletes every row of the namespace.
func (repository *SessionRepository) Clear(ctx context.Context) error {
	query, args, err := repository.deleteQuery().ToSql()
	if err != nil {
		return fmt.Errorf("build session delete: %w", err)
	}

	if _, err := repository.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (repository *SessionRepository) selectQuery(key string) sq.SelectBuilder {
	return psql.
		Select("namespace", "key", "value", "updated_at").
		From(sessionTable).
		Where(sq.Eq{"namespace": repository.namespace, "key": key})
}

func (repository *SessionRepository) upsertQuery(key string, value []byte, now time.Time) sq.InsertBuilder {
	return psql.
		Insert(sessionTable).
		Columns("namespace", "key", "value", "updated_at").
		Values(repository.namespace, key, value, now).
		Suffix("ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at")
}

func (repository *SessionRepository) deleteQuery() sq.DeleteBuilder {
	return psql.
		Delete(sessionTable).
		Where(sq.Eq{"namespace": repository.namespace})
}
