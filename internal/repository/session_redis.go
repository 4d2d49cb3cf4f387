package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
)

const redisScanBatch = 100

// RedisSessionRepository stores session values as plain keys "<namespace>:<key>".
type RedisSessionRepository struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionRepository connects using a URL such as redis://:pass@host:6379/0.
// ttl of zero keeps keys until Clear.
func NewRedisSessionRepository(ctx context.Context, redisURL, namespace string, ttl time.Duration) (*RedisSessionRepository, error) {
	const op = "repository.NewRedisSessionRepository"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisSessionRepository{
		rdb:    rdb,
		prefix: namespaceOrDefault(namespace) + ":",
		ttl:    ttl,
	}, nil
}

func (repository *RedisSessionRepository) key(name string) string {
	return repository.prefix + name
}

func (repository *RedisSessionRepository) Load(ctx context.Context) (*model.TokenPair, error) {
	const op = "repository.RedisSessionRepository.Load"

	data, err := repository.rdb.Get(ctx, repository.key(model.SessionKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return decodePair(data)
}

func (repository *RedisSessionRepository) Save(ctx context.Context, pair *model.TokenPair) error {
	const op = "repository.RedisSessionRepository.Save"

	data, err := encodePair(pair)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := repository.rdb.Set(ctx, repository.key(model.SessionKey), data, repository.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Clear deletes every key under the namespace prefix.
func (repository *RedisSessionRepository) Clear(ctx context.Context) error {
	const op = "repository.RedisSessionRepository.Clear"

	iter := repository.rdb.Scan(ctx, 0, repository.prefix+"*", redisScanBatch).Iterator()
	keys := make([]string, 0, redisScanBatch)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := repository.rdb.TxPipeline()
	pipe.Del(ctx, keys...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (repository *RedisSessionRepository) Close() error {
	return repository.rdb.Close()
}
