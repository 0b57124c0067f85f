package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FBK-Manuel/wearehfg/pkg/database"
	apperrors "github.com/FBK-Manuel/wearehfg/pkg/errors"
)

const keyPrefix = "storefront:"

// StateRepository stores session state in Redis. Every Save refreshes the
// key's TTL, so a session expires after ttl without activity.
type StateRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewStateRepository(client *redis.Client, ttl time.Duration, logger *slog.Logger) *StateRepository {
	return &StateRepository{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *StateRepository) Load(ctx context.Context, key string) (_ []byte, err error) {
	ctx, done := database.TraceOp(ctx, r.logger, "redis", "get", key)
	defer func() { done(err) }()

	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("session state", key)
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (r *StateRepository) Save(ctx context.Context, key string, value []byte) (err error) {
	ctx, done := database.TraceOp(ctx, r.logger, "redis", "set", key)
	defer func() { done(err) }()

	if err := r.client.Set(ctx, keyPrefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *StateRepository) Delete(ctx context.Context, key string) (err error) {
	ctx, done := database.TraceOp(ctx, r.logger, "redis", "del", key)
	defer func() { done(err) }()

	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *StateRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
