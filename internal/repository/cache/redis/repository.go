package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/satvikdua06/server/internal/repository/cache"
)

type repo struct {
	rc *redis.Client
}

func NewRepo(rc *redis.Client) *repo {
	return &repo{rc: rc}
}

func (r *repo) Get(ctx context.Context, key string) (string, error) {
	value, err := r.rc.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", cache.ErrCacheMiss
		}

		return "", fmt.Errorf("failed to get key: %w", err)
	}

	return value, nil
}

func (r *repo) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.rc.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	return nil
}
