package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"support-relay/internal/config"
)

// Filter decides whether an update was already handled.
type Filter interface {
	// FirstSeen marks the update as seen and reports whether this call was
	// the first to do so.
	FirstSeen(ctx context.Context, updateID int) (bool, error)
	Close() error
}

// SetNXer is the redis command the filter needs.
type SetNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisFilter remembers update ids in redis for a limited time.
type RedisFilter struct {
	client SetNXer
	closer func() error
	ttl    time.Duration
	prefix string
}

// New returns a redis backed filter when enabled, otherwise one that lets
// every update through.
func New(ctx context.Context, cfg config.DedupConfig) (Filter, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	f := NewRedisFilter(client, cfg.TTL)
	f.closer = client.Close
	return f, nil
}

func NewRedisFilter(client SetNXer, ttl time.Duration) *RedisFilter {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisFilter{client: client, ttl: ttl, prefix: "support-relay:update:"}
}

func (f *RedisFilter) FirstSeen(ctx context.Context, updateID int) (bool, error) {
	ok, err := f.client.SetNX(ctx, fmt.Sprintf("%s%d", f.prefix, updateID), 1, f.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup update %d: %w", updateID, err)
	}
	return ok, nil
}

func (f *RedisFilter) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer()
}

// Noop lets every update through.
type Noop struct{}

func (Noop) FirstSeen(context.Context, int) (bool, error) { return true, nil }

func (Noop) Close() error { return nil }
