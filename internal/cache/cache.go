package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// ProductCache holds the rendered catalog listing. Any write to products or
// size stock must call Invalidate after it commits.
//
// Entries are tagged with a generation. Get reports the current generation
// even on a miss; a caller that then loads from the store passes that same
// generation to Set. Invalidate moves to a new generation, so a fill that
// read the store before an invalidation is never served afterwards.
type ProductCache interface {
	Get(ctx context.Context) ([]domain.Product, int64, error)
	Set(ctx context.Context, gen int64, ps []domain.Product) error
	Invalidate(ctx context.Context) error
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return gen, nil
}

func (r *RedisCache) Get(ctx context.Context) ([]domain.Product, int64, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		return nil, 0, err
	}
	data, err := r.client.Get(ctx, listKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, ErrCacheMiss
	}
	if err != nil {
		return nil, gen, fmt.Errorf("redis get failed: %w", err)
	}
	var ps []domain.Product
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, gen, fmt.Errorf("unmarshal products failed: %w", err)
	}
	return ps, gen, nil
}

// Set stores ps under gen. If gen is already stale the write is skipped.
func (r *RedisCache) Set(ctx context.Context, gen int64, ps []domain.Product) error {
	data, err := json.Marshal(ps)
	if err != nil {
		return fmt.Errorf("marshal products failed: %w", err)
	}
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, listKey(gen), data, r.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		// invalidated while writing; the entry belongs to an old generation
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Invalidate starts a new generation and drops the previous entry.
func (r *RedisCache) Invalidate(ctx context.Context) error {
	gen, err := r.client.Incr(ctx, genKey).Result()
	if err != nil {
		return fmt.Errorf("redis incr generation failed: %w", err)
	}
	if err := r.client.Del(ctx, listKey(gen-1)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Noop is used when REDIS_ADDR is unset; every read misses.
type Noop struct{}

func (Noop) Get(context.Context) ([]domain.Product, int64, error) { return nil, 0, ErrCacheMiss }
func (Noop) Set(context.Context, int64, []domain.Product) error   { return nil }
func (Noop) Invalidate(context.Context) error                     { return nil }

const genKey = "products:list:gen"

func listKey(gen int64) string { return fmt.Sprintf("products:list:v1:%d", gen) }
