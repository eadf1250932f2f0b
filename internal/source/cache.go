package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	cacheKeyPrefix     = "contentmesh:results:"
	defaultCallTimeout = 30 * time.Second
)

// RedisCache is a domain.ResultCache over a Redis client.
type RedisCache struct {
	client goredis.UniversalClient
}

func NewRedisCache(client goredis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached results: %w", err)
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set cached results: %w", err)
	}
	return nil
}

// Cached wraps a source with a shared result cache. Concurrent misses for
// the same key collapse into one upstream call. Cache failures degrade to
// uncached queries.
type Cached struct {
	name        string
	next        domain.SourceHandler
	cache       domain.ResultCache
	ttl         time.Duration
	callTimeout time.Duration
	group       singleflight.Group
	logger      *zap.Logger
}

// CachedOption configures a Cached source.
type CachedOption func(*Cached)

// WithCallTimeout bounds the shared upstream call. It runs detached from
// any single caller's cancellation, so this is its only deadline.
func WithCallTimeout(d time.Duration) CachedOption {
	return func(c *Cached) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

func NewCached(name string, next domain.SourceHandler, cache domain.ResultCache, ttl time.Duration, logger *zap.Logger, opts ...CachedOption) *Cached {
	c := &Cached{name: name, next: next, cache: cache, ttl: ttl, callTimeout: defaultCallTimeout, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cached) Query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.RawResult, error) {
	opts = opts.WithDefaults()
	key := cacheKey(c.name, text, opts)

	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("result cache read failed", zap.String("source", c.name), zap.Error(err))
	}
	if ok {
		var results []domain.RawResult
		if err := json.Unmarshal(data, &results); err == nil {
			return results, nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("source", c.name))
	}

	ch := c.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.callTimeout)
		defer cancel()

		results, err := c.next.Query(callCtx, text, opts)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			c.store(callCtx, key, results)
		}
		return results, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.RawResult), nil
	}
}

func (c *Cached) store(ctx context.Context, key string, results []domain.RawResult) {
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("result cache write failed", zap.String("source", c.name), zap.Error(err))
	}
}

// cacheKey fingerprints a query; case and surrounding space are ignored.
func cacheKey(name, text string, opts domain.QueryOptions) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%s", strings.ToLower(strings.TrimSpace(text)), opts.Limit, opts.Language)
	return cacheKeyPrefix + name + ":" + hex.EncodeToString(h.Sum(nil))
}
