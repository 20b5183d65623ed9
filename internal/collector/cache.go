package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"TickerLens/internal/metrics"
	"TickerLens/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

// CacheConfig holds Redis connection settings for the bar cache.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// redisStore is the part of the Redis client the cache uses.
type redisStore interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

// CachedFetcher serves repeated queries from Redis and falls through to the wrapped Fetcher.
// Redis failures never fail a fetch; they are logged and the upstream is asked instead.
type CachedFetcher struct {
	next    Fetcher
	client  redisStore
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewCachedFetcher connects to Redis and pings it.
func NewCachedFetcher(next Fetcher, cfg CacheConfig, m *metrics.Metrics) (*CachedFetcher, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger().Info().Str("addr", cfg.Addr).Msg("redis cache connected")
	return newCachedFetcher(next, client, cfg.TTL, m), nil
}

func newCachedFetcher(next Fetcher, client redisStore, ttl time.Duration, m *metrics.Metrics) *CachedFetcher {
	return &CachedFetcher{next: next, client: client, ttl: ttl, metrics: m}
}

func (c *CachedFetcher) Name() string { return c.next.Name() }

// cacheKey identifies a query: bars:{provider}:{ticker}:{interval}:{start}:{end}.
func cacheKey(provider string, q model.Query) string {
	return fmt.Sprintf("bars:%s:%s:%s:%s:%s", provider, strings.ToUpper(q.Ticker), q.Interval,
		q.Start.Format(model.DateLayout), q.End.Format(model.DateLayout))
}

func (c *CachedFetcher) FetchBars(ctx context.Context, q model.Query) ([]model.OHLCV, error) {
	key := cacheKey(c.next.Name(), q)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var bars []model.OHLCV
		jerr := json.Unmarshal(raw, &bars)
		if jerr == nil {
			c.metrics.CacheHit()
			logger().Debug().Str("key", key).Int("bars", len(bars)).Msg("cache hit")
			return bars, nil
		}
		logger().Warn().Err(jerr).Str("key", key).Msg("corrupt cache entry, refetching")
	case errors.Is(err, goredis.Nil):
	default:
		logger().Warn().Err(err).Str("key", key).Msg("redis get failed, fetching upstream")
	}
	c.metrics.CacheMiss()

	bars, err := c.next.FetchBars(ctx, q)
	if err != nil || len(bars) == 0 {
		return bars, err
	}

	payload, err := json.Marshal(bars)
	if err != nil {
		return bars, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger().Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
	return bars, nil
}
