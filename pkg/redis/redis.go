package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/maxton76/stall-bokning-sub008/config"
)

// Client wraps the Redis connection. Used for the token blacklist, the
// sliding-window rate limiter and the feature-toggle cache.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient connects to Redis and pings it.
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── token blacklist ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken blacklists a JWT ID for the token's remaining lifetime.
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired, nothing to blacklist
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted reports whether a JWT ID is blacklisted.
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── rate limiting ──

// CheckRateLimit counts requests against key within window and reports
// whether the request is allowed.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}

// ── feature-toggle cache ──

const togglePrefix = "feature:toggle:"

// GetToggle reads a cached toggle value. The second return reports a cache
// hit; read errors degrade to a miss.
func (c *Client) GetToggle(ctx context.Context, key string) (bool, bool) {
	v, err := c.rdb.Get(ctx, togglePrefix+key).Result()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warn("toggle cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false, false
	}
	return v == "1", true
}

// SetToggle caches a toggle value with the given TTL. Write errors are
// logged and dropped; the store of record is the database.
func (c *Client) SetToggle(ctx context.Context, key string, enabled bool, ttl time.Duration) {
	v := "0"
	if enabled {
		v = "1"
	}
	if err := c.rdb.Set(ctx, togglePrefix+key, v, ttl).Err(); err != nil {
		c.logger.Warn("toggle cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateToggles drops all cached toggles for a stable. Called when a 403
// suggests the permission cache may be stale.
func (c *Client) InvalidateToggles(ctx context.Context, stableID string) {
	iter := c.rdb.Scan(ctx, 0, togglePrefix+stableID+":*", 100).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("toggle cache invalidation failed", zap.String("stable_id", stableID), zap.Error(err))
	}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
