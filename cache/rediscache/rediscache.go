// Package rediscache is an optional Redis-backed implementation of the
// Orchestrator's request-level cache (spec §4.1 step 3), for deployments
// that run more than one Orchestrator process and want cache hits to be
// shared across them. The default, single-process deployment uses
// cache.Cache instead.
//
// Grounded on intelligencedev-manifold/internal/skills/redis_cache.go: a
// nil-receiver-safe Redis wrapper exposing Get/Set/Invalidate over a single
// key namespace, using redis.Nil to distinguish miss from error.
package rediscache

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zolawuzhigang/Research-Agent/telemetry"
)

const (
	keyPrefix  = "research-agent:answer:"
	defaultTTL = time.Hour
)

// Config configures the Redis connection backing a Cache.
type Config struct {
	Addr                  string
	Password              string
	DB                    int
	TLSInsecureSkipVerify bool
}

// Cache is a Redis-backed request-level cache. A nil *Cache behaves as an
// always-miss cache, mirroring the teacher's nil-receiver-safe pattern so
// callers can pass a possibly-unconfigured cache without a branch.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    telemetry.Logger
}

// New connects to Redis and returns a Cache. Returns an error if the initial
// ping fails; the caller decides whether that is fatal or whether to fall
// back to the in-process cache.Cache.
func New(cfg Config, ttl time.Duration, log telemetry.Logger) (*Cache, error) {
	opts := &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	if cfg.TLSInsecureSkipVerify {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = telemetry.NewNoopLogger()
	}
	return &Cache{client: client, ttl: ttl, log: log}, nil
}

// Get returns the cached answer for fingerprint, if present and unexpired.
func (c *Cache) Get(ctx context.Context, fingerprint string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, keyPrefix+fingerprint).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn(ctx, "rediscache get failed", "key", fingerprint, "error", err)
		}
		return "", false
	}
	return val, true
}

// Set caches answer under fingerprint with the configured TTL.
func (c *Cache) Set(ctx context.Context, fingerprint, answer string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+fingerprint, answer, c.ttl).Err(); err != nil {
		c.log.Warn(ctx, "rediscache set failed", "key", fingerprint, "error", err)
	}
}

// Close releases the underlying Redis connection pool.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
