package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/zpam/hamspam/pkg/learning"
)

// Options configures a RedisCache
type Options struct {
	URL             string
	Prefix          string
	TTL             time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// RedisCache stores classification results in Redis behind a circuit breaker
type RedisCache struct {
	client   *redis.Client
	cb       *gobreaker.CircuitBreaker
	prefix   string
	instance string
	ttl      time.Duration
	log      zerolog.Logger
}

// NewRedisCache creates a cache for the given Redis URL. It does not
// connect; use Ping to check reachability.
func NewRedisCache(opts Options, log zerolog.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	// A miss costs one classification; do not retry.
	opt.MaxRetries = -1

	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}

	c := &RedisCache{
		client:   redis.NewClient(opt),
		prefix:   opts.Prefix,
		instance: uuid.NewString(),
		ttl:      opts.TTL,
		log:      log.With().Str("component", "cache").Logger(),
	}

	failures := opts.BreakerFailures
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return c, nil
}

// Instance returns the per-process key namespace
func (c *RedisCache) Instance() string {
	return c.instance
}

// Name describes the backend
func (c *RedisCache) Name() string {
	return "redis"
}

// State returns the circuit breaker state
func (c *RedisCache) State() string {
	return c.cb.State().String()
}

// Ping checks that Redis is reachable
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// Get looks up a cached classification
func (c *RedisCache) Get(ctx context.Context, generation uint64, text string) (learning.Classification, bool, error) {
	key := Key(c.prefix, c.instance, generation, text)

	res, err := c.cb.Execute(func() (interface{}, error) {
		data, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return learning.Classification{}, false, fmt.Errorf("cache get: %w", err)
	}

	data, ok := res.([]byte)
	if !ok {
		return learning.Classification{}, false, nil
	}

	var result learning.Classification
	if err := json.Unmarshal(data, &result); err != nil {
		return learning.Classification{}, false, fmt.Errorf("cache decode: %w", err)
	}

	return result, true, nil
}

// Set stores a classification with the configured TTL
func (c *RedisCache) Set(ctx context.Context, generation uint64, text string, result learning.Classification) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	key := Key(c.prefix, c.instance, generation, text)
	_, err = c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, key, data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	return nil
}

// Close closes the Redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
