package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zpam/hamspam/pkg/config"
	"github.com/zpam/hamspam/pkg/learning"
)

// ResultCache stores classification results keyed by model generation and
// message text. Entries written at one generation are never returned for
// another.
type ResultCache interface {
	Get(ctx context.Context, generation uint64, text string) (learning.Classification, bool, error)
	Set(ctx context.Context, generation uint64, text string, c learning.Classification) error
	Name() string
	Close() error
}

// Key builds the storage key for text classified at generation
func Key(prefix, instance string, generation uint64, text string) string {
	sum := sha1.Sum([]byte(text))

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte(':')
	b.WriteString(instance)
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(generation, 10))
	b.WriteByte(':')
	b.WriteString(hex.EncodeToString(sum[:]))
	return b.String()
}

// NopCache never stores anything
type NopCache struct{}

func (NopCache) Get(context.Context, uint64, string) (learning.Classification, bool, error) {
	return learning.Classification{}, false, nil
}

func (NopCache) Set(context.Context, uint64, string, learning.Classification) error {
	return nil
}

func (NopCache) Name() string { return "none" }

func (NopCache) Close() error { return nil }

// New returns a Redis cache when caching is enabled and a NopCache otherwise
func New(cfg *config.Config, log zerolog.Logger) (ResultCache, error) {
	if !cfg.Cache.Enabled {
		return NopCache{}, nil
	}

	return NewRedisCache(Options{
		URL:             cfg.Cache.RedisURL,
		Prefix:          cfg.Cache.KeyPrefix,
		TTL:             cfg.CacheTTL(),
		BreakerFailures: uint32(cfg.Cache.BreakerFailures),
		BreakerTimeout:  cfg.BreakerTimeout(),
	}, log)
}
