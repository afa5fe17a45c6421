// Package hashcache caches the content hash index in Redis.
//
// Entries are hints. Readers confirm a cached id against the store, and a
// write overwrites whatever the key held, so an entry left behind by a reset
// or rolled back registry is corrected on the next confirmed lookup. Keys can
// be scoped with WithNamespace when several registries share one Redis.
package hashcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"tradeinvoice/internal/invoice/models"
)

const keyPrefix = "tradeinvoice:hash:"

// ErrCorruptEntry means Redis answered but the stored value is not an id.
var ErrCorruptEntry = errors.New("corrupt cache entry")

// RedisCache implements ports.HashCache.
type RedisCache struct {
	client    redis.UniversalClient
	ttl       time.Duration
	namespace string
}

type Option func(*RedisCache)

// WithTTL bounds how long entries live. Zero keeps them indefinitely.
func WithTTL(ttl time.Duration) Option {
	return func(c *RedisCache) {
		c.ttl = ttl
	}
}

// WithNamespace scopes keys to one registry instance.
func WithNamespace(namespace string) Option {
	return func(c *RedisCache) {
		c.namespace = namespace
	}
}

func NewRedisCache(client redis.UniversalClient, opts ...Option) *RedisCache {
	c := &RedisCache{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *RedisCache) key(hash models.ContentHash) string {
	if c.namespace == "" {
		return keyPrefix + hash.String()
	}
	return keyPrefix + c.namespace + ":" + hash.String()
}

// Get returns the cached invoice id, or ok=false on a miss.
func (c *RedisCache) Get(ctx context.Context, hash models.ContentHash) (uint64, bool, error) {
	raw, err := c.client.Get(ctx, c.key(hash)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get hash %s: %w", hash, err)
	}
	invoiceID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || invoiceID == 0 {
		return 0, false, fmt.Errorf("%w for hash %s: %q", ErrCorruptEntry, hash, raw)
	}
	return invoiceID, true, nil
}

// Set records hash -> invoiceID, replacing any previous entry.
func (c *RedisCache) Set(ctx context.Context, hash models.ContentHash, invoiceID uint64) error {
	if err := c.client.Set(ctx, c.key(hash), strconv.FormatUint(invoiceID, 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("set hash %s: %w", hash, err)
	}
	return nil
}
