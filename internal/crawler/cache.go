package crawler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lk2023060901/prospect-finder/internal/pkg/redis"
)

// PageCache stores crawled pages keyed by profile and URL.
type PageCache interface {
	Get(ctx context.Context, profile, url string) (*Page, bool, error)
	Set(ctx context.Context, profile, url string, page *Page) error
}

// RedisPageCache keeps pages as JSON in redis with a fixed TTL.
type RedisPageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPageCache returns a cache backed by client. A zero ttl means 24h.
func NewRedisPageCache(client *redis.Client, ttl time.Duration) *RedisPageCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisPageCache{client: client, ttl: ttl}
}

func (c *RedisPageCache) key(profile, url string) string {
	sum := sha256.Sum256([]byte(url))
	return c.client.Key("crawl", "page", profile, hex.EncodeToString(sum[:]))
}

// Get returns (nil, false, nil) on a miss. A corrupt entry yields ErrCacheDecode.
func (c *RedisPageCache) Get(ctx context.Context, profile, url string) (*Page, bool, error) {
	raw, err := c.client.GetBytes(ctx, c.key(profile, url))
	if redis.IsNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var page Page
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCacheDecode, err)
	}
	return &page, true, nil
}

// Set stores page under the profile namespace.
func (c *RedisPageCache) Set(ctx context.Context, profile, url string, page *Page) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(profile, url), raw, c.ttl)
}
