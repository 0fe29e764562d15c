package websearch

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"ai-copilot-be/internal/pkg/logger"
)

// CachedClient wraps a search Client with a TTL cache keyed on the
// normalized query, so the same question asked twice inside the window hits
// the provider once.
type CachedClient struct {
	inner Client
	cache *gocache.Cache
	ttl   time.Duration
	log   logger.ILogger
}

func NewCachedClient(inner Client, ttl time.Duration, log logger.ILogger) *CachedClient {
	return &CachedClient{
		inner: inner,
		cache: gocache.New(ttl, 10*time.Minute),
		ttl:   ttl,
		log:   log,
	}
}

func cacheKey(query string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "web_search_" + hex.EncodeToString(sum[:])
}

func (c *CachedClient) Search(ctx context.Context, query string) ([]Result, error) {
	key := cacheKey(query)
	if hit, ok := c.cache.Get(key); ok {
		c.log.Debug("websearch", "cache hit", map[string]interface{}{"key": key})
		return hit.([]Result), nil
	}

	results, err := c.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		c.cache.Set(key, results, c.ttl)
	}
	return results, nil
}

var _ Client = (*CachedClient)(nil)
