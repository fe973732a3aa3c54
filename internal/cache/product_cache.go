// Package cache keeps active products by slug in Redis (cache-aside).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultPrefix namespaces product keys.
	DefaultPrefix = "storefront:product:"
	// DefaultTTL is used when a non-positive TTL is given.
	DefaultTTL = 5 * time.Minute
)

// ProductCache stores fully joined active products keyed by slug. A nil
// *ProductCache is valid and caches nothing.
type ProductCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewProductCache creates a ProductCache over client.
func NewProductCache(client redis.Cmdable, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProductCache{client: client, prefix: DefaultPrefix, ttl: ttl}
}

// NewClient opens a Redis client and checks the connection.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// Get returns the cached product for slug. A miss is (nil, false, nil).
func (c *ProductCache) Get(ctx context.Context, slug string) (*model.Product, bool, error) {
	if c == nil {
		return nil, false, nil
	}

	data, err := c.client.Get(ctx, c.prefix+slug).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get error: %w", err)
	}

	var product model.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	return &product, true, nil
}

// Set stores product under its slug.
func (c *ProductCache) Set(ctx context.Context, product *model.Product) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+product.Slug, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

// Invalidate removes the given slugs.
func (c *ProductCache) Invalidate(ctx context.Context, slugs ...string) error {
	if c == nil || len(slugs) == 0 {
		return nil
	}

	keys := make([]string, len(slugs))
	for i, slug := range slugs {
		keys[i] = c.prefix + slug
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}
