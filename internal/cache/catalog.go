// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// catalog.go provides a Valkey-backed cache for the public catalog
// responses. Category and product listings are read on every Mini App
// launch, so the encoded JSON is kept in Valkey and served without
// touching PostgreSQL. Any admin write to the catalog clears the whole
// prefix; the payloads are small and rebuilt on the next request.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// catalogKeyPrefix is the Valkey key prefix for cached catalog responses.
	catalogKeyPrefix = "catalog:"

	// DefaultCatalogTTL is how long a cached response stays valid without
	// an explicit invalidation.
	DefaultCatalogTTL = 5 * time.Minute
)

// CatalogCache manages cached catalog JSON in Valkey.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a catalog cache backed by the given Valkey client.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl == 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// Get retrieves a cached response body for a key. Returns false on miss.
// Valkey errors degrade to a miss so the API keeps serving from the DB.
func (cc *CatalogCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := cc.client.Get(ctx, catalogKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("catalog cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("catalog cache hit", "key", key)
	return val, true
}

// Set stores an encoded response body for a key with the configured TTL.
func (cc *CatalogCache) Set(ctx context.Context, key string, body []byte) {
	if err := cc.client.Set(ctx, catalogKeyPrefix+key, body, cc.ttl).Err(); err != nil {
		slog.Warn("catalog cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached catalog response by scanning for the
// prefix. Used after any category, product or review write, since product
// counts and rating aggregates bleed across listings.
func (cc *CatalogCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := cc.client.Scan(ctx, cursor, catalogKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("catalog cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := cc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("catalog cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("catalog cache fully cleared", "deleted", deleted)
	}
}

// CategoriesKey returns the cache key for the category listing.
func CategoriesKey() string {
	return "categories"
}

// ProductsKey returns the cache key for one page of a product listing.
// categoryID is empty when the listing is not filtered by category.
func ProductsKey(categoryID, search string, page int) string {
	return fmt.Sprintf("products:%s:%s:%d", categoryID, search, page)
}

// ProductKey returns the cache key for a single product detail response.
func ProductKey(id string) string {
	return "product:" + id
}
