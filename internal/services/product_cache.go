package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/velora/internal/models"
)

const productKeyPrefix = "product:"

// ProductCache is a TTL cache for product detail reads. Mutating handlers
// and the order workflow invalidate entries after every stock change.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProductCache constructs a ProductCache with the given entry TTL.
func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached product, or nil on miss or any cache error.
func (c *ProductCache) Get(ctx context.Context, id uuid.UUID) *models.Product {
	payload, err := c.rdb.Get(ctx, productKeyPrefix+id.String()).Bytes()
	if err != nil {
		return nil
	}

	var product models.Product
	if err := json.Unmarshal(payload, &product); err != nil {
		return nil
	}
	return &product
}

// Set stores the product under the cache TTL. Failures are swallowed; the
// cache is an optimization, never a source of truth.
func (c *ProductCache) Set(ctx context.Context, product *models.Product) {
	payload, err := json.Marshal(product)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, productKeyPrefix+product.ID.String(), payload, c.ttl)
}

// Invalidate drops cached entries for the given product ids.
func (c *ProductCache) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKeyPrefix + id.String()
	}
	c.rdb.Del(ctx, keys...)
}
