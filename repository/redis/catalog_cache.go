package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/simhub/backend/domain"
)

// CatalogCache keeps denormalized product read models in Redis so catalog
// browsing does not hit Postgres on every request. Misses are not errors;
// callers fall through to the repository.
type CatalogCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewCatalogCache creates a Redis-backed catalog cache.
func NewCatalogCache(client *redislib.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogCache{
		client: client,
		prefix: "catalog:",
		ttl:    ttl,
	}
}

// GetProduct returns the cached product, or (nil, nil) on a miss.
func (c *CatalogCache) GetProduct(ctx context.Context, code string) (*domain.Product, error) {
	result, err := c.client.Get(ctx, c.productKey(code)).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, nil
		}
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal([]byte(result), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// SetProduct stores a product read model.
func (c *CatalogCache) SetProduct(ctx context.Context, product *domain.Product) error {
	if product == nil || product.Code == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.productKey(product.Code), payload, c.ttl).Err()
}

// InvalidateProduct drops the cached entry for a single product.
func (c *CatalogCache) InvalidateProduct(ctx context.Context, code string) error {
	return c.client.Del(ctx, c.productKey(code)).Err()
}

func (c *CatalogCache) productKey(code string) string {
	return fmt.Sprintf("%sproduct:%s", c.prefix, code)
}
