package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"shop-backend/internal/models"
	"shop-backend/internal/repository"
)

const notFoundSentinel = "notfound"

// CachedProductRepository is a cache-aside decorator over the real product
// repository. Single products and the unfiltered listing are cached;
// filtered listings always hit the database. Redis failures are logged and
// the call falls through, the database stays authoritative.
type CachedProductRepository struct {
	realRepo repository.ProductRepository
	redis    *redis.Client
	ttl      time.Duration
}

func NewCachedProductRepository(realRepo repository.ProductRepository, redis *redis.Client) *CachedProductRepository {
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    redis,
		ttl:      5 * time.Minute,
	}
}

func productKey(id int) string { return fmt.Sprintf("product:%d", id) }

const listKey = "products:all"

func (c *CachedProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundSentinel {
			return nil, repository.ErrNotFound
		}
		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			log.Printf("Failed to unmarshal cached product (continuing with DB): %v", err)
			break
		}
		return &product, nil
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("Redis error (continuing with DB): %v", err)
	}

	product, err := c.realRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundSentinel, 1*time.Minute).Err(); setErr != nil {
				log.Printf("Failed to cache notfound: %v", setErr)
			}
		}
		return nil, err
	}

	jsonData, err := json.Marshal(product)
	if err != nil {
		log.Printf("Failed to marshal product: %v", err)
		return product, nil
	}
	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		log.Printf("failed to cache product: %v", err)
	}

	return product, nil
}

func (c *CachedProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if filter != (models.ProductFilter{}) {
		return c.realRepo.List(ctx, filter)
	}

	data, err := c.redis.Get(ctx, listKey).Bytes()
	if err == nil {
		var products []models.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		log.Printf("Failed to unmarshal cached listing (continuing with DB): %v", err)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("Redis error (continuing with DB): %v", err)
	}

	products, err := c.realRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(products)
	if err != nil {
		log.Printf("failed to marshal products: %v", err)
	} else if err := c.redis.Set(ctx, listKey, jsonData, c.ttl).Err(); err != nil {
		log.Printf("failed to cache products: %v", err)
	}

	return products, nil
}

func (c *CachedProductRepository) invalidate(ctx context.Context, productID int) {
	if err := c.redis.Del(ctx, productKey(productID), listKey).Err(); err != nil {
		log.Printf("Failed to invalidate product cache %d: %v", productID, err)
	}
}

func (c *CachedProductRepository) Create(ctx context.Context, p *models.Product, variants []models.Variant, imageURLs []string) error {
	if err := c.redis.Del(ctx, listKey).Err(); err != nil {
		log.Printf("Failed to invalidate listing cache: %v", err)
	}
	return c.realRepo.Create(ctx, p, variants, imageURLs)
}

func (c *CachedProductRepository) Reconcile(ctx context.Context, id int, desired models.ProductUpdate) ([]string, error) {
	c.invalidate(ctx, id)
	return c.realRepo.Reconcile(ctx, id, desired)
}

func (c *CachedProductRepository) Delete(ctx context.Context, id int) ([]string, error) {
	c.invalidate(ctx, id)
	return c.realRepo.Delete(ctx, id)
}

func (c *CachedProductRepository) DeleteImage(ctx context.Context, productID, imageID int) (string, error) {
	c.invalidate(ctx, productID)
	return c.realRepo.DeleteImage(ctx, productID, imageID)
}
