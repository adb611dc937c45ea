package dataservice

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sudo-init-do/studentmarket/internal/models"
)

// CategoryKey is the redis key of the cached taxonomy.
const CategoryKey = "studentmarket:categories"

// CategoryTTL bounds how stale a cached taxonomy can be.
const CategoryTTL = 10 * time.Minute

// CategoryCache is a read-through cache for the category taxonomy. A miss
// or a cache failure is never an error to the caller.
type CategoryCache interface {
	Load(ctx context.Context) ([]models.Category, bool)
	Store(ctx context.Context, cats []models.Category)
}

// RedisCategoryCache keeps the taxonomy as one JSON value.
type RedisCategoryCache struct {
	rdb redis.Cmdable
	ttl time.Duration
	log logrus.FieldLogger
}

func NewRedisCategoryCache(rdb redis.Cmdable, log logrus.FieldLogger) *RedisCategoryCache {
	return &RedisCategoryCache{rdb: rdb, ttl: CategoryTTL, log: log}
}

func (c *RedisCategoryCache) Load(ctx context.Context) ([]models.Category, bool) {
	raw, err := c.rdb.Get(ctx, CategoryKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).Warn("category cache read failed")
		}
		return nil, false
	}
	var cats []models.Category
	if err := json.Unmarshal(raw, &cats); err != nil {
		c.log.WithError(err).Warn("category cache entry is corrupt")
		return nil, false
	}
	return cats, true
}

func (c *RedisCategoryCache) Store(ctx context.Context, cats []models.Category) {
	raw, err := json.Marshal(cats)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, CategoryKey, raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("category cache write failed")
	}
}

// InvalidateCategories drops the cached taxonomy. Used after seeding.
func InvalidateCategories(ctx context.Context, rdb redis.Cmdable) error {
	return rdb.Del(ctx, CategoryKey).Err()
}
