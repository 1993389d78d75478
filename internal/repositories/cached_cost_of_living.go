package repositories

import (
	"context"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	gocache "github.com/patrickmn/go-cache"
	"time"
)

const costOfLivingCacheKey = "cost_of_living_index"

type costOfLivingRepository interface {
	GetIndex(ctx context.Context) (models.CostOfLivingIndex, error)
	Set(ctx context.Context, location string, index float64) error
}

type CachedCostOfLiving struct {
	repo  costOfLivingRepository
	cache *gocache.Cache
}

func NewCachedCostOfLiving(repo costOfLivingRepository) *CachedCostOfLiving {
	return &CachedCostOfLiving{repo: repo, cache: gocache.New(10*time.Minute, 20*time.Minute)}
}

// GetIndex returns a copy so callers can't corrupt the cached table.
func (c *CachedCostOfLiving) GetIndex(ctx context.Context) (models.CostOfLivingIndex, error) {
	if value, found := c.cache.Get(costOfLivingCacheKey); found {
		return copyIndex(value.(models.CostOfLivingIndex)), nil
	}

	index, err := c.repo.GetIndex(ctx)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(costOfLivingCacheKey, copyIndex(index))
	return index, nil
}

func (c *CachedCostOfLiving) Set(ctx context.Context, location string, index float64) error {
	defer c.cache.Delete(costOfLivingCacheKey)
	return c.repo.Set(ctx, location, index)
}

func copyIndex(index models.CostOfLivingIndex) models.CostOfLivingIndex {
	copied := make(models.CostOfLivingIndex, len(index))
	for location, value := range index {
		copied[location] = value
	}
	return copied
}
