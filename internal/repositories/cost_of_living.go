package repositories

import (
	"context"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CostOfLiving struct {
	db *gorm.DB
}

func NewCostOfLivingRepository(db *gorm.DB) *CostOfLiving {
	return &CostOfLiving{db: db}
}

func (repo *CostOfLiving) GetIndex(ctx context.Context) (models.CostOfLivingIndex, error) {

	var entries []models.CostOfLivingEntry
	if err := repo.db.WithContext(ctx).Find(&entries).Error; err != nil {
		return nil, err
	}

	index := make(models.CostOfLivingIndex, len(entries))
	for _, entry := range entries {
		index[entry.Location] = entry.Index
	}
	return index, nil
}

// ErrInvalidCostOfLivingIndex is returned by Set for an index that is not a positive finite number.
var ErrInvalidCostOfLivingIndex = errors.New("cost of living index must be a positive number")

func (repo *CostOfLiving) Set(ctx context.Context, location string, index float64) error {
	if !models.IsValidCostOfLivingIndex(index) {
		return errors.Wrapf(ErrInvalidCostOfLivingIndex, "set %q to %v", location, index)
	}
	return repo.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&models.CostOfLivingEntry{Location: location, Index: index}).Error
}
