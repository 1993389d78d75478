package repositories

import (
	"context"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Weights struct {
	db       *gorm.DB
	defaults models.WeightProfile
}

// NewWeightsRepository returns a repository that falls back to defaults for users without a saved profile.
func NewWeightsRepository(db *gorm.DB, defaults models.WeightProfile) *Weights {
	return &Weights{db: db, defaults: defaults}
}

func (repo *Weights) Get(ctx context.Context, userID int64) (models.WeightProfile, error) {

	var profile models.WeightProfile
	err := repo.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = repo.defaults
			profile.UserID = userID
			return profile, nil
		}
		return models.WeightProfile{}, err
	}
	return profile, nil
}

func (repo *Weights) Save(ctx context.Context, profile models.WeightProfile) error {
	return repo.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&profile).Error
}
