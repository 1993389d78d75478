package repositories

import (
	"context"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"time"
)

var ErrOfferNotFound = errors.New("offer not found")

type Offers struct {
	db *gorm.DB
}

func NewOffersRepository(db *gorm.DB) *Offers {
	return &Offers{db: db}
}

func (repo *Offers) Add(ctx context.Context, offer models.Offer) error {
	return repo.db.WithContext(ctx).Create(&offer).Error
}

// GetByUser returns offers in the order they were entered.
func (repo *Offers) GetByUser(ctx context.Context, userID int64) ([]models.Offer, error) {

	var offers []models.Offer
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

func (repo *Offers) GetByID(ctx context.Context, ID string) (*models.Offer, error) {

	var offer models.Offer
	if err := repo.db.WithContext(ctx).First(&offer, "id = ?", ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}

func (repo *Offers) CountByUser(ctx context.Context, userID int64) (int64, error) {

	var count int64
	if err := repo.db.WithContext(ctx).Model(&models.Offer{}).Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Replace overwrites every field of an existing offer.
func (repo *Offers) Replace(ctx context.Context, offer models.Offer) error {
	res := repo.db.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ? AND user_id = ?", offer.ID, offer.UserID).
		Select("*").Omit("id", "user_id", "created_at").
		Updates(&offer)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOfferNotFound
	}
	return nil
}

func (repo *Offers) Remove(ctx context.Context, userID int64, ID string) error {
	res := repo.db.WithContext(ctx).Delete(&models.Offer{}, "id = ? AND user_id = ?", ID, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOfferNotFound
	}
	return nil
}

func (repo *Offers) RemoveOlderThan(ctx context.Context, expirationTime time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Delete(&models.Offer{}, "updated_at < ?", expirationTime)
	return res.RowsAffected, res.Error
}
