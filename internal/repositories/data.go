package repositories

import (
	"context"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Data stores opaque blobs by key, e.g. bot state that must survive a restart.
type Data struct {
	db *gorm.DB
}

func NewDataRepository(db *gorm.DB) *Data {
	return &Data{db: db}
}

func (repo *Data) Save(ctx context.Context, id string, data []byte) error {
	return repo.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&models.ArbitraryData{ID: id, Value: data}).Error
}

// Load returns nil without an error when nothing is stored under id.
func (repo *Data) Load(ctx context.Context, id string) ([]byte, error) {
	data := &models.ArbitraryData{}
	err := repo.db.WithContext(ctx).First(data, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "load data %q", id)
	}
	return data.Value, nil
}

func (repo *Data) LoadAndRemove(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &Data{db: tx}
		var err error
		if data, err = txRepo.Load(ctx, id); data == nil || err != nil {
			return err
		}
		return txRepo.Remove(ctx, id)
	})
	return data, err
}

func (repo *Data) Remove(ctx context.Context, id string) error {
	return repo.db.WithContext(ctx).Delete(&models.ArbitraryData{}, "id = ?", id).Error
}
