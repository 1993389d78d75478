package repositories

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

// Migrate creates the schema and seeds the cost of living table when it is empty.
func (c *DbContext) Migrate(costOfLiving models.CostOfLivingIndex) error {
	err := c.DB.AutoMigrate(models.Offer{})
	if err != nil {
		return fmt.Errorf("failed to migrate Offer entity: %w", err)
	}

	err = c.DB.AutoMigrate(models.WeightProfile{})
	if err != nil {
		return fmt.Errorf("failed to migrate WeightProfile entity: %w", err)
	}

	err = c.DB.AutoMigrate(models.CostOfLivingEntry{})
	if err != nil {
		return fmt.Errorf("failed to migrate CostOfLivingEntry entity: %w", err)
	}

	err = c.DB.AutoMigrate(models.ArbitraryData{})
	if err != nil {
		return fmt.Errorf("failed to migrate ArbitraryData entity: %w", err)
	}

	var entriesCount int64
	if err = c.DB.Model(models.CostOfLivingEntry{}).Count(&entriesCount).Error; err != nil {
		return fmt.Errorf("failed to count cost of living entries: %w", err)
	}

	if entriesCount == 0 {
		if err = c.PopulateCostOfLiving(costOfLiving); err != nil {
			return fmt.Errorf("failed to populate cost of living: %w", err)
		}
	}

	return nil
}

func (c *DbContext) PopulateCostOfLiving(costOfLiving models.CostOfLivingIndex) error {
	if len(costOfLiving) == 0 {
		return nil
	}

	entries := make([]models.CostOfLivingEntry, 0, len(costOfLiving))
	for location, index := range costOfLiving {
		entries = append(entries, models.CostOfLivingEntry{Location: location, Index: index})
	}

	if err := c.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entries).Error; err != nil {
		return fmt.Errorf("failed to create cost of living entries in the database: %w", err)
	}
	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
