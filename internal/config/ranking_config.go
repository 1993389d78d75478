package config

import (
	"fmt"

	"github.com/maxaizer/offers-bot/internal/domain/models"
)

type CostOfLivingSetting struct {
	Location string  `mapstructure:"location"`
	Index    float64 `mapstructure:"index"`
}

// RankingConfig seeds the defaults applied to users who have not customized anything.
// Cost of living is a list because viper lower-cases map keys.
type RankingConfig struct {
	Weights      models.WeightProfile  `mapstructure:"weights"`
	CostOfLiving []CostOfLivingSetting `mapstructure:"cost_of_living"`
}

// Validate checks the weights and that every cost of living index is a positive finite number.
func (config RankingConfig) Validate() error {
	if err := config.Weights.Validate(); err != nil {
		return err
	}
	for _, setting := range config.CostOfLiving {
		if setting.Location == "" || !models.IsValidCostOfLivingIndex(setting.Index) {
			return fmt.Errorf("invalid cost of living entry %q: %v", setting.Location, setting.Index)
		}
	}
	return nil
}

// CostOfLivingIndex returns the configured table, falling back to the built-in one.
func (config RankingConfig) CostOfLivingIndex() models.CostOfLivingIndex {
	if len(config.CostOfLiving) == 0 {
		return models.DefaultCostOfLiving()
	}
	index := make(models.CostOfLivingIndex, len(config.CostOfLiving))
	for _, setting := range config.CostOfLiving {
		index[setting.Location] = setting.Index
	}
	return index
}
