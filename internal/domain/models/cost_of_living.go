package models

import "math"

// BaselineCostOfLivingIndex means no adjustment.
const BaselineCostOfLivingIndex = 100

// CostOfLivingIndex maps a location to an index centered at 100.
type CostOfLivingIndex map[string]float64

// Lookup returns the index for location, or the baseline when it is unknown or unusable.
func (c CostOfLivingIndex) Lookup(location string) float64 {
	if index, ok := c[location]; ok && IsValidCostOfLivingIndex(index) {
		return index
	}
	return BaselineCostOfLivingIndex
}

// IsValidCostOfLivingIndex reports whether index is a positive finite number.
func IsValidCostOfLivingIndex(index float64) bool {
	return index > 0 && !math.IsInf(index, 0)
}

type CostOfLivingEntry struct {
	Location string `gorm:"primaryKey"`
	Index    float64
}

func DefaultCostOfLiving() CostOfLivingIndex {
	return CostOfLivingIndex{
		"Seattle, WA":       165,
		"Mountain View, CA": 190,
	}
}
