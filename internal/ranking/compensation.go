package ranking

import (
	"math"

	"github.com/maxaizer/offers-bot/internal/domain/models"
)

// EquityVestingYears is the period over which total equity vests linearly.
const EquityVestingYears = 4

// TotalCompensation is the annualized figure: base + bonus + equity / 4.
func TotalCompensation(offer models.Offer) float64 {
	return offer.BaseSalary + offer.Bonus + offer.EquityTotal/EquityVestingYears
}

// AdjustedCompensation rescales total compensation by the location's cost of living index.
// Locations missing from colIndex are not adjusted.
func AdjustedCompensation(offer models.Offer, colIndex models.CostOfLivingIndex) float64 {
	index := colIndex.Lookup(offer.Location)
	return math.Round(TotalCompensation(offer) / index * 100)
}
