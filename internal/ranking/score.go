// Package ranking scores competing job offers against a weight profile.
//
// Every function here is pure: inputs are never mutated and nothing is cached.
package ranking

import (
	"math"
	"sort"

	"github.com/maxaizer/offers-bot/internal/domain/models"
)

// SubScores are the per-dimension values on a 0..100 scale before weighting.
type SubScores struct {
	Compensation float64
	WorkLife     float64
	Growth       float64
	Culture      float64
}

// RankedOffer is one offer with every figure derived for it.
type RankedOffer struct {
	Offer                models.Offer
	TotalCompensation    float64
	AdjustedCompensation float64
	SubScores            SubScores
	Score                int
}

// Ranking is ordered by score, best first.
type Ranking struct {
	Weights models.WeightProfile
	Offers  []RankedOffer
}

// Best returns the top entry, false when the ranking is empty.
func (r Ranking) Best() (RankedOffer, bool) {
	if len(r.Offers) == 0 {
		return RankedOffer{}, false
	}
	return r.Offers[0], true
}

// MaxCompensation returns the highest total compensation in the set, 0 for an empty set.
func MaxCompensation(offers []models.Offer) float64 {
	var maxComp float64
	for i, offer := range offers {
		comp := TotalCompensation(offer)
		if i == 0 || comp > maxComp {
			maxComp = comp
		}
	}
	return maxComp
}

func subScores(offer models.Offer, maxComp float64) SubScores {
	var compScore float64
	if maxComp != 0 {
		compScore = TotalCompensation(offer) / maxComp * 100
	}
	return SubScores{
		Compensation: compScore,
		WorkLife:     float64(offer.WorkLifeBalance) / 10 * 100,
		Growth:       float64(offer.CareerGrowth) / 10 * 100,
		Culture:      float64(offer.CompanyRating+offer.RemoteFlexibility) / 20 * 100,
	}
}

func weightedScore(s SubScores, weights models.WeightProfile) int {
	// not clamped, weights need not sum to 100
	return int(math.Round(
		s.Compensation*weights.Salary/100 +
			s.WorkLife*weights.WorkLife/100 +
			s.Growth*weights.Growth/100 +
			s.Culture*weights.Culture/100,
	))
}

// Score computes the composite score of offer relative to allOffers.
// Compensation is normalized against the best paid offer in allOffers.
func Score(offer models.Offer, allOffers []models.Offer, weights models.WeightProfile) int {
	return weightedScore(subScores(offer, MaxCompensation(allOffers)), weights)
}

// BestOffer returns the highest scoring offer. On equal scores the earliest offer wins.
// The second result is false only when allOffers is empty.
func BestOffer(allOffers []models.Offer, weights models.WeightProfile) (models.Offer, bool) {
	if len(allOffers) == 0 {
		return models.Offer{}, false
	}

	maxComp := MaxCompensation(allOffers)
	best, bestScore := 0, weightedScore(subScores(allOffers[0], maxComp), weights)
	for i := 1; i < len(allOffers); i++ {
		if score := weightedScore(subScores(allOffers[i], maxComp), weights); score > bestScore {
			best, bestScore = i, score
		}
	}
	return allOffers[best], true
}

// Rank scores every offer and orders them best first, keeping input order for equal scores.
func Rank(allOffers []models.Offer, weights models.WeightProfile, colIndex models.CostOfLivingIndex) Ranking {
	maxComp := MaxCompensation(allOffers)

	ranked := make([]RankedOffer, 0, len(allOffers))
	for _, offer := range allOffers {
		scores := subScores(offer, maxComp)
		ranked = append(ranked, RankedOffer{
			Offer:                offer,
			TotalCompensation:    TotalCompensation(offer),
			AdjustedCompensation: AdjustedCompensation(offer, colIndex),
			SubScores:            scores,
			Score:                weightedScore(scores, weights),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return Ranking{Weights: weights, Offers: ranked}
}
