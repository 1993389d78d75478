package models

import (
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	MinRating     = 0
	MaxRating     = 10
	DefaultRating = 5

	// DefaultLocation is used when an offer is entered without a location.
	DefaultLocation = "Remote"
)

var validate = validator.New()

type Offer struct {
	ID                string `gorm:"primaryKey"`
	UserID            int64  `gorm:"index"`
	Company           string `validate:"required"`
	Position          string `validate:"required"`
	Location          string
	BaseSalary        float64
	Bonus             float64
	EquityTotal       float64
	Benefits          string
	WorkLifeBalance   int `validate:"min=0,max=10"`
	CareerGrowth      int `validate:"min=0,max=10"`
	CompanyRating     int `validate:"min=0,max=10"`
	RemoteFlexibility int `validate:"min=0,max=10"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OfferInput carries user-entered values. Nil ratings fall back to DefaultRating.
type OfferInput struct {
	Company           string
	Position          string
	Location          string
	BaseSalary        float64
	Bonus             float64
	EquityTotal       float64
	Benefits          []string
	WorkLifeBalance   *int
	CareerGrowth      *int
	CompanyRating     *int
	RemoteFlexibility *int
}

func NewOffer(userID int64, input OfferInput) *Offer {
	offer := &Offer{ID: uuid.NewString(), UserID: userID}
	offer.apply(input)
	return offer
}

// ReplaceWith returns a full replacement of the offer that keeps its identity.
func (o *Offer) ReplaceWith(input OfferInput) *Offer {
	replaced := &Offer{ID: o.ID, UserID: o.UserID, CreatedAt: o.CreatedAt}
	replaced.apply(input)
	return replaced
}

func (o *Offer) apply(input OfferInput) {
	o.Company = strings.TrimSpace(input.Company)
	o.Position = strings.TrimSpace(input.Position)
	o.Location = strings.TrimSpace(input.Location)
	if o.Location == "" {
		o.Location = DefaultLocation
	}
	o.BaseSalary = input.BaseSalary
	o.Bonus = input.Bonus
	o.EquityTotal = input.EquityTotal
	o.SetBenefits(input.Benefits)
	o.WorkLifeBalance = ratingOrDefault(input.WorkLifeBalance)
	o.CareerGrowth = ratingOrDefault(input.CareerGrowth)
	o.CompanyRating = ratingOrDefault(input.CompanyRating)
	o.RemoteFlexibility = ratingOrDefault(input.RemoteFlexibility)
}

// ErrNonFiniteAmount is returned by Validate for an infinite or NaN compensation amount.
var ErrNonFiniteAmount = errors.New("compensation amounts must be finite numbers")

func (o *Offer) Validate() error {
	if err := validate.Struct(o); err != nil {
		return err
	}
	for _, amount := range []float64{o.BaseSalary, o.Bonus, o.EquityTotal} {
		if math.IsInf(amount, 0) || math.IsNaN(amount) {
			return ErrNonFiniteAmount
		}
	}
	return nil
}

func (o *Offer) SetBenefits(benefits []string) {
	trimmed := lo.Map(benefits, func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
	trimmed = lo.Uniq(lo.Compact(trimmed))
	o.Benefits = strings.Join(trimmed, ",")
}

func (o *Offer) BenefitsAsArray() []string {
	if o.Benefits == "" {
		return []string{}
	}
	return strings.Split(o.Benefits, ",")
}

func ratingOrDefault(rating *int) int {
	if rating == nil {
		return DefaultRating
	}
	return *rating
}
