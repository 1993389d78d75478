package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/maxaizer/offers-bot/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rankFile = `
weights:
  salary: 40
  work_life: 25
  growth: 20
  culture: 15
cost_of_living:
  - location: Seattle, WA
    index: 165
  - location: Mountain View, CA
    index: 190
offers:
  - company: Amazon
    position: Senior SDE
    location: Seattle, WA
    base_salary: 150000
    bonus: 30000
    equity_total: 120000
    benefits: [Health, 401k]
    work_life_balance: 6
    career_growth: 9
    company_rating: 8
    remote_flexibility: 4
  - company: Google
    position: Software Engineer III
    location: Mountain View, CA
    base_salary: 165000
    bonus: 35000
    equity_total: 150000
    work_life_balance: 7
    career_growth: 8
    company_rating: 9
    remote_flexibility: 6
`

func writeRankFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "offers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRankInput(t *testing.T) {

	input, err := loadRankInput(writeRankFile(t, rankFile))
	require.NoError(t, err)

	require.Len(t, input.Offers, 2)
	assert.Equal(t, "Amazon", input.Offers[0].Company)
	assert.Equal(t, []string{"Health", "401k"}, input.Offers[0].BenefitsAsArray())
	assert.Equal(t, 9, input.Offers[0].CareerGrowth)
	assert.Equal(t, 190.0, input.CostOfLiving["Mountain View, CA"])

	result := ranking.Rank(input.Offers, input.Weights, input.CostOfLiving)
	assert.Equal(t, "Google", result.Offers[0].Offer.Company)
	assert.Equal(t, 85, result.Offers[0].Score)
	assert.Equal(t, 77, result.Offers[1].Score)
	assert.Equal(t, 127273.0, result.Offers[1].AdjustedCompensation)
}

func TestLoadRankInput_Defaults(t *testing.T) {

	input, err := loadRankInput(writeRankFile(t, `
offers:
  - company: Startup
    position: Engineer
    base_salary: 100000
`))
	require.NoError(t, err)

	assert.Equal(t, models.DefaultWeights(), input.Weights)
	assert.Equal(t, models.DefaultCostOfLiving(), input.CostOfLiving)
	require.Len(t, input.Offers, 1)
	assert.Equal(t, models.DefaultLocation, input.Offers[0].Location)
	assert.Equal(t, models.DefaultRating, input.Offers[0].WorkLifeBalance)
}

func TestLoadRankInput_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing company", "offers:\n  - position: Engineer\n"},
		{"rating out of range", "offers:\n  - company: A\n    position: B\n    career_growth: 11\n"},
		{"weight out of range", "weights:\n  salary: 150\n"},
		{"zero cost of living index", "cost_of_living:\n  - location: Berlin\n    index: 0\n" +
			"offers:\n  - company: A\n    position: B\n    location: Berlin\n    base_salary: 100000\n"},
		{"negative cost of living index", "cost_of_living:\n  - location: Berlin\n    index: -100\n"},
		{"infinite salary", "offers:\n  - company: A\n    position: B\n    base_salary: .inf\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadRankInput(writeRankFile(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := loadRankInput(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPrintRanking(t *testing.T) {

	input, err := loadRankInput(writeRankFile(t, rankFile))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printRanking(&out, ranking.Rank(input.Offers, input.Weights, input.CostOfLiving)))

	text := out.String()
	assert.Contains(t, text, "COMPANY")
	assert.Contains(t, text, "$237,500")
	assert.Contains(t, text, "$127,273")
	assert.Contains(t, text, "Health, 401k")
	assert.Contains(t, text, "Google (Software Engineer III) has the highest score (85)")
}

func TestPrintRanking_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printRanking(&out, ranking.Ranking{}))
	assert.Equal(t, "No offers to rank.\n", out.String())
}
