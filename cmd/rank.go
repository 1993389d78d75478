package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/maxaizer/offers-bot/internal/config"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/maxaizer/offers-bot/internal/ranking"
	"github.com/maxaizer/offers-bot/internal/services"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// offerEntry is one offer of a rank file. Omitted ratings default like in the bot.
type offerEntry struct {
	Company           string   `mapstructure:"company"`
	Position          string   `mapstructure:"position"`
	Location          string   `mapstructure:"location"`
	BaseSalary        float64  `mapstructure:"base_salary"`
	Bonus             float64  `mapstructure:"bonus"`
	EquityTotal       float64  `mapstructure:"equity_total"`
	Benefits          []string `mapstructure:"benefits"`
	WorkLifeBalance   *int     `mapstructure:"work_life_balance"`
	CareerGrowth      *int     `mapstructure:"career_growth"`
	CompanyRating     *int     `mapstructure:"company_rating"`
	RemoteFlexibility *int     `mapstructure:"remote_flexibility"`
}

type rankInput struct {
	Offers       []models.Offer
	Weights      models.WeightProfile
	CostOfLiving models.CostOfLivingIndex
}

func newRankCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank the offers listed in a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := loadRankInput(file)
			if err != nil {
				return err
			}
			result := ranking.Rank(input.Offers, input.Weights, input.CostOfLiving)
			return printRanking(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "offers.yaml", "YAML file with offers, weights and cost of living")
	return cmd
}

func loadRankInput(file string) (*rankInput, error) {

	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read %s", file)
	}

	weights := models.DefaultWeights()
	if err := v.UnmarshalKey("weights", &weights); err != nil {
		return nil, errors.Wrap(err, "parse weights")
	}

	var costOfLiving []config.CostOfLivingSetting
	if err := v.UnmarshalKey("cost_of_living", &costOfLiving); err != nil {
		return nil, errors.Wrap(err, "parse cost_of_living")
	}

	settings := config.RankingConfig{Weights: weights, CostOfLiving: costOfLiving}
	if err := settings.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid ranking settings in %s", file)
	}

	var entries []offerEntry
	if err := v.UnmarshalKey("offers", &entries); err != nil {
		return nil, errors.Wrap(err, "parse offers")
	}

	offers := make([]models.Offer, 0, len(entries))
	for i, entry := range entries {
		offer := models.NewOffer(0, models.OfferInput{
			Company:           entry.Company,
			Position:          entry.Position,
			Location:          entry.Location,
			BaseSalary:        entry.BaseSalary,
			Bonus:             entry.Bonus,
			EquityTotal:       entry.EquityTotal,
			Benefits:          entry.Benefits,
			WorkLifeBalance:   entry.WorkLifeBalance,
			CareerGrowth:      entry.CareerGrowth,
			CompanyRating:     entry.CompanyRating,
			RemoteFlexibility: entry.RemoteFlexibility,
		})
		if err := offer.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid offer #%d", i+1)
		}
		offers = append(offers, *offer)
	}

	return &rankInput{
		Offers:       offers,
		Weights:      weights,
		CostOfLiving: settings.CostOfLivingIndex(),
	}, nil
}

func printRanking(out io.Writer, result ranking.Ranking) error {

	if len(result.Offers) == 0 {
		_, err := fmt.Fprintln(out, "No offers to rank.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCOMPANY\tPOSITION\tLOCATION\tTOTAL\tADJUSTED\tSCORE\tBENEFITS")
	for i, ranked := range result.Offers {
		offer := ranked.Offer
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n", i+1, offer.Company, offer.Position, offer.Location,
			money(ranked.TotalCompensation), money(ranked.AdjustedCompensation),
			ranked.Score, strings.Join(offer.BenefitsAsArray(), ", "))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\n%s\n", services.FallbackAdvice(result))
	return err
}

func money(amount float64) string {
	return "$" + humanize.Comma(int64(math.Round(amount)))
}
