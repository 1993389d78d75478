package bot

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/maxaizer/offers-bot/internal/ranking"
)

func rankingToText(result ranking.Ranking) string {

	if len(result.Offers) == 0 {
		return fmt.Sprintf("You have no offers yet. Use \"%s\" to add one.", addOfferCommandName)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Offer ranking (%s)\n\n", weightsToText(result.Weights)))

	for i, ranked := range result.Offers {
		offer := ranked.Offer
		sb.WriteString(fmt.Sprintf("%d. %s, %s", i+1, offer.Company, offer.Position))
		if i == 0 {
			sb.WriteString(" ⭐ best match")
		}
		sb.WriteString(fmt.Sprintf("\n   Score %d | Total %s | Adjusted for %s: %s\n",
			ranked.Score, money(ranked.TotalCompensation), offer.Location, money(ranked.AdjustedCompensation)))
		sb.WriteString(fmt.Sprintf("   Work-life %d, growth %d, company %d, remote %d\n",
			offer.WorkLifeBalance, offer.CareerGrowth, offer.CompanyRating, offer.RemoteFlexibility))
		if benefits := offer.BenefitsAsArray(); len(benefits) > 0 {
			sb.WriteString("   Benefits: " + strings.Join(benefits, ", ") + "\n")
		}
	}
	return sb.String()
}

func weightsToText(weights models.WeightProfile) string {
	return fmt.Sprintf("salary %g, work-life %g, growth %g, culture %g",
		weights.Salary, weights.WorkLife, weights.Growth, weights.Culture)
}

func money(amount float64) string {
	return "$" + humanize.Comma(int64(math.Round(amount)))
}
