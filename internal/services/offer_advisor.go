package services

import (
	"context"
	"fmt"
	"github.com/maxaizer/offers-bot/internal/logger"
	"github.com/maxaizer/offers-bot/internal/metrics"
	"github.com/maxaizer/offers-bot/internal/ranking"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

const NoOffersAdvice = "Add at least one offer to get a recommendation."

type aiClient interface {
	GenerateResponse(ctx context.Context, request string) (string, error)
}

// OfferAdvisor asks the AI model for a short recommendation over a computed ranking.
// Failures are answered with a static recommendation derived from the ranking itself.
type OfferAdvisor struct {
	aiClient aiClient
}

func NewOfferAdvisor(aiClient aiClient) *OfferAdvisor {
	return &OfferAdvisor{aiClient: aiClient}
}

func (a *OfferAdvisor) Advise(ctx context.Context, result ranking.Ranking) string {

	if len(result.Offers) == 0 {
		return NoOffersAdvice
	}

	start := time.Now()
	response, err := a.aiClient.GenerateResponse(ctx, a.adviceRequest(result))
	metrics.AiRequestDuration.Observe(time.Since(start).Seconds())

	response = strings.TrimSpace(response)
	if err != nil || response == "" {
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).Errorf("failed to get offer advice: %v", err)
		}
		metrics.AiFallbacksCounter.Inc()
		return FallbackAdvice(result)
	}

	return response
}

func (a *OfferAdvisor) adviceRequest(result ranking.Ranking) string {

	var sb strings.Builder
	sb.WriteString("You are a career advisor helping a candidate choose between job offers.\n")
	fmt.Fprintf(&sb, "Candidate priorities (0-100, independent): salary %.0f, work-life balance %.0f, "+
		"career growth %.0f, culture %.0f.\n", result.Weights.Salary, result.Weights.WorkLife,
		result.Weights.Growth, result.Weights.Culture)
	sb.WriteString("Offers, already scored and ordered best first:\n")

	for i, ranked := range result.Offers {
		offer := ranked.Offer
		fmt.Fprintf(&sb, "%d. %s, %s, %s. Total annual compensation %.0f (cost of living adjusted %.0f). "+
			"Work-life %d/10, growth %d/10, company rating %d/10, remote flexibility %d/10. Score %d.",
			i+1, offer.Company, offer.Position, offer.Location, ranked.TotalCompensation,
			ranked.AdjustedCompensation, offer.WorkLifeBalance, offer.CareerGrowth, offer.CompanyRating,
			offer.RemoteFlexibility, ranked.Score)
		if benefits := offer.BenefitsAsArray(); len(benefits) > 0 {
			sb.WriteString(" Benefits: " + strings.Join(benefits, ", ") + ".")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("In at most 5 sentences of plain text, recommend which offer to accept, " +
		"mention the main trade-off and one point worth negotiating. Do not change the scores.")
	return sb.String()
}

// FallbackAdvice is the recommendation used when the AI model is unavailable.
func FallbackAdvice(result ranking.Ranking) string {
	best, ok := result.Best()
	if !ok {
		return NoOffersAdvice
	}

	advice := fmt.Sprintf("%s (%s) has the highest score (%d) for your current priorities.",
		best.Offer.Company, best.Offer.Position, best.Score)
	if len(result.Offers) > 1 {
		runnerUp := result.Offers[1]
		advice += fmt.Sprintf(" %s follows with %d.", runnerUp.Offer.Company, runnerUp.Score)
		if runnerUp.AdjustedCompensation > best.AdjustedCompensation {
			advice += " It pays more after cost of living adjustment, so compare priorities before deciding."
		}
	}
	return advice
}
