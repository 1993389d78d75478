package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/offers-bot/internal/domain/events"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/maxaizer/offers-bot/internal/logger"
	"github.com/maxaizer/offers-bot/internal/metrics"
	"github.com/maxaizer/offers-bot/internal/ranking"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type offerRepository interface {
	GetByUser(ctx context.Context, userID int64) ([]models.Offer, error)
}

type weightsRepository interface {
	Get(ctx context.Context, userID int64) (models.WeightProfile, error)
}

type costOfLivingRepository interface {
	GetIndex(ctx context.Context) (models.CostOfLivingIndex, error)
}

// OfferRanker loads a user's offers, weights and the cost of living table and ranks them.
// It keeps no state between calls.
type OfferRanker struct {
	bus          EventBus.Bus
	offers       offerRepository
	weights      weightsRepository
	costOfLiving costOfLivingRepository
}

func NewOfferRanker(bus EventBus.Bus, offers offerRepository, weights weightsRepository,
	costOfLiving costOfLivingRepository) (*OfferRanker, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}

	r := &OfferRanker{bus: bus, offers: offers, weights: weights, costOfLiving: costOfLiving}
	// async: a synchronous handler can't publish while the bus holds its lock
	if err := bus.SubscribeAsync(events.OffersChangedTopic, r.onOffersChanged, false); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *OfferRanker) RankForUser(ctx context.Context, userID int64) (ranking.Ranking, error) {

	offers, err := r.offers.GetByUser(ctx, userID)
	if err != nil {
		return ranking.Ranking{}, errors.Wrap(err, "get offers")
	}

	weights, err := r.weights.Get(ctx, userID)
	if err != nil {
		return ranking.Ranking{}, errors.Wrap(err, "get weights")
	}

	colIndex, err := r.costOfLiving.GetIndex(ctx)
	if err != nil {
		return ranking.Ranking{}, errors.Wrap(err, "get cost of living")
	}

	result := ranking.Rank(offers, weights, colIndex)
	metrics.RankingsComputedCounter.Inc()
	metrics.RankedOffersHistogram.Observe(float64(len(result.Offers)))

	if best, ok := result.Best(); ok {
		log.Debugf("ranked %d offers for user %d, best is %q with score %d",
			len(result.Offers), userID, best.Offer.Company, best.Score)
	}
	return result, nil
}

func (r *OfferRanker) onOffersChanged(event events.OffersChanged) {
	result, err := r.RankForUser(context.Background(), event.UserID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to rank offers for user %d: %v", event.UserID, err)
		return
	}
	r.bus.Publish(events.RankingUpdatedTopic, events.RankingUpdated{UserID: event.UserID, Ranking: result})
}
