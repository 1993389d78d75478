package services

import (
	"context"
	"github.com/maxaizer/offers-bot/internal/logger"
	"github.com/maxaizer/offers-bot/internal/metrics"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type OfferCleanupRepository interface {
	RemoveOlderThan(ctx context.Context, expirationTime time.Time) (int64, error)
}

// OffersCleaner removes offers nobody touched for the configured number of days.
type OffersCleaner struct {
	offers               OfferCleanupRepository
	cron                 *cron.Cron
	expirationTimeInDays int
	now                  func() time.Time
}

func NewOffersCleaner(offers OfferCleanupRepository, expirationInDays int) (*OffersCleaner, error) {

	if expirationInDays <= 0 {
		return nil, errors.New("expiration in days must be greater than zero")
	}

	return &OffersCleaner{
		offers:               offers,
		cron:                 cron.New(),
		expirationTimeInDays: expirationInDays,
		now:                  time.Now,
	}, nil
}

func (oc *OffersCleaner) Start() error {
	if _, err := oc.cron.AddFunc("0 0 * * *", func() { oc.cleanExpiredOffers(context.Background()) }); err != nil {
		return err
	}

	oc.cron.Start()
	log.Infof("offers cleaner started, expiration in days: %d", oc.expirationTimeInDays)
	return nil
}

func (oc *OffersCleaner) Stop() {
	<-oc.cron.Stop().Done()
}

func (oc *OffersCleaner) cleanExpiredOffers(ctx context.Context) {
	expirationTime := oc.now().Add(-time.Duration(oc.expirationTimeInDays) * 24 * time.Hour)
	rowsAffected, err := oc.offers.RemoveOlderThan(ctx, expirationTime)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to clean expired offers: %v", err)
		return
	}
	metrics.CleanedOffersCounter.Add(float64(rowsAffected))
	log.Infof("expired offers were cleaned at %v, affected rows: %v", oc.now(), rowsAffected)
}
