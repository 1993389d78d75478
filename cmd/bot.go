package main

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/offers-bot/internal/bot"
	"github.com/maxaizer/offers-bot/internal/clients/gemini"
	"github.com/maxaizer/offers-bot/internal/config"
	"github.com/maxaizer/offers-bot/internal/logger"
	"github.com/maxaizer/offers-bot/internal/metrics"
	"github.com/maxaizer/offers-bot/internal/repositories"
	"github.com/maxaizer/offers-bot/internal/services"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newBotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runBot(cmd.Context(), cfg)
		},
	}
}

func runBot(ctx context.Context, cfg *config.Config) error {

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Metrics.Port)

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		return errors.Wrap(err, "can't create db context")
	}
	defer dbContext.Close()

	if err = dbContext.Migrate(cfg.Ranking.CostOfLivingIndex()); err != nil {
		return errors.Wrap(err, "can't migrate db context")
	}

	offers := repositories.NewOffersRepository(dbContext.DB)
	weights := repositories.NewWeightsRepository(dbContext.DB, cfg.Ranking.Weights)
	costOfLiving := repositories.NewCachedCostOfLiving(repositories.NewCostOfLivingRepository(dbContext.DB))
	data := repositories.NewDataRepository(dbContext.DB)

	bus := EventBus.New()

	ranker, err := services.NewOfferRanker(bus, offers, weights, costOfLiving)
	if err != nil {
		return errors.Wrap(err, "can't create ranker")
	}

	aiClient, err := gemini.NewClient(ctx, cfg.Bot.AIKey, gemini.Model(cfg.Bot.AIModel))
	if err != nil {
		return errors.Wrap(err, "can't create AI client")
	}
	defer aiClient.Close()
	aiClient.SetMaxAttempts(cfg.Bot.AiMaxAttempts)
	aiClient.SetMinuteRateLimit(cfg.Bot.AiMaxRequestsPerMinute)
	aiClient.SetDayRateLimit(cfg.Bot.AiMaxRequestsPerDay)

	advisor := services.NewOfferAdvisor(aiClient)

	cleaner, err := services.NewOffersCleaner(offers, cfg.Bot.OfferExpirationInDays)
	if err != nil {
		return errors.Wrap(err, "can't create cleaner")
	}
	if err = cleaner.Start(); err != nil {
		return errors.Wrap(err, "can't start cleaner")
	}
	defer cleaner.Stop()

	tgbot, err := bot.NewBot(cfg.Bot.Token, bus,
		bot.Repositories{Offers: offers, Weights: weights, Data: data},
		bot.Services{Ranker: ranker, Advisor: advisor})
	if err != nil {
		return errors.Wrap(err, "can't create bot")
	}
	go tgbot.Run()

	<-ctx.Done()

	log.Info("Shutting down services...")
	tgbot.Stop()
	bus.WaitAsync()
	log.Info("Services stopped.")
	return nil
}
