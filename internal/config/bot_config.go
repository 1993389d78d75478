package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"strings"
)

type BotConfig struct {
	Token                  string  `mapstructure:"token"`
	AIKey                  string  `mapstructure:"ai_key"`
	AIModel                string  `mapstructure:"ai_model"`
	AiMaxAttempts          int     `mapstructure:"ai_max_attempts"`
	AiMaxRequestsPerMinute float32 `mapstructure:"ai_max_requests_per_minute"`
	AiMaxRequestsPerDay    float32 `mapstructure:"ai_max_requests_per_day"`
	OfferExpirationInDays  int     `mapstructure:"offer_expiration_days"`
}

func (config BotConfig) validate() error {

	var missingFields []string

	if config.Token == "" {
		missingFields = append(missingFields, "token")
	}

	if config.AIKey == "" {
		missingFields = append(missingFields, "ai_key")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	if config.AiMaxAttempts < 1 {
		return errors.New("ai_max_attempts must be at least 1")
	}

	if config.OfferExpirationInDays <= 0 {
		return errors.New("offer_expiration_days must be greater than zero")
	}

	return nil
}

func (config BotConfig) bindEnvironmentVariables() error {
	var errs []error

	bindings := map[string]string{
		"bot.ai_key":                     "AI_KEY",
		"bot.token":                      "TOKEN",
		"bot.ai_model":                   "AI_MODEL",
		"bot.ai_max_attempts":            "AI_MAX_ATTEMPTS",
		"bot.ai_max_requests_per_minute": "AI_MAX_REQUESTS_PER_MINUTE",
		"bot.ai_max_requests_per_day":    "AI_MAX_REQUESTS_PER_DAY",
		"bot.offer_expiration_days":      "OFFER_EXPIRATION_DAYS",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
