package bot

import (
	"context"
	"fmt"

	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/offers-bot/internal/domain/events"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/maxaizer/offers-bot/internal/logger"
	"github.com/maxaizer/offers-bot/internal/metrics"
	log "github.com/sirupsen/logrus"
)

const removeOfferCommandName = "Remove offer"

type removeOfferCommand struct {
	api                  apiInterface
	chatID               int64
	bus                  EventBus.Bus
	offers               offerRepository
	selection            *offerInput
	finished             bool
	finishCallback       func()
	finalMessageKeyboard *botApi.ReplyKeyboardMarkup
}

func newRemoveOfferCommand(api apiInterface, chatID int64, bus EventBus.Bus, offers offerRepository) (*removeOfferCommand, error) {

	cmd := &removeOfferCommand{api: api, chatID: chatID, bus: bus, offers: offers}

	selection, err := newOfferInput(chatID, offers, func(offer *models.Offer) {
		_, _ = sendWithLogError(api, cmd.remove(offer))
		cmd.finished = true
	})
	if err != nil {
		return nil, err
	}
	cmd.selection = selection
	return cmd, nil
}

func (c *removeOfferCommand) WithKeyboardOnFinalMessage(keyboard botApi.ReplyKeyboardMarkup) {
	c.finalMessageKeyboard = &keyboard
}

func (c *removeOfferCommand) WithFinishCallback(callback func()) {
	c.finishCallback = callback
}

func (c *removeOfferCommand) Run() {
	_, _ = sendWithLogError(c.api, c.selection.InitMessage())
}

func (c *removeOfferCommand) OnUserInput(input string) {

	if msg := c.selection.HandleInput(input); msg != nil {
		_, _ = sendWithLogError(c.api, msg)
		return
	}

	if c.finished && c.finishCallback != nil {
		c.finishCallback()
	}
}

func (c *removeOfferCommand) remove(offer *models.Offer) botApi.Chattable {

	msg := botApi.NewMessage(c.chatID, fmt.Sprintf("Offer from %s removed.", offer.Company))
	if c.finalMessageKeyboard != nil {
		msg.ReplyMarkup = *c.finalMessageKeyboard
	}

	if err := c.offers.Remove(context.Background(), c.chatID, offer.ID); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("error occurred while removing offer %s: %v", offer.ID, err)
		msg.Text = "Internal error, the offer was not removed."
		return msg
	}

	metrics.OffersSavedCounter.WithLabelValues("remove").Inc()
	c.bus.Publish(events.OffersChangedTopic, events.OffersChanged{UserID: c.chatID})
	return msg
}
