package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/offers-bot/internal/domain/events"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/maxaizer/offers-bot/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const weightsCommandName = "Weights"

// weightsCommand asks for the importance of each criterion, starting from the stored profile.
type weightsCommand struct {
	api                  apiInterface
	chatID               int64
	bus                  EventBus.Bus
	weights              weightsRepository
	profile              models.WeightProfile
	inputHandlers        []inputHandler
	curHandlerIndex      int
	finishCallback       func()
	finalMessageKeyboard *botApi.ReplyKeyboardMarkup
}

func newWeightsCommand(api apiInterface, chatID int64, bus EventBus.Bus, weights weightsRepository) (*weightsCommand, error) {

	profile, err := weights.Get(context.Background(), chatID)
	if err != nil {
		return nil, errors.Wrap(err, "load weights")
	}

	cmd := &weightsCommand{api: api, chatID: chatID, bus: bus, weights: weights, profile: profile}
	cmd.inputHandlers = []inputHandler{
		cmd.weightField("salary", &cmd.profile.Salary),
		cmd.weightField("work-life balance", &cmd.profile.WorkLife),
		cmd.weightField("career growth", &cmd.profile.Growth),
		cmd.weightField("culture", &cmd.profile.Culture),
	}
	return cmd, nil
}

type weightsState struct {
	CurHandlerIndex int                  `json:"curHandlerIndex"`
	Profile         models.WeightProfile `json:"profile"`
}

func (c *weightsCommand) WithKeyboardOnFinalMessage(keyboard botApi.ReplyKeyboardMarkup) {
	c.finalMessageKeyboard = &keyboard
}

func (c *weightsCommand) WithFinishCallback(callback func()) {
	c.finishCallback = callback
}

func (c *weightsCommand) Run() {
	_, _ = sendWithLogError(c.api, c.inputHandlers[c.curHandlerIndex].InitMessage())
}

func (c *weightsCommand) OnUserInput(input string) {

	if c.curHandlerIndex >= len(c.inputHandlers) {
		return
	}

	msg := c.inputHandlers[c.curHandlerIndex].HandleInput(input)
	if msg != nil {
		_, _ = sendWithLogError(c.api, msg)
		return
	}

	if c.curHandlerIndex < len(c.inputHandlers) {
		_, _ = sendWithLogError(c.api, c.inputHandlers[c.curHandlerIndex].InitMessage())
		return
	}

	_, _ = sendWithLogError(c.api, c.save())
	if c.finishCallback != nil {
		c.finishCallback()
	}
}

func (c *weightsCommand) SaveState() ([]byte, error) {
	return json.Marshal(weightsState{CurHandlerIndex: c.curHandlerIndex, Profile: c.profile})
}

func (c *weightsCommand) LoadState(data []byte) error {
	var state weightsState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if state.CurHandlerIndex < 0 || state.CurHandlerIndex >= len(c.inputHandlers) {
		return fmt.Errorf("invalid weights step: %d", state.CurHandlerIndex)
	}
	c.curHandlerIndex = state.CurHandlerIndex
	c.profile = state.Profile
	c.profile.UserID = c.chatID
	return nil
}

func (c *weightsCommand) save() botApi.Chattable {

	msg := botApi.NewMessage(c.chatID, fmt.Sprintf("Weights saved: %s.", weightsToText(c.profile)))
	if c.finalMessageKeyboard != nil {
		msg.ReplyMarkup = *c.finalMessageKeyboard
	}

	if err := c.profile.Validate(); err != nil {
		msg.Text = fmt.Sprintf("Weights are invalid: %v", err)
		return msg
	}

	if err := c.weights.Save(context.Background(), c.profile); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("error occurred while saving weights for user %d: %v", c.chatID, err)
		msg.Text = "Internal error, weights were not saved."
		return msg
	}

	c.bus.Publish(events.OffersChangedTopic, events.OffersChanged{UserID: c.chatID})
	return msg
}

func (c *weightsCommand) weightField(name string, field *float64) *textInput {

	text := fmt.Sprintf("How important is %s? Enter 0 to 100 in steps of %d.\nCurrent: %s. Send %s to keep it.",
		name, models.WeightStep, strconv.FormatFloat(*field, 'f', -1, 64), keepValue)

	input := newTextInput(c.chatID, text, func(input string) {
		if input != keepValue {
			value, _ := strconv.Atoi(input)
			*field = float64(value)
		}
		c.curHandlerIndex++
	})

	input.AddValidation(validation{
		function: func(input string) bool {
			if input == keepValue {
				return true
			}
			value, err := strconv.Atoi(input)
			return err == nil && value >= 0 && value <= 100 && value%models.WeightStep == 0
		},
		errorMessage: fmt.Sprintf("Enter a number from 0 to 100 in steps of %d.", models.WeightStep),
	})
	return input
}
