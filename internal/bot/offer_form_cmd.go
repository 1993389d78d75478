package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/offers-bot/internal/domain/events"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/maxaizer/offers-bot/internal/logger"
	"github.com/maxaizer/offers-bot/internal/metrics"
	log "github.com/sirupsen/logrus"
)

const addOfferCommandName = "Add offer"

// offerFormCommand walks the user through every offer field. With a target offer
// the answers replace it as a whole, otherwise a new offer is created.
type offerFormCommand struct {
	api                  apiInterface
	chatID               int64
	bus                  EventBus.Bus
	offers               offerRepository
	target               *models.Offer
	input                models.OfferInput
	inputHandlers        []inputHandler
	curHandlerIndex      int
	finishCallback       func()
	finalMessageKeyboard *botApi.ReplyKeyboardMarkup
}

type offerFormState struct {
	CurHandlerIndex int               `json:"curHandlerIndex"`
	Input           models.OfferInput `json:"input"`
}

func newAddOfferCommand(api apiInterface, chatID int64, bus EventBus.Bus, offers offerRepository) *offerFormCommand {
	return newOfferFormCommand(api, chatID, bus, offers, nil)
}

func newOfferFormCommand(api apiInterface, chatID int64, bus EventBus.Bus, offers offerRepository,
	target *models.Offer) *offerFormCommand {

	cmd := &offerFormCommand{api: api, chatID: chatID, bus: bus, offers: offers, target: target}
	if target != nil {
		cmd.input = inputFromOffer(*target)
	}

	cmd.inputHandlers = []inputHandler{
		cmd.textField("Company name", &cmd.input.Company, true),
		cmd.textField("Position", &cmd.input.Position, true),
		cmd.textField("Location, e.g. Seattle, WA. Skipped means "+models.DefaultLocation, &cmd.input.Location, false),
		cmd.amountField("Base salary per year", &cmd.input.BaseSalary),
		cmd.amountField("Yearly bonus", &cmd.input.Bonus),
		cmd.amountField("Total equity grant (vests over 4 years)", &cmd.input.EquityTotal),
		cmd.benefitsField(),
		cmd.ratingField("Work-life balance", &cmd.input.WorkLifeBalance),
		cmd.ratingField("Career growth", &cmd.input.CareerGrowth),
		cmd.ratingField("Company rating", &cmd.input.CompanyRating),
		cmd.ratingField("Remote flexibility", &cmd.input.RemoteFlexibility),
	}
	return cmd
}

func inputFromOffer(offer models.Offer) models.OfferInput {
	intPtr := func(v int) *int { return &v }
	return models.OfferInput{
		Company:           offer.Company,
		Position:          offer.Position,
		Location:          offer.Location,
		BaseSalary:        offer.BaseSalary,
		Bonus:             offer.Bonus,
		EquityTotal:       offer.EquityTotal,
		Benefits:          offer.BenefitsAsArray(),
		WorkLifeBalance:   intPtr(offer.WorkLifeBalance),
		CareerGrowth:      intPtr(offer.CareerGrowth),
		CompanyRating:     intPtr(offer.CompanyRating),
		RemoteFlexibility: intPtr(offer.RemoteFlexibility),
	}
}

func (c *offerFormCommand) WithKeyboardOnFinalMessage(keyboard botApi.ReplyKeyboardMarkup) {
	c.finalMessageKeyboard = &keyboard
}

func (c *offerFormCommand) WithFinishCallback(callback func()) {
	c.finishCallback = callback
}

func (c *offerFormCommand) Run() {
	_, _ = sendWithLogError(c.api, c.inputHandlers[c.curHandlerIndex].InitMessage())
}

func (c *offerFormCommand) OnUserInput(input string) {

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

func (c *offerFormCommand) SaveState() ([]byte, error) {
	return json.Marshal(offerFormState{CurHandlerIndex: c.curHandlerIndex, Input: c.input})
}

func (c *offerFormCommand) LoadState(data []byte) error {
	var state offerFormState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if state.CurHandlerIndex < 0 || state.CurHandlerIndex >= len(c.inputHandlers) {
		return fmt.Errorf("invalid offer form step: %d", state.CurHandlerIndex)
	}
	c.curHandlerIndex = state.CurHandlerIndex
	c.input = state.Input
	return nil
}

func (c *offerFormCommand) save() botApi.Chattable {

	var offer *models.Offer
	operation := "add"
	if c.target == nil {
		offer = models.NewOffer(c.chatID, c.input)
	} else {
		offer = c.target.ReplaceWith(c.input)
		operation = "replace"
	}

	msg := botApi.NewMessage(c.chatID, "")
	if c.finalMessageKeyboard != nil {
		msg.ReplyMarkup = *c.finalMessageKeyboard
	}

	if err := offer.Validate(); err != nil {
		msg.Text = fmt.Sprintf("The offer is invalid: %v", err)
		return msg
	}

	var err error
	if c.target == nil {
		err = c.offers.Add(context.Background(), *offer)
	} else {
		err = c.offers.Replace(context.Background(), *offer)
	}

	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("error occurred while saving offer for user %d: %v", c.chatID, err)
		msg.Text = "Internal error, the offer was not saved."
		return msg
	}

	metrics.OffersSavedCounter.WithLabelValues(operation).Inc()
	c.bus.Publish(events.OffersChangedTopic, events.OffersChanged{UserID: c.chatID})

	msg.Text = fmt.Sprintf("Offer from %s saved.", offer.Company)
	return msg
}

func (c *offerFormCommand) prompt(title string, current string, hint string) string {
	text := title + "."
	if hint != "" {
		text += " " + hint
	}
	if c.target != nil {
		text += fmt.Sprintf("\nCurrent: %s. Send %s to keep it.", current, keepValue)
	}
	return text
}

func (c *offerFormCommand) next() {
	c.curHandlerIndex++
}

func (c *offerFormCommand) textField(title string, field *string, required bool) *textInput {

	hint := ""
	if !required && c.target == nil {
		hint = fmt.Sprintf("Send %s to skip.", keepValue)
	}

	input := newTextInput(c.chatID, c.prompt(title, *field, hint), func(input string) {
		if input != keepValue {
			*field = input
		} else if c.target == nil {
			*field = ""
		}
		c.next()
	})

	if required {
		input.AddValidation(validation{
			function: func(input string) bool {
				if input == keepValue {
					return *field != ""
				}
				return input != ""
			},
			errorMessage: title + " is required.",
		})
	}
	return input
}

func (c *offerFormCommand) amountField(title string, field *float64) *textInput {

	hint := ""
	if c.target == nil {
		hint = fmt.Sprintf("Send %s for none.", keepValue)
	}

	input := newTextInput(c.chatID, c.prompt(title, strconv.FormatFloat(*field, 'f', -1, 64), hint),
		func(input string) {
			if input != keepValue {
				*field, _ = parseAmount(input)
			}
			c.next()
		})

	input.AddValidation(validation{
		function: func(input string) bool {
			return input == keepValue || isNonNegativeAmount(input)
		},
		errorMessage: "Enter a non-negative number, e.g. 150000.",
	})
	return input
}

func (c *offerFormCommand) benefitsField() *textInput {

	current := strings.Join(c.input.Benefits, ", ")
	if current == "" {
		current = "none"
	}

	hint := fmt.Sprintf("Comma separated, e.g. Health, 401k, Gym. Send %s for none.", keepValue)
	if c.target != nil {
		hint = "Comma separated."
	}

	return newTextInput(c.chatID, c.prompt("Benefits", current, hint), func(input string) {
		if input != keepValue {
			c.input.Benefits = strings.Split(input, ",")
		}
		c.next()
	})
}

func (c *offerFormCommand) ratingField(title string, field **int) *textInput {

	current := ""
	if *field != nil {
		current = strconv.Itoa(**field)
	}

	hint := fmt.Sprintf("Rate from %d to %d.", models.MinRating, models.MaxRating)
	if c.target == nil {
		hint += fmt.Sprintf(" Send %s for %d.", keepValue, models.DefaultRating)
	}

	input := newTextInput(c.chatID, c.prompt(title, current, hint), func(input string) {
		if input != keepValue {
			value, _ := strconv.Atoi(input)
			*field = &value
		}
		c.next()
	})

	input.AddValidation(validation{
		function: func(input string) bool {
			return input == keepValue || isIntInRange(input, models.MinRating, models.MaxRating)
		},
		errorMessage: fmt.Sprintf("Enter a whole number from %d to %d.", models.MinRating, models.MaxRating),
	})
	return input
}
