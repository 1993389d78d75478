package bot

import (
	"encoding/json"
	"fmt"

	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/offers-bot/internal/domain/models"
)

const editOfferCommandName = "Edit offer"

// editOfferCommand picks an offer, then runs the offer form over it.
type editOfferCommand struct {
	api                  apiInterface
	chatID               int64
	bus                  EventBus.Bus
	offers               offerRepository
	selection            *offerInput
	form                 *offerFormCommand
	finishCallback       func()
	finalMessageKeyboard *botApi.ReplyKeyboardMarkup
}

func newEditOfferCommand(api apiInterface, chatID int64, bus EventBus.Bus, offers offerRepository) (*editOfferCommand, error) {

	cmd := &editOfferCommand{api: api, chatID: chatID, bus: bus, offers: offers}

	selection, err := newOfferInput(chatID, offers, cmd.onOfferSelected)
	if err != nil {
		return nil, err
	}
	cmd.selection = selection
	return cmd, nil
}

type editOfferState struct {
	OfferID string          `json:"offerID"`
	Form    json.RawMessage `json:"form,omitempty"`
}

func (c *editOfferCommand) WithKeyboardOnFinalMessage(keyboard botApi.ReplyKeyboardMarkup) {
	c.finalMessageKeyboard = &keyboard
	if c.form != nil {
		c.form.WithKeyboardOnFinalMessage(keyboard)
	}
}

func (c *editOfferCommand) WithFinishCallback(callback func()) {
	c.finishCallback = callback
}

func (c *editOfferCommand) Run() {
	_, _ = sendWithLogError(c.api, c.selection.InitMessage())
}

func (c *editOfferCommand) OnUserInput(input string) {

	if c.form != nil {
		c.form.OnUserInput(input)
		return
	}

	if msg := c.selection.HandleInput(input); msg != nil {
		_, _ = sendWithLogError(c.api, msg)
		return
	}

	c.form.Run()
}

func (c *editOfferCommand) onOfferSelected(offer *models.Offer) {
	c.form = newOfferFormCommand(c.api, c.chatID, c.bus, c.offers, offer)
	c.form.WithFinishCallback(func() {
		if c.finishCallback != nil {
			c.finishCallback()
		}
	})
	if c.finalMessageKeyboard != nil {
		c.form.WithKeyboardOnFinalMessage(*c.finalMessageKeyboard)
	}
}

func (c *editOfferCommand) SaveState() ([]byte, error) {
	if c.form == nil {
		return json.Marshal(editOfferState{})
	}
	form, err := c.form.SaveState()
	if err != nil {
		return nil, err
	}
	return json.Marshal(editOfferState{OfferID: c.form.target.ID, Form: form})
}

// LoadState restores the selected offer and the form progress. Nothing is restored
// when no offer had been selected yet.
func (c *editOfferCommand) LoadState(data []byte) error {
	var state editOfferState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if state.OfferID == "" {
		return nil
	}

	for i := range c.selection.userOffers {
		if c.selection.userOffers[i].ID == state.OfferID {
			c.onOfferSelected(&c.selection.userOffers[i])
			return c.form.LoadState(state.Form)
		}
	}
	return fmt.Errorf("offer %s selected for editing no longer exists", state.OfferID)
}
