package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/pkg/errors"
)

var errorNoUserOffers = errors.New("user has no offers")

// offerInput asks the user to pick one of their offers by its number in the list.
type offerInput struct {
	chatID     int64
	userOffers []models.Offer
	onFinish   func(offer *models.Offer)
}

func newOfferInput(chatID int64, offers offerRepository, onFinish func(offer *models.Offer)) (*offerInput, error) {

	userOffers, err := offers.GetByUser(context.Background(), chatID)
	if err != nil {
		return nil, errors.Wrap(err, "load user offers")
	}

	if len(userOffers) == 0 {
		return nil, errorNoUserOffers
	}

	return &offerInput{chatID: chatID, userOffers: userOffers, onFinish: onFinish}, nil
}

func (o *offerInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(o.chatID, "Enter the offer number:\n"+offersToText(o.userOffers))
	msg.ReplyMarkup = keyboardWithExit()
	return msg
}

func (o *offerInput) HandleInput(input string) botApi.Chattable {

	num, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || num < 1 || num > len(o.userOffers) {
		return botApi.NewMessage(o.chatID, fmt.Sprintf("Enter a number from 1 to %d.", len(o.userOffers)))
	}

	o.onFinish(&o.userOffers[num-1])
	return nil
}

func offersToText(offers []models.Offer) string {
	var sb strings.Builder
	for i, offer := range offers {
		sb.WriteString(fmt.Sprintf("%d: %s, %s (%s)\n", i+1, offer.Company, offer.Position, offer.Location))
	}
	return sb.String()
}
