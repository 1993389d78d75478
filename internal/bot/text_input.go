package bot

import (
	"math"
	"strconv"
	"strings"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// keepValue is the answer that leaves a field as it is.
const keepValue = "-"

type validation struct {
	function     func(input string) bool
	errorMessage string
}

type textInput struct {
	chatID      int64
	initMessage string
	onFinish    func(input string)
	validations []validation
}

func newTextInput(chatID int64, initMessage string, onFinish func(input string)) *textInput {
	return &textInput{chatID: chatID, initMessage: initMessage, onFinish: onFinish}
}

func (a *textInput) AddValidation(validation validation) {
	a.validations = append(a.validations, validation)
}

func (a *textInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(a.chatID, a.initMessage)
	msg.ReplyMarkup = keyboardWithExit()
	return msg
}

func (a *textInput) HandleInput(input string) botApi.Chattable {

	input = strings.TrimSpace(input)
	for _, _validation := range a.validations {
		if !_validation.function(input) {
			return botApi.NewMessage(a.chatID, _validation.errorMessage)
		}
	}

	a.onFinish(input)
	return nil
}

// parseAmount accepts plain numbers as well as "$150,000" or "150 000".
func parseAmount(input string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "", "_", "").Replace(input)
	return strconv.ParseFloat(cleaned, 64)
}

func isNonNegativeAmount(input string) bool {
	value, err := parseAmount(input)
	return err == nil && value >= 0 && !math.IsInf(value, 0) && !math.IsNaN(value)
}

func isIntInRange(input string, from, to int) bool {
	value, err := strconv.Atoi(input)
	return err == nil && value >= from && value <= to
}
