package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/offers-bot/internal/domain/events"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/maxaizer/offers-bot/internal/logger"
	"github.com/maxaizer/offers-bot/internal/ranking"
	log "github.com/sirupsen/logrus"
)

type Repositories struct {
	Offers  offerRepository
	Weights weightsRepository
	Data    dataRepository
}

type Services struct {
	Ranker  offerRanker
	Advisor offerAdvisor
}

type dataRepository interface {
	Save(ctx context.Context, id string, data []byte) error
	LoadAndRemove(ctx context.Context, id string) ([]byte, error)
}

type offerRepository interface {
	GetByUser(ctx context.Context, userID int64) ([]models.Offer, error)
	Add(ctx context.Context, offer models.Offer) error
	Replace(ctx context.Context, offer models.Offer) error
	Remove(ctx context.Context, userID int64, ID string) error
}

type weightsRepository interface {
	Get(ctx context.Context, userID int64) (models.WeightProfile, error)
	Save(ctx context.Context, profile models.WeightProfile) error
}

type offerRanker interface {
	RankForUser(ctx context.Context, userID int64) (ranking.Ranking, error)
}

type offerAdvisor interface {
	Advise(ctx context.Context, result ranking.Ranking) string
}

type telegramApi interface {
	apiInterface
	GetUpdatesChan(config botApi.UpdateConfig) botApi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	api          telegramApi
	mu           sync.Mutex
	userContexts map[int64]*userContext
	bus          EventBus.Bus
	repositories Repositories
	services     Services
}

const (
	backToMenuCommandName = "Back to menu"
	compareCommandName    = "Compare"
	userContextsDataKey   = "user_contexts"
)

var globalCommands = []string{addOfferCommandName, editOfferCommandName, removeOfferCommandName,
	weightsCommandName, compareCommandName, backToMenuCommandName}

func NewBot(token string, bus EventBus.Bus, repositories Repositories, services Services) (*Bot, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", api.Self.UserName)

	err = botApi.SetLogger(log.StandardLogger())
	if err != nil {
		return nil, err
	}

	return newBot(api, bus, repositories, services)
}

func newBot(api telegramApi, bus EventBus.Bus, repositories Repositories, services Services) (*Bot, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}

	if repositories.Offers == nil {
		return nil, errors.New("offers repository is nil")
	}

	if repositories.Weights == nil {
		return nil, errors.New("weights repository is nil")
	}

	if repositories.Data == nil {
		return nil, errors.New("data repository is nil")
	}

	if services.Ranker == nil {
		return nil, errors.New("ranker is nil")
	}

	if services.Advisor == nil {
		return nil, errors.New("advisor is nil")
	}

	createdBot := &Bot{api: api, userContexts: make(map[int64]*userContext), bus: bus,
		repositories: repositories, services: services}

	err := bus.Subscribe(events.RankingUpdatedTopic, createdBot.onRankingUpdated)
	if err != nil {
		return nil, err
	}
	return createdBot, nil
}

// Run blocks until Stop is called.
func (b *Bot) Run() {

	err := b.loadUserContexts()
	if err != nil {
		log.Errorf("Error loading user contexts: %v", err)
	}

	updateConfig := botApi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)

	for update := range updates {

		if update.Message == nil {
			continue
		}

		if update.Message.Chat.IsGroup() || update.Message.Chat.IsSuperGroup() {
			continue
		}

		go b.handleMessage(update.Message)
	}
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()

	err := b.saveUserContexts()
	if err != nil {
		log.Errorf("Error saving user contexts: %v", err)
	}
}

func (b *Bot) handleMessage(message *botApi.Message) {

	cmd := message.Command()
	if cmd == "" && slices.Contains(globalCommands, message.Text) {
		cmd = message.Text
	}

	if cmd == compareCommandName || cmd == "compare" {
		b.sendComparison(message.Chat.ID)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if cmd != "" {
		b.handleCommand(message.From, message.Chat, cmd)
	} else {
		b.handleInput(message.From, message.Chat, message.Text)
	}
}

func (b *Bot) handleCommand(user *botApi.User, chat *botApi.Chat, command string) {

	var response botApi.Chattable
	var err error

	if b.userContexts[user.ID] == nil {
		b.userContexts[user.ID] = newUserContext(chat.ID)
	}
	var ctx = b.userContexts[user.ID]

	switch command {
	case "start":
		messageResponse := botApi.NewMessage(chat.ID, "Hi! Add the job offers you have, tell me what matters "+
			"to you and I will rank them.")
		messageResponse.ReplyMarkup = defaultReplyKeyboard()
		response = messageResponse
		delete(b.userContexts, user.ID)
	case addOfferCommandName, editOfferCommandName, removeOfferCommandName, weightsCommandName:
		cmd, cmdErr := b.createCommand(command, chat.ID)
		if cmdErr != nil {
			err = fmt.Errorf("couldn't create %s: %w", command, cmdErr)
		} else {
			ctx.RunCommand(cmd, command)
		}
	case backToMenuCommandName:
		messageResponse := botApi.NewMessage(chat.ID, "Back in the main menu.")
		messageResponse.ReplyMarkup = defaultReplyKeyboard()
		response = messageResponse
		delete(b.userContexts, user.ID)
	default:
		response = botApi.NewMessage(chat.ID, "Unknown command!")
	}

	if err != nil {
		if errors.Is(err, errorNoUserOffers) {
			response = botApi.NewMessage(chat.ID, "You have no offers yet.")
		} else {
			response = botApi.NewMessage(chat.ID, "Internal error!")
			log.Error(err)
		}
	}

	if response == nil {
		return
	}

	_, _ = sendWithLogError(b.api, response)
}

func (b *Bot) createCommand(name string, chatID int64) (command, error) {

	switch name {
	case addOfferCommandName:
		return newAddOfferCommand(b.api, chatID, b.bus, b.repositories.Offers), nil
	case editOfferCommandName:
		return newEditOfferCommand(b.api, chatID, b.bus, b.repositories.Offers)
	case removeOfferCommandName:
		return newRemoveOfferCommand(b.api, chatID, b.bus, b.repositories.Offers)
	case weightsCommandName:
		return newWeightsCommand(b.api, chatID, b.bus, b.repositories.Weights)
	default:
		return nil, fmt.Errorf("unknown command: %v", name)
	}
}

func (b *Bot) handleInput(user *botApi.User, chat *botApi.Chat, input string) {

	ctx := b.userContexts[user.ID]
	if ctx == nil || !ctx.HasRunningCommand() {
		_, _ = sendWithLogError(b.api, botApi.NewMessage(chat.ID, "Choose a command from the menu."))
		return
	}

	ctx.OnUserInput(input)
}

func (b *Bot) sendComparison(chatID int64) {

	result, err := b.services.Ranker.RankForUser(context.Background(), chatID)
	if err != nil {
		log.Errorf("error occurred while ranking offers of user %d: %v", chatID, err)
		_, _ = sendWithLogError(b.api, botApi.NewMessage(chatID, "Internal error!"))
		return
	}

	msg := botApi.NewMessage(chatID, rankingToText(result))
	msg.ReplyMarkup = defaultReplyKeyboard()
	if _, err = sendWithLogError(b.api, msg); err != nil || len(result.Offers) == 0 {
		return
	}

	advice := b.services.Advisor.Advise(context.Background(), result)
	_, _ = sendWithLogError(b.api, botApi.NewMessage(chatID, advice))
}

func (b *Bot) onRankingUpdated(event events.RankingUpdated) {
	msg := botApi.NewMessage(event.UserID, rankingToText(event.Ranking))
	if _, err := b.api.Send(msg); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).Errorf("error occurred while sending message: %v", err)
	}
}

func (b *Bot) saveUserContexts() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := json.Marshal(b.userContexts)
	if err != nil {
		return err
	}
	return b.repositories.Data.Save(context.Background(), userContextsDataKey, data)
}

func (b *Bot) loadUserContexts() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := b.repositories.Data.LoadAndRemove(context.Background(), userContextsDataKey)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	if err = json.Unmarshal(data, &b.userContexts); err != nil {
		return err
	}

	var errs []error
	for i, ctx := range b.userContexts {

		if ctx.curCommandName == "" {
			continue
		}

		cmd, err := b.createCommand(ctx.curCommandName, ctx.chatID)
		if err != nil {
			errs = append(errs, err)
			delete(b.userContexts, i)
			continue
		}

		saveableCmd, ok := cmd.(saveable)
		if !ok {
			ctx.ResumeCommandAfterBotRestart(cmd)
			continue
		}

		err = saveableCmd.LoadState(ctx.curCommandState)
		if err != nil {
			errs = append(errs, err)
			delete(b.userContexts, i)
			continue
		}

		ctx.ResumeCommandAfterBotRestart(cmd)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func defaultReplyKeyboard() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(addOfferCommandName),
			botApi.NewKeyboardButton(editOfferCommandName),
			botApi.NewKeyboardButton(removeOfferCommandName),
		),
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(weightsCommandName),
			botApi.NewKeyboardButton(compareCommandName),
		),
	)
}

func keyboardWithExit() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(backToMenuCommandName),
		),
	)
}
