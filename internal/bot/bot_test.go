package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/offers-bot/internal/domain/events"
	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/maxaizer/offers-bot/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOfferRepo struct {
	Offers []models.Offer
}

func (m *mockOfferRepo) GetByUser(_ context.Context, userID int64) ([]models.Offer, error) {
	result := make([]models.Offer, 0)
	for _, offer := range m.Offers {
		if offer.UserID == userID {
			result = append(result, offer)
		}
	}
	return result, nil
}

func (m *mockOfferRepo) Add(_ context.Context, offer models.Offer) error {
	m.Offers = append(m.Offers, offer)
	return nil
}

func (m *mockOfferRepo) Replace(_ context.Context, offer models.Offer) error {
	for i := range m.Offers {
		if m.Offers[i].ID == offer.ID {
			m.Offers[i] = offer
			return nil
		}
	}
	return errors.New("not found")
}

func (m *mockOfferRepo) Remove(_ context.Context, userID int64, ID string) error {
	for i, offer := range m.Offers {
		if offer.ID == ID && offer.UserID == userID {
			m.Offers = append(m.Offers[:i], m.Offers[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

type mockWeightsRepo struct {
	Profiles map[int64]models.WeightProfile
}

func (m *mockWeightsRepo) Get(_ context.Context, userID int64) (models.WeightProfile, error) {
	if profile, ok := m.Profiles[userID]; ok {
		return profile, nil
	}
	profile := models.DefaultWeights()
	profile.UserID = userID
	return profile, nil
}

func (m *mockWeightsRepo) Save(_ context.Context, profile models.WeightProfile) error {
	if m.Profiles == nil {
		m.Profiles = make(map[int64]models.WeightProfile)
	}
	m.Profiles[profile.UserID] = profile
	return nil
}

type mockDataRepo struct {
	Data map[string][]byte
}

func (m *mockDataRepo) Save(_ context.Context, id string, data []byte) error {
	if m.Data == nil {
		m.Data = make(map[string][]byte)
	}
	m.Data[id] = data
	return nil
}

func (m *mockDataRepo) LoadAndRemove(_ context.Context, id string) ([]byte, error) {
	data := m.Data[id]
	delete(m.Data, id)
	return data, nil
}

type mockRanker struct {
	Result ranking.Ranking
	Err    error
}

func (m *mockRanker) RankForUser(_ context.Context, _ int64) (ranking.Ranking, error) {
	return m.Result, m.Err
}

type mockAdvisor struct {
	Advice string
	Calls  int
}

func (m *mockAdvisor) Advise(_ context.Context, _ ranking.Ranking) string {
	m.Calls++
	return m.Advice
}

type mockApi struct {
	SentMessages []botApi.Chattable
}

func (m *mockApi) Send(chattable botApi.Chattable) (botApi.Message, error) {
	m.SentMessages = append(m.SentMessages, chattable)
	return botApi.Message{}, nil
}

func (m *mockApi) GetUpdatesChan(_ botApi.UpdateConfig) botApi.UpdatesChannel {
	ch := make(chan botApi.Update)
	close(ch)
	return ch
}

func (m *mockApi) StopReceivingUpdates() {}

func (m *mockApi) LastText() string {
	if len(m.SentMessages) == 0 {
		return ""
	}
	msg, ok := m.SentMessages[len(m.SentMessages)-1].(botApi.MessageConfig)
	if !ok {
		return ""
	}
	return msg.Text
}

func (m *mockApi) Texts() []string {
	var texts []string
	for _, sent := range m.SentMessages {
		if msg, ok := sent.(botApi.MessageConfig); ok {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func simulateUserInput(cmd command, inputs []string) {
	for _, input := range inputs {
		cmd.OnUserInput(input)
	}
}

func textMessage(userID int64, text string) *botApi.Message {
	return &botApi.Message{
		From: &botApi.User{ID: userID},
		Chat: &botApi.Chat{ID: userID, Type: "private"},
		Text: text,
	}
}

func Test_AddOfferCmd_WhenValidData_ShouldBeSuccessful(t *testing.T) {

	assert := assert.New(t)

	mockOffers := &mockOfferRepo{}
	eventPublished := false
	bus := EventBus.New()
	_ = bus.Subscribe(events.OffersChangedTopic, func(event events.OffersChanged) {
		eventPublished = event.UserID == 7
	})
	finished := false

	cmd := newAddOfferCommand(&mockApi{}, 7, bus, mockOffers)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	simulateUserInput(cmd, []string{"Amazon", "Senior SDE", "Seattle, WA", "$185,000", "25000", "100000",
		"Health, 401k, Health", "6", "8", "7", "4"})

	assert.True(finished)
	assert.True(eventPublished)
	if assert.Len(mockOffers.Offers, 1) {
		offer := mockOffers.Offers[0]
		assert.NotEmpty(offer.ID)
		assert.Equal(int64(7), offer.UserID)
		assert.Equal("Amazon", offer.Company)
		assert.Equal("Senior SDE", offer.Position)
		assert.Equal("Seattle, WA", offer.Location)
		assert.Equal(185000.0, offer.BaseSalary)
		assert.Equal(25000.0, offer.Bonus)
		assert.Equal(100000.0, offer.EquityTotal)
		assert.ElementsMatch([]string{"Health", "401k"}, offer.BenefitsAsArray())
		assert.Equal(6, offer.WorkLifeBalance)
		assert.Equal(8, offer.CareerGrowth)
		assert.Equal(7, offer.CompanyRating)
		assert.Equal(4, offer.RemoteFlexibility)
	}
}

func Test_AddOfferCmd_WhenFieldsSkipped_ShouldUseDefaults(t *testing.T) {

	assert := assert.New(t)

	mockOffers := &mockOfferRepo{}
	cmd := newAddOfferCommand(&mockApi{}, 1, EventBus.New(), mockOffers)

	cmd.Run()
	simulateUserInput(cmd, []string{"Startup", "Engineer", "-", "120000", "-", "-", "-", "-", "0", "-", "-"})

	if assert.Len(mockOffers.Offers, 1) {
		offer := mockOffers.Offers[0]
		assert.Equal(models.DefaultLocation, offer.Location)
		assert.Zero(offer.Bonus)
		assert.Zero(offer.EquityTotal)
		assert.Empty(offer.BenefitsAsArray())
		assert.Equal(models.DefaultRating, offer.WorkLifeBalance)
		assert.Equal(0, offer.CareerGrowth)
		assert.Equal(models.DefaultRating, offer.CompanyRating)
		assert.Equal(models.DefaultRating, offer.RemoteFlexibility)
	}
}

func Test_AddOfferCmd_WhenInvalidInput_ShouldWaitForValid(t *testing.T) {

	assert := assert.New(t)

	mockOffers := &mockOfferRepo{}
	api := &mockApi{}
	finished := false

	cmd := newAddOfferCommand(api, 1, EventBus.New(), mockOffers)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	simulateUserInput(cmd, []string{"-", "", "Google"})
	simulateUserInput(cmd, []string{"-", "Software Engineer III"})
	cmd.OnUserInput("Mountain View, CA")
	simulateUserInput(cmd, []string{"lots", "-5", "inf", "+Inf", "Infinity", "NaN", "200000"})
	simulateUserInput(cmd, []string{"30000", "-inf", "30000"})
	cmd.OnUserInput("Gym")
	simulateUserInput(cmd, []string{"11", "-1", "7.5", "7"})
	assert.Equal("Enter a whole number from 0 to 10.", api.Texts()[len(api.Texts())-2])
	simulateUserInput(cmd, []string{"9", "8", "6"})

	assert.True(finished)
	if assert.Len(mockOffers.Offers, 1) {
		offer := mockOffers.Offers[0]
		assert.Equal("Google", offer.Company)
		assert.Equal("Software Engineer III", offer.Position)
		assert.Equal(200000.0, offer.BaseSalary)
		assert.Equal(237500.0, ranking.TotalCompensation(offer))
		assert.Equal(7, offer.WorkLifeBalance)
		assert.Equal(6, offer.RemoteFlexibility)
	}
}

func Test_AddOfferCmd_WhenStateRestored_ShouldContinueFromSavedStep(t *testing.T) {

	assert := assert.New(t)

	mockOffers := &mockOfferRepo{}
	bus := EventBus.New()

	cmd := newAddOfferCommand(&mockApi{}, 1, bus, mockOffers)
	cmd.Run()
	simulateUserInput(cmd, []string{"Amazon", "Senior SDE", "Seattle, WA", "150000"})

	state, err := cmd.SaveState()
	require.NoError(t, err)

	restored := newAddOfferCommand(&mockApi{}, 1, bus, mockOffers)
	require.NoError(t, restored.LoadState(state))
	simulateUserInput(restored, []string{"30000", "120000", "-", "6", "9", "8", "4"})

	if assert.Len(mockOffers.Offers, 1) {
		offer := mockOffers.Offers[0]
		assert.Equal("Amazon", offer.Company)
		assert.Equal("Seattle, WA", offer.Location)
		assert.Equal(210000.0, ranking.TotalCompensation(offer))
	}
}

func Test_EditOfferCmd_WhenValuesKept_ShouldReplaceOnlyChanged(t *testing.T) {

	assert := assert.New(t)

	stored := models.NewOffer(1, models.OfferInput{Company: "Amazon", Position: "SDE", Location: "Seattle, WA",
		BaseSalary: 150000, Benefits: []string{"Health"}})
	mockOffers := &mockOfferRepo{Offers: []models.Offer{*stored}}
	eventPublished := false
	bus := EventBus.New()
	_ = bus.Subscribe(events.OffersChangedTopic, func(event events.OffersChanged) { eventPublished = true })
	finished := false

	cmd, err := newEditOfferCommand(&mockApi{}, 1, bus, mockOffers)
	require.NoError(t, err)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	cmd.OnUserInput("1") //offer num
	simulateUserInput(cmd, []string{"-", "Senior SDE", "-", "185000", "-", "-", "-", "-", "9", "-", "-"})

	assert.True(finished)
	assert.True(eventPublished)
	if assert.Len(mockOffers.Offers, 1) {
		offer := mockOffers.Offers[0]
		assert.Equal(stored.ID, offer.ID)
		assert.Equal("Amazon", offer.Company)
		assert.Equal("Senior SDE", offer.Position)
		assert.Equal("Seattle, WA", offer.Location)
		assert.Equal(185000.0, offer.BaseSalary)
		assert.Equal([]string{"Health"}, offer.BenefitsAsArray())
		assert.Equal(9, offer.CareerGrowth)
		assert.Equal(models.DefaultRating, offer.WorkLifeBalance)
	}
}

func Test_EditOfferCmd_WhenInvalidOfferNumber_ShouldWaitForValid(t *testing.T) {

	assert := assert.New(t)

	first := models.NewOffer(1, models.OfferInput{Company: "A", Position: "P"})
	second := models.NewOffer(1, models.OfferInput{Company: "B", Position: "P"})
	mockOffers := &mockOfferRepo{Offers: []models.Offer{*first, *second}}
	api := &mockApi{}

	cmd, err := newEditOfferCommand(api, 1, EventBus.New(), mockOffers)
	require.NoError(t, err)

	cmd.Run()
	simulateUserInput(cmd, []string{"0", "3", "abc"})
	assert.Equal("Enter a number from 1 to 2.", api.LastText())
	assert.Nil(cmd.form)

	cmd.OnUserInput("2")
	if assert.NotNil(cmd.form) {
		assert.Equal(second.ID, cmd.form.target.ID)
	}
}

func Test_EditOfferCmd_WhenUserHasNoOffers_ShouldFail(t *testing.T) {
	_, err := newEditOfferCommand(&mockApi{}, 1, EventBus.New(), &mockOfferRepo{})
	assert.ErrorIs(t, err, errorNoUserOffers)
}

func Test_RemoveOfferCmd_WhenValidData_ShouldBeSuccessful(t *testing.T) {

	assert := assert.New(t)

	offer := models.NewOffer(0, models.OfferInput{Company: "A", Position: "P"})
	mockOffers := &mockOfferRepo{Offers: []models.Offer{*offer}}
	eventPublished := false
	bus := EventBus.New()
	_ = bus.Subscribe(events.OffersChangedTopic, func(event events.OffersChanged) { eventPublished = true })
	finished := false

	cmd, err := newRemoveOfferCommand(&mockApi{}, offer.UserID, bus, mockOffers)
	assert.NoError(err)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	cmd.OnUserInput("1") //offer num

	assert.True(finished)
	assert.Empty(mockOffers.Offers)
	assert.True(eventPublished)
}

func Test_RemoveOfferCmd_WhenInvalidInput_ShouldWaitForValid(t *testing.T) {

	assert := assert.New(t)

	offer := models.NewOffer(0, models.OfferInput{Company: "A", Position: "P"})
	mockOffers := &mockOfferRepo{Offers: []models.Offer{*offer}}
	finished := false

	cmd, err := newRemoveOfferCommand(&mockApi{}, offer.UserID, EventBus.New(), mockOffers)
	assert.NoError(err)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	simulateUserInput(cmd, []string{"-1", "2"})
	assert.False(finished)
	assert.Len(mockOffers.Offers, 1)

	cmd.OnUserInput("1")

	assert.True(finished)
	assert.Empty(mockOffers.Offers)
}

func Test_WeightsCmd_WhenValidData_ShouldSaveProfile(t *testing.T) {

	assert := assert.New(t)

	mockWeights := &mockWeightsRepo{}
	eventPublished := false
	bus := EventBus.New()
	_ = bus.Subscribe(events.OffersChangedTopic, func(event events.OffersChanged) { eventPublished = true })
	finished := false

	cmd, err := newWeightsCommand(&mockApi{}, 3, bus, mockWeights)
	require.NoError(t, err)
	cmd.WithFinishCallback(func() { finished = true })

	cmd.Run()
	simulateUserInput(cmd, []string{"50", "-", "7", "101", "10", "0"})

	assert.True(finished)
	assert.True(eventPublished)
	assert.Equal(models.WeightProfile{UserID: 3, Salary: 50, WorkLife: 25, Growth: 10, Culture: 0},
		mockWeights.Profiles[3])
}

func Test_RankingToText_ShouldMarkBestOfferAndFormatMoney(t *testing.T) {

	assert := assert.New(t)

	amazon := models.NewOffer(1, models.OfferInput{Company: "Amazon", Position: "Senior SDE",
		Location: "Seattle, WA", BaseSalary: 150000, Bonus: 30000, EquityTotal: 120000})
	google := models.NewOffer(1, models.OfferInput{Company: "Google", Position: "SWE III",
		Location: "Mountain View, CA", BaseSalary: 165000, Bonus: 35000, EquityTotal: 150000,
		Benefits: []string{"Gym"}})

	result := ranking.Rank([]models.Offer{*amazon, *google}, models.DefaultWeights(),
		models.CostOfLivingIndex{"Seattle, WA": 165})
	text := rankingToText(result)

	assert.Contains(text, "1. Google, SWE III ⭐ best match")
	assert.Contains(text, "2. Amazon, Senior SDE\n")
	assert.Contains(text, "Total $210,000 | Adjusted for Seattle, WA: $127,273")
	assert.Contains(text, "Benefits: Gym")
	assert.Contains(text, "salary 40, work-life 25, growth 20, culture 15")
}

func Test_RankingToText_WhenEmpty_ShouldSuggestAddingOffers(t *testing.T) {
	text := rankingToText(ranking.Rank(nil, models.DefaultWeights(), nil))
	assert.Contains(t, text, "You have no offers yet")
}

func newTestBot(t *testing.T, api *mockApi, ranker *mockRanker, advisor *mockAdvisor,
	data *mockDataRepo, offers *mockOfferRepo) *Bot {

	b, err := newBot(api, EventBus.New(),
		Repositories{Offers: offers, Weights: &mockWeightsRepo{}, Data: data},
		Services{Ranker: ranker, Advisor: advisor})
	require.NoError(t, err)
	return b
}

func Test_Bot_WhenCompare_ShouldSendRankingAndAdvice(t *testing.T) {

	assert := assert.New(t)

	offer := models.NewOffer(5, models.OfferInput{Company: "Amazon", Position: "Senior SDE", BaseSalary: 100})
	api := &mockApi{}
	advisor := &mockAdvisor{Advice: "Take it."}
	ranker := &mockRanker{Result: ranking.Rank([]models.Offer{*offer}, models.DefaultWeights(), nil)}
	b := newTestBot(t, api, ranker, advisor, &mockDataRepo{}, &mockOfferRepo{})

	b.handleMessage(textMessage(5, compareCommandName))

	texts := api.Texts()
	if assert.Len(texts, 2) {
		assert.Contains(texts[0], "1. Amazon, Senior SDE")
		assert.Equal("Take it.", texts[1])
	}
}

func Test_Bot_WhenCompareWithoutOffers_ShouldNotAskAdvisor(t *testing.T) {

	api := &mockApi{}
	advisor := &mockAdvisor{Advice: "unused"}
	b := newTestBot(t, api, &mockRanker{}, advisor, &mockDataRepo{}, &mockOfferRepo{})

	b.handleMessage(textMessage(5, compareCommandName))

	assert.Len(t, api.Texts(), 1)
	assert.Zero(t, advisor.Calls)
}

func Test_Bot_WhenRankingFails_ShouldReportInternalError(t *testing.T) {

	api := &mockApi{}
	b := newTestBot(t, api, &mockRanker{Err: fmt.Errorf("db is down")}, &mockAdvisor{}, &mockDataRepo{},
		&mockOfferRepo{})

	b.handleMessage(textMessage(5, compareCommandName))

	assert.Equal(t, "Internal error!", api.LastText())
}

func Test_Bot_WhenRankingUpdated_ShouldNotifyOwner(t *testing.T) {

	api := &mockApi{}
	b := newTestBot(t, api, &mockRanker{}, &mockAdvisor{}, &mockDataRepo{}, &mockOfferRepo{})

	offer := models.NewOffer(9, models.OfferInput{Company: "Amazon", Position: "SDE"})
	b.bus.Publish(events.RankingUpdatedTopic, events.RankingUpdated{UserID: 9,
		Ranking: ranking.Rank([]models.Offer{*offer}, models.DefaultWeights(), nil)})

	if assert.Len(t, api.SentMessages, 1) {
		msg := api.SentMessages[0].(botApi.MessageConfig)
		assert.Equal(t, int64(9), msg.ChatID)
		assert.Contains(t, msg.Text, "Amazon")
	}
}

func Test_Bot_WhenRestarted_ShouldResumeRunningCommand(t *testing.T) {

	assert := assert.New(t)

	data := &mockDataRepo{}
	offers := &mockOfferRepo{}

	first := newTestBot(t, &mockApi{}, &mockRanker{}, &mockAdvisor{}, data, offers)
	first.handleMessage(textMessage(2, addOfferCommandName))
	first.handleMessage(textMessage(2, "Amazon"))
	first.handleMessage(textMessage(2, "Senior SDE"))
	first.Stop()

	second := newTestBot(t, &mockApi{}, &mockRanker{}, &mockAdvisor{}, data, offers)
	second.Run()
	for _, input := range []string{"Seattle, WA", "185000", "25000", "100000", "-", "-", "-", "-", "-"} {
		second.handleMessage(textMessage(2, input))
	}

	if assert.Len(offers.Offers, 1) {
		assert.Equal("Amazon", offers.Offers[0].Company)
		assert.Equal("Senior SDE", offers.Offers[0].Position)
		assert.Equal("Seattle, WA", offers.Offers[0].Location)
	}
	assert.False(second.userContexts[2].HasRunningCommand())
}

func Test_Bot_WhenRestartedDuringEdit_ShouldContinueEditingSelectedOffer(t *testing.T) {

	assert := assert.New(t)

	data := &mockDataRepo{}
	first := models.NewOffer(2, models.OfferInput{Company: "Amazon", Position: "SDE", BaseSalary: 150000})
	second := models.NewOffer(2, models.OfferInput{Company: "Google", Position: "SWE", BaseSalary: 165000})
	offers := &mockOfferRepo{Offers: []models.Offer{*first, *second}}

	before := newTestBot(t, &mockApi{}, &mockRanker{}, &mockAdvisor{}, data, offers)
	before.handleMessage(textMessage(2, editOfferCommandName))
	before.handleMessage(textMessage(2, "2"))
	before.handleMessage(textMessage(2, "-"))
	before.handleMessage(textMessage(2, "Senior SWE"))
	before.Stop()

	api := &mockApi{}
	after := newTestBot(t, api, &mockRanker{}, &mockAdvisor{}, data, offers)
	after.Run()
	for _, input := range []string{"-", "170000", "-", "-", "-", "-", "-", "-", "-"} {
		after.handleMessage(textMessage(2, input))
	}

	assert.NotContains(api.Texts(), "Enter a number from 1 to 2.")
	if assert.Len(offers.Offers, 2) {
		edited := offers.Offers[1]
		assert.Equal(second.ID, edited.ID)
		assert.Equal("Google", edited.Company)
		assert.Equal("Senior SWE", edited.Position)
		assert.Equal(170000.0, edited.BaseSalary)
		assert.Equal("SDE", offers.Offers[0].Position)
	}
	assert.False(after.userContexts[2].HasRunningCommand())
}

func Test_Bot_WhenRestartedDuringWeights_ShouldKeepEnteredWeights(t *testing.T) {

	assert := assert.New(t)

	data := &mockDataRepo{}
	weights := &mockWeightsRepo{}
	repositories := Repositories{Offers: &mockOfferRepo{}, Weights: weights, Data: data}
	services := Services{Ranker: &mockRanker{}, Advisor: &mockAdvisor{}}

	before, err := newBot(&mockApi{}, EventBus.New(), repositories, services)
	require.NoError(t, err)
	before.handleMessage(textMessage(3, weightsCommandName))
	before.handleMessage(textMessage(3, "60"))
	before.handleMessage(textMessage(3, "20"))
	before.Stop()

	after, err := newBot(&mockApi{}, EventBus.New(), repositories, services)
	require.NoError(t, err)
	after.Run()
	after.handleMessage(textMessage(3, "-"))
	after.handleMessage(textMessage(3, "5"))

	assert.Equal(models.WeightProfile{UserID: 3, Salary: 60, WorkLife: 20, Growth: 20, Culture: 5},
		weights.Profiles[3])
	assert.False(after.userContexts[3].HasRunningCommand())
}

func Test_Bot_WhenInputWithoutCommand_ShouldAskForCommand(t *testing.T) {

	api := &mockApi{}
	b := newTestBot(t, api, &mockRanker{}, &mockAdvisor{}, &mockDataRepo{}, &mockOfferRepo{})

	b.handleMessage(textMessage(4, "hello"))

	assert.Equal(t, "Choose a command from the menu.", api.LastText())
}
