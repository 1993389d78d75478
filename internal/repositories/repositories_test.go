package repositories

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/maxaizer/offers-bot/internal/domain/models"
	"github.com/maxaizer/offers-bot/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDbContext(t *testing.T) *DbContext {
	t.Helper()

	dbCtx, err := NewDbContext(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate(models.DefaultCostOfLiving()))
	t.Cleanup(func() { _ = dbCtx.Close() })
	return dbCtx
}

func Test_Migrate_SeedsCostOfLivingOnce(t *testing.T) {
	dbCtx := newTestDbContext(t)
	repo := NewCostOfLivingRepository(dbCtx.DB)

	require.NoError(t, dbCtx.Migrate(models.CostOfLivingIndex{"Berlin": 120}))

	index, err := repo.GetIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCostOfLiving(), index)
}

func Test_Offers_AddGetReplaceRemove(t *testing.T) {
	ctx := context.Background()
	offers := NewOffersRepository(newTestDbContext(t).DB)

	zero := 0
	first := models.NewOffer(1, models.OfferInput{Company: "Amazon", Position: "SDE", BaseSalary: 150000,
		Benefits: []string{"Health", "RSU"}, RemoteFlexibility: &zero})
	second := models.NewOffer(1, models.OfferInput{Company: "Google", Position: "SWE"})
	foreign := models.NewOffer(2, models.OfferInput{Company: "Meta", Position: "E5"})

	require.NoError(t, offers.Add(ctx, *first))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, offers.Add(ctx, *second))
	require.NoError(t, offers.Add(ctx, *foreign))

	userOffers, err := offers.GetByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, userOffers, 2)
	assert.Equal(t, first.ID, userOffers[0].ID)
	assert.Equal(t, second.ID, userOffers[1].ID)
	assert.Equal(t, []string{"Health", "RSU"}, userOffers[0].BenefitsAsArray())
	assert.Equal(t, 0, userOffers[0].RemoteFlexibility)

	count, err := offers.CountByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	replaced := first.ReplaceWith(models.OfferInput{Company: "Amazon", Position: "Senior SDE"})
	require.NoError(t, offers.Replace(ctx, *replaced))

	stored, err := offers.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Senior SDE", stored.Position)
	assert.Equal(t, 0.0, stored.BaseSalary)
	assert.Empty(t, stored.BenefitsAsArray())
	assert.Equal(t, models.DefaultRating, stored.RemoteFlexibility)

	assert.ErrorIs(t, offers.Remove(ctx, 2, first.ID), ErrOfferNotFound)
	require.NoError(t, offers.Remove(ctx, 1, first.ID))

	_, err = offers.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrOfferNotFound)

	remaining, err := offers.GetByUser(ctx, 1)
	require.NoError(t, err)
	result := ranking.Rank(remaining, models.DefaultWeights(), nil)
	require.Len(t, result.Offers, 1)
	assert.Equal(t, second.ID, result.Offers[0].Offer.ID)
}

func Test_Offers_ReplaceUnknownOffer(t *testing.T) {
	offers := NewOffersRepository(newTestDbContext(t).DB)
	ghost := models.NewOffer(1, models.OfferInput{Company: "a", Position: "b"})
	assert.ErrorIs(t, offers.Replace(context.Background(), *ghost), ErrOfferNotFound)
}

func Test_Offers_RemoveOlderThan(t *testing.T) {
	ctx := context.Background()
	offers := NewOffersRepository(newTestDbContext(t).DB)

	require.NoError(t, offers.Add(ctx, *models.NewOffer(1, models.OfferInput{Company: "a", Position: "b"})))

	removed, err := offers.RemoveOlderThan(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	removed, err = offers.RemoveOlderThan(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func Test_Weights_DefaultsAndSave(t *testing.T) {
	ctx := context.Background()
	weights := NewWeightsRepository(newTestDbContext(t).DB, models.DefaultWeights())

	profile, err := weights.Get(ctx, 5)
	require.NoError(t, err)
	expected := models.DefaultWeights()
	expected.UserID = 5
	assert.Equal(t, expected, profile)

	profile.Salary = 100
	profile.Culture = 0
	require.NoError(t, weights.Save(ctx, profile))
	profile.Growth = 55
	require.NoError(t, weights.Save(ctx, profile))

	stored, err := weights.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, profile, stored)
}

type countingCostOfLiving struct {
	calls int
	index models.CostOfLivingIndex
}

func (c *countingCostOfLiving) GetIndex(_ context.Context) (models.CostOfLivingIndex, error) {
	c.calls++
	return c.index, nil
}

func (c *countingCostOfLiving) Set(_ context.Context, location string, index float64) error {
	c.index[location] = index
	return nil
}

func Test_CachedCostOfLiving_CachesUntilSet(t *testing.T) {
	ctx := context.Background()
	inner := &countingCostOfLiving{index: models.CostOfLivingIndex{"Seattle, WA": 165}}
	cached := NewCachedCostOfLiving(inner)

	first, err := cached.GetIndex(ctx)
	require.NoError(t, err)
	first["Seattle, WA"] = 1

	second, err := cached.GetIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 165.0, second["Seattle, WA"])

	require.NoError(t, cached.Set(ctx, "Austin, TX", 95))
	third, err := cached.GetIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 95.0, third["Austin, TX"])
}

func Test_CostOfLiving_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewCostOfLivingRepository(newTestDbContext(t).DB)

	require.NoError(t, repo.Set(ctx, "Seattle, WA", 170))
	index, err := repo.GetIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 170.0, index["Seattle, WA"])
	assert.Equal(t, 190.0, index["Mountain View, CA"])
}

func Test_CostOfLiving_SetRejectsUnusableIndex(t *testing.T) {
	ctx := context.Background()
	repo := NewCostOfLivingRepository(newTestDbContext(t).DB)

	for _, index := range []float64{0, -20, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, repo.Set(ctx, "Berlin", index), ErrInvalidCostOfLivingIndex)
	}

	stored, err := repo.GetIndex(ctx)
	require.NoError(t, err)
	assert.NotContains(t, stored, "Berlin")
}

func Test_Data_SaveLoadAndRemove(t *testing.T) {
	ctx := context.Background()
	data := NewDataRepository(newTestDbContext(t).DB)

	missing, err := data.LoadAndRemove(ctx, "user_contexts")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, data.Save(ctx, "user_contexts", []byte("v1")))
	require.NoError(t, data.Save(ctx, "user_contexts", []byte("v2")))

	loaded, err := data.LoadAndRemove(ctx, "user_contexts")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), loaded)

	loaded, err = data.Load(ctx, "user_contexts")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
