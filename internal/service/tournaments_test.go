package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/memstore"
)

func floatp(v float64) *float64 { return &v }

func TestDefaultPrices(t *testing.T) {
	golfers := []domain.Golfer{
		{Name: "No Odds"},
		{Name: "Longshot", Odds: floatp(150)},
		{Name: "Favourite", Odds: floatp(4.5)},
		{Name: "Contender", Odds: floatp(12)},
	}

	priced := DefaultPrices(golfers)
	require.Len(t, priced, 4)

	names := []string{priced[0].Name, priced[1].Name, priced[2].Name, priced[3].Name}
	assert.Equal(t, []string{"Favourite", "Contender", "Longshot", "No Odds"}, names)
	assert.Equal(t, 300000, *priced[0].Price)
	assert.Equal(t, 295000, *priced[1].Price)
	assert.Equal(t, 285000, *priced[3].Price)
	assert.Equal(t, 4, priced[3].WorldRanking)
	assert.Equal(t, float64(999), *priced[3].Odds)

	// input untouched
	assert.Nil(t, golfers[0].Price)
}

func TestDefaultPricesFloor(t *testing.T) {
	golfers := make([]domain.Golfer, 60)
	for i := range golfers {
		golfers[i] = domain.Golfer{Name: strings.Repeat("g", i+1), Odds: floatp(float64(i + 1))}
	}

	priced := DefaultPrices(golfers)
	assert.Equal(t, 80000, *priced[44].Price)
	assert.Equal(t, 75000, *priced[45].Price)
	assert.Equal(t, 75000, *priced[59].Price)
}

func TestSetupSlot(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seed(store)
	svc := NewTournamentService(store, store, store, memstore.NewScoreCache(), discard)

	_, err := svc.SetupSlot(ctx, "u1", 2, domain.TournamentSetup{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.SetupSlot(ctx, "admin", 5, domain.TournamentSetup{})
	assert.True(t, domain.IsValidation(err))

	start := time.Date(2026, 5, 14, 11, 0, 0, 0, time.UTC)
	event := "401580351"
	created, err := svc.SetupSlot(ctx, "admin", 2, domain.TournamentSetup{ProviderEventID: &event, StartDate: &start})
	require.NoError(t, err)
	assert.Equal(t, "Tournament 2", created.Name)
	assert.Equal(t, domain.StatusSetup, created.Status)
	assert.Equal(t, start, created.StartDate)

	name := "PGA Championship"
	updated, err := svc.SetupSlot(ctx, "admin", 2, domain.TournamentSetup{
		Name:    &name,
		Golfers: []domain.Golfer{{Name: "Scottie Scheffler", Odds: floatp(4)}},
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "PGA Championship", updated.Name)
	assert.Equal(t, "401580351", updated.ProviderEventID)
	assert.Equal(t, domain.StatusGolfersLoaded, updated.Status)

	priced, err := svc.SetDefaultPrices(ctx, "admin", 2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPricesSet, priced.Status)
	assert.True(t, priced.HasPrices())

	end := start.Add(-time.Hour)
	_, err = svc.SetupSlot(ctx, "admin", 2, domain.TournamentSetup{EndDate: &end})
	assert.True(t, domain.IsValidation(err))
}

func TestSetDefaultPricesNeedsGolfers(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seed(store)
	svc := NewTournamentService(store, store, store, memstore.NewScoreCache(), discard)

	_, err := svc.SetDefaultPrices(ctx, "admin", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch golfers first")

	_, err = svc.SetDefaultPrices(ctx, "admin", 3)
	assert.ErrorIs(t, err, domain.ErrTournamentNotFound)
}

func TestResetSlot(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seed(store)
	store.PutTeam(domain.Team{ID: "t1", UserID: "u1", TournamentID: "masters", TeamNumber: 1})
	cache := memstore.NewScoreCache()
	require.NoError(t, cache.SetScores(ctx, "masters", []domain.ScoreSnapshot{{Name: "Jon Rahm"}}, deadline))
	svc := NewTournamentService(store, store, store, cache, discard)

	fresh, err := svc.ResetSlot(ctx, "admin", 1)
	require.NoError(t, err)
	assert.NotEqual(t, "masters", fresh.ID)
	assert.Equal(t, 1, fresh.Slot)
	assert.Equal(t, domain.StatusSetup, fresh.Status)
	assert.Zero(t, store.Teams())

	_, _, err = cache.GetScores(ctx, "masters")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fresh.ID, list[0].ID)
	assert.Zero(t, list[0].TeamCount)

	// resetting an empty slot creates it
	_, err = svc.ResetSlot(ctx, "admin", 4)
	require.NoError(t, err)
}

func TestListAndGet(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seed(store)
	store.PutTournament(domain.Tournament{ID: "open", Slot: 4, Name: "The Open", Status: domain.StatusSetup})
	store.PutTeam(domain.Team{ID: "t1", UserID: "u1", TournamentID: "masters", TeamNumber: 1})
	store.PutTeam(domain.Team{ID: "t2", UserID: "u2", TournamentID: "masters", TeamNumber: 1})
	svc := NewTournamentService(store, store, store, memstore.NewScoreCache(), discard)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "masters", list[0].ID)
	assert.Equal(t, 2, list[0].TeamCount)
	assert.Equal(t, 0, list[1].TeamCount)

	detail, err := svc.Get(ctx, "masters")
	require.NoError(t, err)
	assert.Equal(t, "The Masters", detail.Name)
	assert.Equal(t, 2, detail.TeamCount)

	_, err = svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrTournamentNotFound)
}
