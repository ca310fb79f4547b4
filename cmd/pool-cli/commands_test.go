package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairway-fantasy/internal/apiclient"
	"github.com/fairway-fantasy/internal/config"
	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/handler"
	"github.com/fairway-fantasy/internal/history"
	"github.com/fairway-fantasy/internal/memstore"
	"github.com/fairway-fantasy/internal/poller"
	"github.com/fairway-fantasy/internal/service"
	"github.com/fairway-fantasy/internal/websocket"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type nopRefresher struct{}

func (nopRefresher) RequestRefresh(context.Context, string) error { return nil }

func priced(name string, price int) domain.Golfer {
	return domain.Golfer{Name: name, Price: &price}
}

func newTestApp(t *testing.T) (*app, *memstore.Store, *bytes.Buffer) {
	t.Helper()
	deadline := time.Now().Add(48 * time.Hour)

	store := memstore.New()
	store.PutUser(domain.User{ID: "u1", Name: "Alice", Email: "alice@example.com", PIN: "1111"})
	store.PutTournament(domain.Tournament{
		ID:        "masters",
		Slot:      1,
		Name:      "The Masters",
		Status:    domain.StatusPricesSet,
		StartDate: deadline,
		EndDate:   deadline.Add(96 * time.Hour),
		Deadline:  deadline,
		Golfers: []domain.Golfer{
			priced("Scottie Scheffler", 300000),
			priced("Rory McIlroy", 250000),
			priced("Jon Rahm", 200000),
			priced("Collin Morikawa", 150000),
			priced("Viktor Hovland", 100000),
			priced("Tony Finau", 75000),
		},
	})

	seeded, err := history.Default()
	require.NoError(t, err)

	pool := &config.DefaultConfig().Pool
	cache := memstore.NewScoreCache()
	hub := websocket.NewHub(discard)
	go hub.Run()
	t.Cleanup(hub.Stop)

	h := handler.NewHandler(handler.Services{
		Users:       service.NewUserService(store, pool, discard),
		Teams:       service.NewTeamService(store, store, store, discard),
		Tournaments: service.NewTournamentService(store, store, store, cache, discard),
		Leaderboard: service.NewLeaderboardService(store, store, store, cache, nopRefresher{}, pool, discard),
		History:     service.NewHistoryService(store, store, cache, seeded, discard),
	}, hub, nil, discard)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	out := &bytes.Buffer{}
	return &app{
		client:   apiclient.New(srv.URL, discard),
		watchCfg: poller.ConfigFrom(pool),
		out:      out,
		logger:   discard,
	}, store, out
}

func TestSetAndClearTeam(t *testing.T) {
	ctx := context.Background()
	a, store, out := newTestApp(t)

	err := a.run(ctx, "1111", "masters", []string{
		"set", "1", "scottie scheffler,", "Rory McIlroy,", "Jon Rahm,", "Collin Morikawa,", "Tony Finau",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "team 1: saved")
	assert.Contains(t, out.String(), "team 2: unchanged")
	assert.Contains(t, out.String(), "1. Scottie Scheffler")
	assert.Contains(t, out.String(), "remaining 25000")
	assert.Equal(t, 1, store.Teams())

	out.Reset()
	require.NoError(t, a.run(ctx, "1111", "masters", []string{"teams"}))
	assert.Contains(t, out.String(), "5. Tony Finau")

	out.Reset()
	require.NoError(t, a.run(ctx, "1111", "masters", []string{"clear", "1"}))
	assert.Contains(t, out.String(), "team 1: deleted")
	assert.Equal(t, 0, store.Teams())
}

func TestSetIncompleteTeamFails(t *testing.T) {
	a, store, out := newTestApp(t)

	err := a.run(context.Background(), "1111", "masters", []string{"set", "2", "Jon Rahm"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, out.String(), "team 2: failed")
	assert.Equal(t, 0, store.Teams())
}

func TestSetUnknownGolfer(t *testing.T) {
	a, _, _ := newTestApp(t)

	err := a.run(context.Background(), "1111", "masters", []string{"set", "1", "Tiger Woods"})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestLeaderboardBeforeDeadline(t *testing.T) {
	a, _, out := newTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, a.run(ctx, "1111", "masters", []string{"leaderboard"}))
	assert.Contains(t, out.String(), "The Masters")
	assert.Contains(t, out.String(), "Standings locked")
}

func TestUsageErrors(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()

	assert.ErrorIs(t, a.run(ctx, "1111", "masters", nil), errUsage)
	assert.ErrorIs(t, a.run(ctx, "1111", "masters", []string{"bogus"}), errUsage)
	assert.ErrorIs(t, a.run(ctx, "1111", "masters", []string{"clear", "one"}), errUsage)

	err := a.run(ctx, "9999", "masters", []string{"teams"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestHistoryCommand(t *testing.T) {
	a, _, out := newTestApp(t)

	require.NoError(t, a.run(context.Background(), "1111", "masters", []string{"history"}))
	assert.Contains(t, out.String(), "1. Justin Blazel  2 (last 2025)")
	assert.Contains(t, out.String(), "1. Carson Custer  4 (last 2025)")
	assert.Contains(t, out.String(), "  The Open: Dat Boy, Rich Pocki, Bill Moser")
}
