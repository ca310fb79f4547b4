package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairway-fantasy/internal/config"
	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/memstore"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func poolConfig() *config.PoolConfig {
	return &config.DefaultConfig().Pool
}

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) RequestRefresh(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

type mockHub struct {
	mock.Mock
}

func (m *mockHub) BroadcastStandings(tournamentID string, view *domain.LeaderboardView) {
	m.Called(tournamentID, view)
}

func (m *mockHub) BroadcastFinalized(tournamentID string, champions []domain.TeamStanding) {
	m.Called(tournamentID, champions)
}

// fixtures

var deadline = time.Date(2026, 4, 9, 12, 0, 0, 0, time.UTC)

func pick(name string, price int) domain.Pick {
	return domain.Pick{Name: name, Price: price}
}

func roster() []domain.Pick {
	return []domain.Pick{
		pick("Scottie Scheffler", 300000),
		pick("Rory McIlroy", 250000),
		pick("Jon Rahm", 200000),
		pick("Collin Morikawa", 150000),
		pick("Viktor Hovland", 100000),
	}
}

func seed(store *memstore.Store) {
	store.PutUser(domain.User{ID: "u1", Name: "Alice", Email: "alice@example.com", PIN: "1111"})
	store.PutUser(domain.User{ID: "u2", Name: "Bob", Email: "bob@example.com", PIN: "2222"})
	store.PutUser(domain.User{ID: "admin", Name: "Admin", Email: "admin@example.com", PIN: "3669", IsAdmin: true})
	store.PutTournament(domain.Tournament{
		ID:              "masters",
		Slot:            1,
		Name:            "The Masters",
		ProviderEventID: "401580344",
		Status:          domain.StatusPricesSet,
		StartDate:       deadline,
		EndDate:         deadline.Add(96 * time.Hour),
		Deadline:        deadline,
	})
}

func tournament(t *testing.T, store *memstore.Store, id string) domain.Tournament {
	t.Helper()
	tour, err := store.GetTournament(context.Background(), id)
	require.NoError(t, err)
	return *tour
}
