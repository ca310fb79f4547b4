package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairway-fantasy/internal/domain"
)

func TestGetHistoryFoldsInFinalizedTournaments(t *testing.T) {
	ctx := context.Background()
	f := newLeaderboardFixture(t, deadline.Add(100*time.Hour))

	seeded := []domain.HistoryYear{
		{Year: 2026, Tournaments: []domain.PastTournament{
			{Name: "The Masters", Winners: []string{"placeholder"}},
		}},
		{Year: 2025, Tournaments: []domain.PastTournament{
			{Name: "Masters", Winners: []string{"Alice", "Carol", "Dan"}},
		}},
	}
	svc := NewHistoryService(f.store, f.store, f.cache, seeded, discard)

	// still in progress, so the seeded entry stands
	h, err := svc.GetHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, seeded, h.Years)

	require.NoError(t, f.cache.SetScores(ctx, "masters", field(), deadline.Add(96*time.Hour)))
	require.NoError(t, f.store.SetTournamentStatus(ctx, "masters", domain.StatusCompleted))

	h, err = svc.GetHistory(ctx)
	require.NoError(t, err)
	require.Len(t, h.Years, 2)
	assert.Equal(t, 2026, h.Years[0].Year)
	assert.Equal(t, []domain.PastTournament{
		{Name: "The Masters", Winners: []string{"Alice", "Bob"}},
	}, h.Years[0].Tournaments)

	assert.Equal(t, []domain.RecordHolder{{Name: "Alice", Count: 2, RecentYear: 2026}}, h.Championships)
	require.NotEmpty(t, h.TopThree)
	assert.Equal(t, domain.RecordHolder{Name: "Alice", Count: 2, RecentYear: 2026}, h.TopThree[0])
}

func TestGetHistorySkipsFinalizedWithoutScores(t *testing.T) {
	ctx := context.Background()
	f := newLeaderboardFixture(t, deadline.Add(100*time.Hour))
	require.NoError(t, f.store.SetTournamentStatus(ctx, "masters", domain.StatusCompleted))

	svc := NewHistoryService(f.store, f.store, f.cache, nil, discard)
	h, err := svc.GetHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, h.Years)
	assert.Empty(t, h.Championships)
}
