package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairway-fantasy/internal/config"
	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/scoring"
	"github.com/fairway-fantasy/internal/standings"
)

func newTestCache(t *testing.T) *ScoreCache {
	t.Helper()
	mr := miniredis.RunT(t)
	cache, err := NewScoreCache(&config.RedisConfig{Addr: mr.Addr()}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestScoresRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	_, _, err := cache.GetScores(ctx, "m")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	at := time.Date(2026, 4, 10, 18, 30, 0, 0, time.UTC)
	score := -4
	require.NoError(t, cache.SetScores(ctx, "m", []domain.ScoreSnapshot{
		{ProviderID: "1", Name: "Scottie Scheffler", TotalScore: "-4", ScoreInt: &score, Thru: "12"},
	}, at))

	scores, updated, err := cache.GetScores(ctx, "m")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "Scottie Scheffler", scores[0].Name)
	assert.True(t, at.Equal(updated))
}

func TestTeamRankFollowsStandingsOnTies(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	// nobody has scored yet, so every team is on zero points
	teams := []domain.Team{
		{ID: "aaa", UserID: "u1", TeamNumber: 1},
		{ID: "zzz", UserID: "u2", TeamNumber: 1},
	}
	ranked := standings.Aggregate(teams, nil, scoring.Compute(nil), time.UTC)
	require.NoError(t, cache.SetTeamTotals(ctx, "m", ranked))

	for _, st := range ranked {
		rank, points, err := cache.GetTeamRank(ctx, "m", st.TeamID)
		require.NoError(t, err)
		assert.Equal(t, int64(st.Rank), rank, st.TeamID)
		assert.Zero(t, points)
	}

	rank, _, err := cache.GetTeamRank(ctx, "m", "aaa")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rank)

	_, _, err = cache.GetTeamRank(ctx, "m", "missing")
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
}

func TestSetTeamTotalsReplaces(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	require.NoError(t, cache.SetTeamTotals(ctx, "m", []domain.TeamStanding{
		{TeamID: "a", Rank: 1, TotalPoints: 412.5},
		{TeamID: "b", Rank: 2, TotalPoints: 98},
	}))
	require.NoError(t, cache.SetTeamTotals(ctx, "m", []domain.TeamStanding{
		{TeamID: "b", Rank: 1, TotalPoints: 500},
	}))

	rank, points, err := cache.GetTeamRank(ctx, "m", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rank)
	assert.Equal(t, 500.0, points)

	_, _, err = cache.GetTeamRank(ctx, "m", "a")
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)

	require.NoError(t, cache.DeleteTournament(ctx, "m"))
	_, _, err = cache.GetTeamRank(ctx, "m", "b")
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
}
