package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairway-fantasy/internal/domain"
)

func TestUpsertTeamReplacesByNumber(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	first, err := s.UpsertTeam(ctx, domain.Team{ID: "a", UserID: "u1", TournamentID: "m", TeamNumber: 1, TotalCost: 10, UpdatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, now, first.CreatedAt)

	again, err := s.UpsertTeam(ctx, domain.Team{ID: "b", UserID: "u1", TournamentID: "m", TeamNumber: 1, TotalCost: 20, AdminModified: true})
	require.NoError(t, err)
	assert.Equal(t, "a", again.ID)
	assert.Equal(t, 20, again.TotalCost)
	assert.True(t, again.AdminModified)
	assert.Equal(t, 1, s.Teams())

	s.FailUpserts(errors.New("disk full"))
	_, err = s.UpsertTeam(ctx, domain.Team{ID: "c", UserID: "u1", TournamentID: "m", TeamNumber: 2})
	assert.EqualError(t, err, "disk full")
}

func TestDeleteTournamentCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.PutTournament(domain.Tournament{ID: "m", Slot: 1})
	s.PutTeam(domain.Team{ID: "a", UserID: "u1", TournamentID: "m", TeamNumber: 1})
	s.PutTeam(domain.Team{ID: "b", UserID: "u1", TournamentID: "other", TeamNumber: 1})

	require.NoError(t, s.DeleteTournament(ctx, "m"))
	assert.Equal(t, 1, s.Teams())
	_, ok := s.Team("b")
	assert.True(t, ok)

	assert.ErrorIs(t, s.DeleteTournament(ctx, "m"), domain.ErrTournamentNotFound)
}

func TestSaveTournamentRejectsTakenSlot(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.SaveTournament(ctx, domain.Tournament{ID: "m", Slot: 1}))
	require.NoError(t, s.SaveTournament(ctx, domain.Tournament{ID: "m", Slot: 1, Name: "renamed"}))
	assert.True(t, domain.IsValidation(s.SaveTournament(ctx, domain.Tournament{ID: "x", Slot: 1})))
}

func TestScoreCacheRanks(t *testing.T) {
	ctx := context.Background()
	c := NewScoreCache()

	_, _, err := c.GetScores(ctx, "m")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	require.NoError(t, c.SetTeamTotals(ctx, "m", []domain.TeamStanding{
		{TeamID: "b", Rank: 1, TotalPoints: 480.5},
		{TeamID: "c", Rank: 2, TotalPoints: 300},
		{TeamID: "zzz", Rank: 3, TotalPoints: 120},
		{TeamID: "aaa", Rank: 4, TotalPoints: 120},
	}))
	rank, points, err := c.GetTeamRank(ctx, "m", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank)
	assert.Equal(t, 300.0, points)

	rank, _, err = c.GetTeamRank(ctx, "m", "zzz")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rank)

	_, _, err = c.GetTeamRank(ctx, "m", "zz")
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)

	require.NoError(t, c.DeleteTournament(ctx, "m"))
	_, _, err = c.GetTeamRank(ctx, "m", "c")
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
}
