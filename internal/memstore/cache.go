package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/fairway-fantasy/internal/domain"
)

// ScoreCache holds the latest field per tournament and the team totals
type ScoreCache struct {
	mu      sync.Mutex
	scores  map[string][]domain.ScoreSnapshot
	updated map[string]time.Time
	totals  map[string][]domain.TeamStanding
}

// NewScoreCache creates an empty score cache
func NewScoreCache() *ScoreCache {
	return &ScoreCache{
		scores:  make(map[string][]domain.ScoreSnapshot),
		updated: make(map[string]time.Time),
		totals:  make(map[string][]domain.TeamStanding),
	}
}

func (c *ScoreCache) SetScores(_ context.Context, tournamentID string, scores []domain.ScoreSnapshot, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scores[tournamentID] = append([]domain.ScoreSnapshot(nil), scores...)
	c.updated[tournamentID] = at
	return nil
}

func (c *ScoreCache) GetScores(_ context.Context, tournamentID string) ([]domain.ScoreSnapshot, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	scores, ok := c.scores[tournamentID]
	if !ok {
		return nil, time.Time{}, domain.ErrDataUnavailable
	}
	return append([]domain.ScoreSnapshot(nil), scores...), c.updated[tournamentID], nil
}

// SetTeamTotals replaces the totals. Ranks are taken from the standings.
func (c *ScoreCache) SetTeamTotals(_ context.Context, tournamentID string, standings []domain.TeamStanding) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	totals := append([]domain.TeamStanding(nil), standings...)
	for i := range totals {
		if totals[i].Rank == 0 {
			totals[i].Rank = i + 1
		}
	}
	c.totals[tournamentID] = totals
	return nil
}

// GetTeamRank returns a team's 1-based rank and point total
func (c *ScoreCache) GetTeamRank(_ context.Context, tournamentID, teamID string) (int64, float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, st := range c.totals[tournamentID] {
		if st.TeamID == teamID {
			return int64(st.Rank), st.TotalPoints, nil
		}
	}
	return 0, 0, domain.ErrTeamNotFound
}

func (c *ScoreCache) DeleteTournament(_ context.Context, tournamentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.scores, tournamentID)
	delete(c.updated, tournamentID)
	delete(c.totals, tournamentID)
	return nil
}
