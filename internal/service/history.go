package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/history"
	"github.com/fairway-fantasy/internal/scoring"
	"github.com/fairway-fantasy/internal/standings"
)

// HistoryService builds the pool's champions record
type HistoryService struct {
	tournaments TournamentStore
	teams       TeamStore
	cache       ScoreCache
	seeded      []domain.HistoryYear
	logger      *slog.Logger
}

// NewHistoryService creates a history service over the seeded seasons
func NewHistoryService(tournaments TournamentStore, teams TeamStore, cache ScoreCache, seeded []domain.HistoryYear, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		tournaments: tournaments,
		teams:       teams,
		cache:       cache,
		seeded:      seeded,
		logger:      logger,
	}
}

// GetHistory returns every season with the podiums of finalized tournaments
// folded in, plus the championship and podium leaders.
func (s *HistoryService) GetHistory(ctx context.Context) (*domain.PoolHistory, error) {
	tournaments, err := s.tournaments.ListTournaments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tournaments: %w", err)
	}

	finalized := make([]domain.Tournament, 0, len(tournaments))
	for _, t := range tournaments {
		if t.IsFinalized() {
			finalized = append(finalized, t)
		}
	}
	// most recent first, like the seeded seasons
	sort.SliceStable(finalized, func(i, j int) bool {
		return finalized[i].EndDate.After(finalized[j].EndDate)
	})

	results := make([]history.Result, 0, len(finalized))
	for i := range finalized {
		r, ok, err := s.podium(ctx, &finalized[i])
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, r)
		}
	}

	years := history.Merge(s.seeded, results)
	wins, podiums := history.Records(years, history.Podium)
	return &domain.PoolHistory{
		Years:         years,
		Championships: wins,
		TopThree:      podiums,
	}, nil
}

// podium ranks a finalized tournament's teams from its last cached field.
// A tournament whose field is gone from the cache is skipped.
func (s *HistoryService) podium(ctx context.Context, t *domain.Tournament) (history.Result, bool, error) {
	scores, _, err := s.cache.GetScores(ctx, t.ID)
	if errors.Is(err, domain.ErrDataUnavailable) {
		s.logger.Warn("finalized tournament has no cached scores", "tournament_id", t.ID)
		return history.Result{}, false, nil
	}
	if err != nil {
		return history.Result{}, false, fmt.Errorf("reading scores: %w", err)
	}

	teams, err := s.teams.ListTeamsByTournament(ctx, t.ID)
	if err != nil {
		return history.Result{}, false, fmt.Errorf("listing teams: %w", err)
	}
	if len(teams) == 0 {
		return history.Result{}, false, nil
	}

	ranked := standings.Aggregate(teams, scores, scoring.Compute(scores), time.UTC)
	top := standings.Champions(ranked, true, history.Podium)
	winners := make([]string, 0, len(top))
	for _, st := range top {
		winners = append(winners, st.UserName)
	}

	year := t.EndDate.Year()
	if t.EndDate.IsZero() {
		year = t.StartDate.Year()
	}
	return history.Result{
		Year:       year,
		Tournament: domain.PastTournament{Name: t.Name, Winners: winners},
	}, true, nil
}
