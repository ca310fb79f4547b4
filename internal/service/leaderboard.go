package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fairway-fantasy/internal/config"
	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/scoring"
	"github.com/fairway-fantasy/internal/standings"
)

// LeaderboardService provides business logic for standings
type LeaderboardService struct {
	users       UserStore
	tournaments TournamentStore
	teams       TeamStore
	cache       ScoreCache
	refresher   Refresher
	hub         Broadcaster
	config      *config.PoolConfig
	location    *time.Location
	now         func() time.Time
	logger      *slog.Logger
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(
	users UserStore,
	tournaments TournamentStore,
	teams TeamStore,
	cache ScoreCache,
	refresher Refresher,
	cfg *config.PoolConfig,
	logger *slog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		users:       users,
		tournaments: tournaments,
		teams:       teams,
		cache:       cache,
		refresher:   refresher,
		config:      cfg,
		location:    time.Local,
		now:         time.Now,
		logger:      logger,
	}
}

// SetHub sets the broadcaster used to push standings to live clients
func (s *LeaderboardService) SetHub(hub Broadcaster) {
	s.hub = hub
}

// SetClock overrides the clock used for reveal and staleness checks.
func (s *LeaderboardService) SetClock(now func() time.Time) {
	s.now = now
}

// SetLocation sets the zone tee times are shown in.
func (s *LeaderboardService) SetLocation(loc *time.Location) {
	if loc != nil {
		s.location = loc
	}
}

func (s *LeaderboardService) options() standings.Options {
	return standings.Options{
		TopN:      s.config.TopN,
		Champions: s.config.Champions,
		Location:  s.location,
	}
}

// GetLeaderboard assembles the standings of a tournament. When the cached
// field is missing or stale for a live tournament, a provider refresh is
// requested; the new scores arrive on the feed.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, tournamentID string) (*domain.LeaderboardView, error) {
	t, teams, scores, updated, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if s.stale(t, updated, now) {
		s.requestRefresh(ctx, t)
	}
	return s.build(ctx, t, teams, scores, updated, now), nil
}

// TeamRank returns a team's rank and points from the last computed
// standings. Ranks stay hidden until the deadline.
func (s *LeaderboardService) TeamRank(ctx context.Context, tournamentID, teamID string) (int64, float64, error) {
	t, err := s.tournaments.GetTournament(ctx, tournamentID)
	if err != nil {
		return 0, 0, err
	}
	if t.StandingsHidden(s.now()) {
		return 0, 0, domain.ErrDataUnavailable
	}
	return s.cache.GetTeamRank(ctx, tournamentID, teamID)
}

// IngestScores stores a field update from the feed, completes the tournament
// on a final update and pushes the recomputed standings to subscribers.
func (s *LeaderboardService) IngestScores(ctx context.Context, feed domain.ScoreFeed) error {
	t, err := s.tournaments.GetTournament(ctx, feed.TournamentID)
	if err != nil {
		return fmt.Errorf("ingesting scores: %w", err)
	}

	at := feed.Timestamp
	if at.IsZero() {
		at = s.now()
	}
	scores := scoring.DetectCuts(feed.Scores)
	if err := s.cache.SetScores(ctx, t.ID, scores, at); err != nil {
		return fmt.Errorf("caching scores: %w", err)
	}

	if feed.Final && !t.IsFinalized() {
		if err := s.tournaments.SetTournamentStatus(ctx, t.ID, domain.StatusCompleted); err != nil {
			return fmt.Errorf("completing tournament: %w", err)
		}
		t.Status = domain.StatusCompleted
		s.logger.Info("tournament completed", "tournament_id", t.ID)
	}

	teams, err := s.teams.ListTeamsByTournament(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("listing teams: %w", err)
	}
	view := s.build(ctx, t, teams, scores, at, s.now())

	if s.hub != nil {
		s.hub.BroadcastStandings(t.ID, view)
		if feed.Final {
			s.hub.BroadcastFinalized(t.ID, view.Champions)
		}
	}

	s.logger.Debug("scores ingested", "tournament_id", t.ID, "golfers", len(scores), "final", feed.Final)
	return nil
}

// TriggerRefresh asks the provider for fresh scores on behalf of an admin and
// returns the current standings.
func (s *LeaderboardService) TriggerRefresh(ctx context.Context, tournamentID, userID string) (*domain.LeaderboardView, error) {
	if _, err := requireAdmin(ctx, s.users, userID); err != nil {
		return nil, err
	}
	t, err := s.tournaments.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.ProviderEventID == "" {
		return nil, domain.Invalid("no provider event mapped")
	}
	if err := s.refresher.RequestRefresh(ctx, t.ProviderEventID); err != nil {
		return nil, err
	}

	s.logger.Info("score refresh requested", "tournament_id", t.ID, "user_id", userID)
	return s.GetLeaderboard(ctx, tournamentID)
}

// Rebuild recomputes and broadcasts the standings of a tournament without
// requesting a refresh.
func (s *LeaderboardService) Rebuild(ctx context.Context, tournamentID string) (*domain.LeaderboardView, error) {
	t, teams, scores, updated, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	view := s.build(ctx, t, teams, scores, updated, s.now())
	if s.hub != nil {
		s.hub.BroadcastStandings(t.ID, view)
	}
	return view, nil
}

// RefreshIfStale requests a provider refresh when a live tournament's cached
// field is older than the configured threshold. It reports whether a request
// was made.
func (s *LeaderboardService) RefreshIfStale(ctx context.Context, t *domain.Tournament) bool {
	_, updated, err := s.cache.GetScores(ctx, t.ID)
	if err != nil && !errors.Is(err, domain.ErrDataUnavailable) {
		s.logger.Warn("failed to read score cache", "tournament_id", t.ID, "error", err)
		return false
	}
	if !s.stale(t, updated, s.now()) {
		return false
	}
	s.requestRefresh(ctx, t)
	return true
}

// load fetches the tournament, its teams and the cached field concurrently.
// A missing field yields no scores.
func (s *LeaderboardService) load(ctx context.Context, tournamentID string) (*domain.Tournament, []domain.Team, []domain.ScoreSnapshot, time.Time, error) {
	var (
		t       *domain.Tournament
		teams   []domain.Team
		scores  []domain.ScoreSnapshot
		updated time.Time
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t, err = s.tournaments.GetTournament(gctx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = s.teams.ListTeamsByTournament(gctx, tournamentID)
		if err != nil {
			return fmt.Errorf("listing teams: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		scores, updated, err = s.cache.GetScores(gctx, tournamentID)
		if errors.Is(err, domain.ErrDataUnavailable) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading scores: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, time.Time{}, err
	}
	return t, teams, scores, updated, nil
}

func (s *LeaderboardService) build(ctx context.Context, t *domain.Tournament, teams []domain.Team, scores []domain.ScoreSnapshot, updated, now time.Time) *domain.LeaderboardView {
	view := standings.Build(t, teams, scores, updated, now, s.options())
	if view.TeamStandings != nil {
		if err := s.cache.SetTeamTotals(ctx, t.ID, view.TeamStandings); err != nil {
			s.logger.Warn("failed to cache team totals", "tournament_id", t.ID, "error", err)
		}
	}
	return view
}

// stale reports whether a tournament with a mapped event, past setup, has no
// cached field or one older than ScoreStaleAfter.
func (s *LeaderboardService) stale(t *domain.Tournament, updated, now time.Time) bool {
	if t.ProviderEventID == "" || s.refresher == nil {
		return false
	}
	switch t.Status {
	case domain.StatusSetup, domain.StatusGolfersLoaded, domain.StatusCompleted:
		return false
	}
	return updated.IsZero() || now.Sub(updated) > s.config.ScoreStaleAfter
}

func (s *LeaderboardService) requestRefresh(ctx context.Context, t *domain.Tournament) {
	if err := s.refresher.RequestRefresh(ctx, t.ProviderEventID); err != nil {
		if errors.Is(err, domain.ErrRateLimited) || errors.Is(err, domain.ErrRefreshInFlight) {
			s.logger.Debug("score refresh throttled", "tournament_id", t.ID)
			return
		}
		s.logger.Warn("score refresh failed", "tournament_id", t.ID, "error", err)
	}
}
