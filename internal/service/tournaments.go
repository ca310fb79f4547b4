package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fairway-fantasy/internal/domain"
)

const (
	// MaxSlots is the number of tournament slots in a season.
	MaxSlots = 4

	defaultTopPrice  = 300000
	defaultPriceStep = 5000
	defaultMinPrice  = 75000
	// golfers without odds sort after every priced longshot
	missingOdds = 999
)

// TournamentService manages tournament slots
type TournamentService struct {
	users       UserStore
	tournaments TournamentStore
	teams       TeamStore
	cache       ScoreCache
	logger      *slog.Logger
}

// NewTournamentService creates a new tournament service
func NewTournamentService(users UserStore, tournaments TournamentStore, teams TeamStore, cache ScoreCache, logger *slog.Logger) *TournamentService {
	return &TournamentService{
		users:       users,
		tournaments: tournaments,
		teams:       teams,
		cache:       cache,
		logger:      logger,
	}
}

// List returns every tournament with its team count, ordered by slot
func (s *TournamentService) List(ctx context.Context) ([]domain.TournamentSummary, error) {
	tournaments, err := s.tournaments.ListTournaments(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.tournaments.CountTeamsByTournament(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TournamentSummary, 0, len(tournaments))
	for i := range tournaments {
		out = append(out, tournaments[i].Summary(counts[tournaments[i].ID]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

// Get returns a tournament with its golfer catalog and team count
func (s *TournamentService) Get(ctx context.Context, id string) (*domain.TournamentDetail, error) {
	t, err := s.tournaments.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.tournaments.CountTeamsByTournament(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.TournamentDetail{Tournament: *t, TeamCount: counts[t.ID]}, nil
}

// ListSlots returns every tournament with its full golfer catalog
func (s *TournamentService) ListSlots(ctx context.Context, adminID string) ([]domain.Tournament, error) {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return nil, err
	}
	tournaments, err := s.tournaments.ListTournaments(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tournaments, func(i, j int) bool { return tournaments[i].Slot < tournaments[j].Slot })
	if tournaments == nil {
		tournaments = []domain.Tournament{}
	}
	return tournaments, nil
}

// GetBySlot returns the tournament occupying a slot
func (s *TournamentService) GetBySlot(ctx context.Context, adminID string, slot int) (*domain.Tournament, error) {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return nil, err
	}
	if err := checkSlot(slot); err != nil {
		return nil, err
	}
	return s.tournaments.GetTournamentBySlot(ctx, slot)
}

// SetupSlot applies an admin update to a slot, creating the slot when it is
// empty. Loading a golfer field moves the tournament to golfers_loaded.
func (s *TournamentService) SetupSlot(ctx context.Context, adminID string, slot int, setup domain.TournamentSetup) (*domain.Tournament, error) {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return nil, err
	}
	if err := checkSlot(slot); err != nil {
		return nil, err
	}

	t, err := s.tournaments.GetTournamentBySlot(ctx, slot)
	switch {
	case err == nil:
	case domain.IsNotFoundError(err):
		t = newSlot(slot, fmt.Sprintf("Tournament %d", slot))
	default:
		return nil, err
	}

	if setup.Name != nil {
		t.Name = *setup.Name
	}
	if setup.ProviderEventID != nil {
		t.ProviderEventID = *setup.ProviderEventID
	}
	if setup.StartDate != nil {
		t.StartDate = *setup.StartDate
	}
	if setup.EndDate != nil {
		t.EndDate = *setup.EndDate
	}
	if setup.Deadline != nil {
		t.Deadline = *setup.Deadline
	}
	if setup.Golfers != nil {
		t.Golfers = setup.Golfers
		t.Status = domain.StatusGolfersLoaded
		if t.HasPrices() {
			t.Status = domain.StatusPricesSet
		}
	}
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate) {
		return nil, domain.Invalid("end date is before start date")
	}

	if err := s.tournaments.SaveTournament(ctx, *t); err != nil {
		return nil, fmt.Errorf("saving tournament: %w", err)
	}

	s.logger.Info("tournament slot updated", "slot", slot, "tournament_id", t.ID, "status", t.Status)
	return t, nil
}

// SetDefaultPrices prices the field from the odds: the favourite costs
// 300000 and each following golfer 5000 less, down to 75000.
func (s *TournamentService) SetDefaultPrices(ctx context.Context, adminID string, slot int) (*domain.Tournament, error) {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return nil, err
	}
	t, err := s.tournaments.GetTournamentBySlot(ctx, slot)
	if err != nil {
		return nil, err
	}
	if len(t.Golfers) == 0 {
		return nil, domain.Invalid("fetch golfers first")
	}

	t.Golfers = DefaultPrices(t.Golfers)
	t.Status = domain.StatusPricesSet
	if err := s.tournaments.SaveTournament(ctx, *t); err != nil {
		return nil, fmt.Errorf("saving tournament: %w", err)
	}

	s.logger.Info("default prices set", "slot", slot, "golfers", len(t.Golfers))
	return t, nil
}

// DefaultPrices returns the field sorted by odds with tiered prices and
// world rankings assigned in that order.
func DefaultPrices(golfers []domain.Golfer) []domain.Golfer {
	out := make([]domain.Golfer, len(golfers))
	copy(out, golfers)

	odds := func(g domain.Golfer) float64 {
		if g.Odds == nil || *g.Odds == 0 {
			return missingOdds
		}
		return *g.Odds
	}
	sort.SliceStable(out, func(i, j int) bool { return odds(out[i]) < odds(out[j]) })

	for i := range out {
		price := defaultTopPrice - i*defaultPriceStep
		if price < defaultMinPrice {
			price = defaultMinPrice
		}
		o := odds(out[i])
		out[i].Price = &price
		out[i].Odds = &o
		out[i].WorldRanking = i + 1
	}
	return out
}

// ResetSlot deletes a slot's tournament, teams and cached scores and leaves
// an empty slot in its place.
func (s *TournamentService) ResetSlot(ctx context.Context, adminID string, slot int) (*domain.Tournament, error) {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return nil, err
	}
	if err := checkSlot(slot); err != nil {
		return nil, err
	}

	t, err := s.tournaments.GetTournamentBySlot(ctx, slot)
	switch {
	case err == nil:
		deleted, err := s.teams.DeleteTeamsByTournament(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.DeleteTournament(ctx, t.ID); err != nil {
			s.logger.Warn("failed to clear score cache", "tournament_id", t.ID, "error", err)
		}
		if err := s.tournaments.DeleteTournament(ctx, t.ID); err != nil && !domain.IsNotFoundError(err) {
			return nil, err
		}
		s.logger.Info("tournament slot cleared", "slot", slot, "tournament_id", t.ID, "teams_deleted", deleted)
	case !domain.IsNotFoundError(err):
		return nil, err
	}

	fresh := newSlot(slot, "")
	if err := s.tournaments.SaveTournament(ctx, *fresh); err != nil {
		return nil, fmt.Errorf("saving tournament: %w", err)
	}
	return fresh, nil
}

func newSlot(slot int, name string) *domain.Tournament {
	return &domain.Tournament{
		ID:        uuid.NewString(),
		Slot:      slot,
		Name:      name,
		Status:    domain.StatusSetup,
		Golfers:   []domain.Golfer{},
		CreatedAt: time.Now().UTC(),
	}
}

func checkSlot(slot int) error {
	if slot < 1 || slot > MaxSlots {
		return domain.Invalid("slot must be between 1 and %d", MaxSlots)
	}
	return nil
}
