// Package roster holds the working copy of a user's two teams for one
// tournament and reconciles it with the persisted teams on save.
package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fairway-fantasy/internal/domain"
)

// Store persists teams
type Store interface {
	ListUserTeams(ctx context.Context, userID string) ([]domain.Team, error)
	UpsertTeam(ctx context.Context, req domain.TeamRequest) (*domain.Team, error)
	DeleteTeam(ctx context.Context, teamID, userID string) error
}

// Outcome is what a save did to one team
type Outcome string

const (
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeSaved     Outcome = "saved"
	OutcomeDeleted   Outcome = "deleted"
	OutcomeFailed    Outcome = "failed"
)

// TeamResult reports the save of one team
type TeamResult struct {
	TeamNumber int
	Outcome    Outcome
	Err        error
}

// SaveResult reports a save of both teams
type SaveResult struct {
	Teams [domain.MaxTeamsPerUser]TeamResult
}

// Err joins the per-team errors.
func (r SaveResult) Err() error {
	var errs []error
	for _, t := range r.Teams {
		if t.Err != nil {
			errs = append(errs, t.Err)
		}
	}
	return errors.Join(errs...)
}

// Builder is the roster editor for one user and tournament
type Builder struct {
	store      Store
	session    domain.Session
	tournament *domain.Tournament
	now        func() time.Time
	logger     *slog.Logger

	mu        sync.Mutex
	teams     [domain.MaxTeamsPerUser]domain.Slots
	saved     [domain.MaxTeamsPerUser]domain.Slots
	persisted [domain.MaxTeamsPerUser]*domain.Team
	active    int
	saving    bool
}

// Option configures a Builder
type Option func(*Builder)

// WithClock overrides the clock used for the deadline check.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a builder with two empty teams.
func NewBuilder(store Store, session domain.Session, tournament *domain.Tournament, logger *slog.Logger, opts ...Option) *Builder {
	b := &Builder{
		store:      store,
		session:    session,
		tournament: tournament,
		now:        time.Now,
		logger:     logger,
		active:     1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load replaces both working copies with the user's persisted teams.
func (b *Builder) Load(ctx context.Context) error {
	teams, err := b.store.ListUserTeams(ctx, b.session.UserID)
	if err != nil {
		return fmt.Errorf("%w: loading teams: %v", domain.ErrPersistenceFailed, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.teams = [domain.MaxTeamsPerUser]domain.Slots{}
	b.persisted = [domain.MaxTeamsPerUser]*domain.Team{}
	for i := range teams {
		t := teams[i]
		if t.TournamentID != b.tournament.ID || t.TeamNumber < 1 || t.TeamNumber > domain.MaxTeamsPerUser {
			continue
		}
		b.teams[t.TeamNumber-1] = domain.SlotsFrom(t.Golfers)
		b.persisted[t.TeamNumber-1] = &t
	}
	b.saved = b.teams

	b.logger.Debug("roster loaded",
		"user_id", b.session.UserID,
		"tournament_id", b.tournament.ID,
		"team1", b.teams[0].Count(),
		"team2", b.teams[1].Count(),
	)
	return nil
}

// Ready returns ErrDataUnavailable until the tournament has priced golfers.
func (b *Builder) Ready() error {
	if !b.tournament.HasPrices() {
		return domain.ErrDataUnavailable
	}
	return nil
}

// Locked reports whether the deadline has passed.
func (b *Builder) Locked() bool {
	return b.tournament.Locked(b.now())
}

// Active returns the team number being edited.
func (b *Builder) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// SetActive switches the team being edited.
func (b *Builder) SetActive(n int) error {
	if err := checkTeam(n); err != nil {
		return err
	}
	b.mu.Lock()
	b.active = n
	b.mu.Unlock()
	return nil
}

// Add places a golfer in the first empty slot of team n.
func (b *Builder) Add(n int, g domain.Golfer) error {
	if err := checkTeam(n); err != nil {
		return err
	}
	if b.Locked() {
		return domain.ErrLocked
	}
	if !g.Priced() {
		return domain.Invalid("%s has no price", g.Name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	slots := &b.teams[n-1]
	if slots.Contains(g.Name) {
		return domain.Invalid("%s is already on team %d", g.Name, n)
	}
	for i, p := range slots {
		if p == nil {
			pick := g.Snapshot()
			slots[i] = &pick
			return nil
		}
	}
	return domain.Invalid("team %d is full", n)
}

// Remove empties slot i of team n and moves later golfers up.
func (b *Builder) Remove(n, i int) error {
	if err := checkTeam(n); err != nil {
		return err
	}
	if b.Locked() {
		return domain.ErrLocked
	}
	if i < 0 || i >= domain.RosterSize {
		return domain.ErrInvalidRequest
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	slots := &b.teams[n-1]
	slots[i] = nil
	*slots = domain.SlotsFrom(slots.Filled())
	return nil
}

// Swap replaces the golfer in slot i of team n, keeping its position.
func (b *Builder) Swap(n, i int, g domain.Golfer) error {
	if err := checkTeam(n); err != nil {
		return err
	}
	if b.Locked() {
		return domain.ErrLocked
	}
	if i < 0 || i >= domain.RosterSize {
		return domain.ErrInvalidRequest
	}
	if !g.Priced() {
		return domain.Invalid("%s has no price", g.Name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	slots := &b.teams[n-1]
	if slots[i] == nil {
		return domain.Invalid("slot %d of team %d is empty", i+1, n)
	}
	for j, p := range slots {
		if j != i && p != nil && p.SameGolfer(g.Name) {
			return domain.Invalid("%s is already on team %d", g.Name, n)
		}
	}
	pick := g.Snapshot()
	slots[i] = &pick
	return nil
}

// RemoveByName removes a golfer from team n wherever it sits.
func (b *Builder) RemoveByName(n int, name string) error {
	if err := checkTeam(n); err != nil {
		return err
	}
	b.mu.Lock()
	idx := -1
	for i, p := range b.teams[n-1] {
		if p != nil && p.SameGolfer(name) {
			idx = i
			break
		}
	}
	b.mu.Unlock()

	if idx < 0 {
		return nil
	}
	return b.Remove(n, idx)
}

// Clear empties team n.
func (b *Builder) Clear(n int) error {
	if err := checkTeam(n); err != nil {
		return err
	}
	if b.Locked() {
		return domain.ErrLocked
	}
	b.mu.Lock()
	b.teams[n-1] = domain.Slots{}
	b.mu.Unlock()
	return nil
}

// Team returns a copy of the working roster for team n.
func (b *Builder) Team(n int) domain.Slots {
	if checkTeam(n) != nil {
		return domain.Slots{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var out domain.Slots
	for i, p := range b.teams[n-1] {
		if p != nil {
			c := *p
			out[i] = &c
		}
	}
	return out
}

// Cost is the total price of team n.
func (b *Builder) Cost(n int) int {
	return b.Team(n).Cost()
}

// Remaining is the budget left on team n. It is negative when over budget.
func (b *Builder) Remaining(n int) int {
	return domain.Budget - b.Cost(n)
}

// Over reports whether team n is over budget.
func (b *Builder) Over(n int) bool {
	return b.Cost(n) > domain.Budget
}

// HasPendingChanges reports whether either team differs from what was last
// loaded or saved.
func (b *Builder) HasPendingChanges() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.teams {
		if b.teams[i].Names() != b.saved[i].Names() {
			return true
		}
	}
	return false
}

// OnTeam reports which teams already carry a golfer.
func (b *Builder) OnTeam(name string) (team1, team2 bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.teams[0].Contains(name), b.teams[1].Contains(name)
}

// CanAdd reports whether g could be added to team n without breaking the
// budget.
func (b *Builder) CanAdd(n int, g domain.Golfer) bool {
	if checkTeam(n) != nil || !g.Priced() || b.Locked() {
		return false
	}
	slots := b.Team(n)
	if slots.Count() >= domain.RosterSize || slots.Contains(g.Name) {
		return false
	}
	return slots.Cost()+*g.Price <= domain.Budget
}

// Available lists the priced golfers matching search, most expensive first.
func (b *Builder) Available(search string) []domain.Golfer {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Golfer, 0, len(b.tournament.Golfers))
	for _, g := range b.tournament.Golfers {
		if !g.Priced() {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(g.Name), search) {
			continue
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Price > *out[j].Price
	})
	return out
}

// Save persists both teams. Each team is handled on its own: an empty team
// deletes its persisted copy, a complete team is upserted, and anything else
// is rejected. A failure leaves that team's working copy as it was.
func (b *Builder) Save(ctx context.Context) (SaveResult, error) {
	var res SaveResult
	if b.Locked() {
		return res, domain.ErrLocked
	}

	b.mu.Lock()
	if b.saving {
		b.mu.Unlock()
		return res, domain.ErrSaveInFlight
	}
	b.saving = true
	teams := b.teams
	saved := b.saved
	persisted := b.persisted
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.saving = false
		b.mu.Unlock()
	}()

	for i := range teams {
		n := i + 1
		tr, team := b.saveTeam(ctx, n, teams[i], saved[i], persisted[i])
		res.Teams[i] = tr

		if tr.Err != nil {
			b.logger.Warn("team save failed",
				"user_id", b.session.UserID,
				"tournament_id", b.tournament.ID,
				"team_number", n,
				"error", tr.Err,
			)
			continue
		}

		b.mu.Lock()
		b.saved[i] = teams[i]
		if tr.Outcome != OutcomeUnchanged {
			b.persisted[i] = team
		}
		b.mu.Unlock()
	}

	return res, res.Err()
}

func (b *Builder) saveTeam(ctx context.Context, n int, slots, saved domain.Slots, existing *domain.Team) (TeamResult, *domain.Team) {
	tr := TeamResult{TeamNumber: n}

	switch count := slots.Count(); {
	case count == 0:
		if existing == nil {
			tr.Outcome = OutcomeUnchanged
			return tr, nil
		}
		if err := b.store.DeleteTeam(ctx, existing.ID, b.session.UserID); err != nil {
			tr.Outcome = OutcomeFailed
			tr.Err = fmt.Errorf("team %d: %w: %v", n, domain.ErrPersistenceFailed, err)
			return tr, existing
		}
		tr.Outcome = OutcomeDeleted
		return tr, nil

	case count < domain.RosterSize:
		tr.Outcome = OutcomeFailed
		tr.Err = fmt.Errorf("team %d: %w", n, domain.Invalid("needs exactly %d golfers, has %d", domain.RosterSize, count))
		return tr, existing
	}

	picks := slots.Filled()
	if err := domain.ValidateRoster(picks); err != nil {
		tr.Outcome = OutcomeFailed
		tr.Err = fmt.Errorf("team %d: %w", n, err)
		return tr, existing
	}
	if existing != nil && slots.Names() == saved.Names() {
		tr.Outcome = OutcomeUnchanged
		return tr, existing
	}

	team, err := b.store.UpsertTeam(ctx, domain.TeamRequest{
		UserID:       b.session.UserID,
		TournamentID: b.tournament.ID,
		TeamNumber:   n,
		Golfers:      picks,
	})
	if err != nil {
		tr.Outcome = OutcomeFailed
		if domain.IsValidation(err) || domain.IsLocked(err) {
			tr.Err = fmt.Errorf("team %d: %w", n, err)
		} else {
			tr.Err = fmt.Errorf("team %d: %w: %v", n, domain.ErrPersistenceFailed, err)
		}
		return tr, existing
	}
	tr.Outcome = OutcomeSaved
	return tr, team
}

func checkTeam(n int) error {
	if n < 1 || n > domain.MaxTeamsPerUser {
		return fmt.Errorf("%w: team number %d", domain.ErrInvalidRequest, n)
	}
	return nil
}
