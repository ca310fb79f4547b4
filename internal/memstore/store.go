// Package memstore keeps users, tournaments, teams and scores in process
// memory. It satisfies the same contracts as the postgres repository and
// redis score cache and backs tests and local runs without either.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fairway-fantasy/internal/domain"
)

// Store holds users, tournaments and teams
type Store struct {
	mu          sync.Mutex
	users       map[string]domain.User
	tournaments map[string]domain.Tournament
	teams       map[string]domain.Team
	// insertion order, for entry-ordered listings
	teamOrder  []string
	upsertFail error
}

// New creates an empty store
func New() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		tournaments: make(map[string]domain.Tournament),
		teams:       make(map[string]domain.Team),
	}
}

// PutUser stores a user as is.
func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutTournament stores a tournament as is.
func (s *Store) PutTournament(t domain.Tournament) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[t.ID] = t
}

// PutTeam stores a team as is, after any existing teams.
func (s *Store) PutTeam(t domain.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[t.ID]; !ok {
		s.teamOrder = append(s.teamOrder, t.ID)
	}
	s.teams[t.ID] = t
}

// Team returns a stored team.
func (s *Store) Team(id string) (domain.Team, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	return t, ok
}

// Teams returns the number of stored teams.
func (s *Store) Teams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.teams)
}

// FailUpserts makes every following UpsertTeam return err. Nil restores
// normal behavior.
func (s *Store) FailUpserts(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertFail = err
}

func (s *Store) CreateUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if strings.EqualFold(other.Email, u.Email) || other.PIN == u.PIN {
			return domain.ErrUserExists
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByPIN(_ context.Context, pin string) (*domain.User, error) {
	return s.findUser(func(u domain.User) bool { return u.PIN == pin })
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return s.findUser(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *Store) findUser(match func(domain.User) bool) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *Store) UpdateUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) RenameUserTeams(_ context.Context, userID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.teams {
		if t.UserID == userID {
			t.UserName = name
			s.teams[id] = t
		}
	}
	return nil
}

func (s *Store) SaveTournament(_ context.Context, t domain.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, other := range s.tournaments {
		if other.Slot == t.Slot && id != t.ID {
			return domain.Invalid("slot %d is taken", t.Slot)
		}
	}
	s.tournaments[t.ID] = t
	return nil
}

func (s *Store) GetTournament(_ context.Context, id string) (*domain.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok {
		return nil, domain.ErrTournamentNotFound
	}
	return &t, nil
}

func (s *Store) GetTournamentBySlot(_ context.Context, slot int) (*domain.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tournaments {
		if t.Slot == slot {
			return &t, nil
		}
	}
	return nil, domain.ErrTournamentNotFound
}

func (s *Store) ListTournaments(_ context.Context) ([]domain.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Tournament, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (s *Store) SetTournamentStatus(_ context.Context, id string, status domain.TournamentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok {
		return domain.ErrTournamentNotFound
	}
	t.Status = status
	s.tournaments[id] = t
	return nil
}

// DeleteTournament removes a tournament and, like the foreign key cascade,
// its teams.
func (s *Store) DeleteTournament(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tournaments[id]; !ok {
		return domain.ErrTournamentNotFound
	}
	delete(s.tournaments, id)
	for teamID, t := range s.teams {
		if t.TournamentID == id {
			delete(s.teams, teamID)
		}
	}
	return nil
}

func (s *Store) CountTeamsByTournament(_ context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, t := range s.teams {
		counts[t.TournamentID]++
	}
	return counts, nil
}

func (s *Store) listTeams(keep func(domain.Team) bool) []domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Team
	for _, id := range s.teamOrder {
		if t, ok := s.teams[id]; ok && keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) ListTeamsByUser(_ context.Context, userID string) ([]domain.Team, error) {
	return s.listTeams(func(t domain.Team) bool { return t.UserID == userID }), nil
}

func (s *Store) ListTeamsByTournament(_ context.Context, tournamentID string) ([]domain.Team, error) {
	return s.listTeams(func(t domain.Team) bool { return t.TournamentID == tournamentID }), nil
}

func (s *Store) GetTeam(_ context.Context, id string) (*domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	return &t, nil
}

// UpsertTeam inserts a team or, when the user already has a team with the
// same number in the tournament, replaces its golfers.
func (s *Store) UpsertTeam(_ context.Context, team domain.Team) (*domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertFail != nil {
		return nil, s.upsertFail
	}
	for id, t := range s.teams {
		if t.UserID == team.UserID && t.TournamentID == team.TournamentID && t.TeamNumber == team.TeamNumber {
			t.Golfers = team.Golfers
			t.TotalCost = team.TotalCost
			t.UserName = team.UserName
			t.AdminModified = t.AdminModified || team.AdminModified
			t.UpdatedAt = team.UpdatedAt
			s.teams[id] = t
			return &t, nil
		}
	}
	team.CreatedAt = team.UpdatedAt
	s.teams[team.ID] = team
	s.teamOrder = append(s.teamOrder, team.ID)
	return &team, nil
}

func (s *Store) DeleteTeam(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[id]; !ok {
		return domain.ErrTeamNotFound
	}
	delete(s.teams, id)
	return nil
}

func (s *Store) DeleteTeamsByTournament(_ context.Context, tournamentID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.teams {
		if t.TournamentID == tournamentID {
			delete(s.teams, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) SetTeamPaid(_ context.Context, id string, paid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	if !ok {
		return domain.ErrTeamNotFound
	}
	t.Paid = paid
	s.teams[id] = t
	return nil
}
