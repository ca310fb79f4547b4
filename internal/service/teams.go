package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fairway-fantasy/internal/domain"
)

// TeamService validates and stores rosters. Every rule the roster builder
// checks locally is enforced again here.
type TeamService struct {
	users       UserStore
	tournaments TournamentStore
	teams       TeamStore
	now         func() time.Time
	logger      *slog.Logger
}

// NewTeamService creates a new team service
func NewTeamService(users UserStore, tournaments TournamentStore, teams TeamStore, logger *slog.Logger) *TeamService {
	return &TeamService{
		users:       users,
		tournaments: tournaments,
		teams:       teams,
		now:         time.Now,
		logger:      logger,
	}
}

// SetClock overrides the clock used for deadline checks.
func (s *TeamService) SetClock(now func() time.Time) {
	s.now = now
}

// ListUserTeams returns every team the user has entered
func (s *TeamService) ListUserTeams(ctx context.Context, userID string) ([]domain.Team, error) {
	teams, err := s.teams.ListTeamsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	return teams, nil
}

// ListTournamentTeams returns the teams entered in a tournament
func (s *TeamService) ListTournamentTeams(ctx context.Context, tournamentID string) ([]domain.Team, error) {
	if _, err := s.tournaments.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	teams, err := s.teams.ListTeamsByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	return teams, nil
}

// SaveTeam creates the user's team with the requested number or replaces its
// golfers. A user may hold at most MaxTeamsPerUser teams per tournament.
func (s *TeamService) SaveTeam(ctx context.Context, req domain.TeamRequest) (*domain.Team, error) {
	if req.UserID == "" || req.TournamentID == "" {
		return nil, domain.ErrInvalidRequest
	}

	user, err := s.users.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	t, err := s.tournaments.GetTournament(ctx, req.TournamentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if t.Locked(now) {
		return nil, domain.ErrLocked
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entered, err := s.teams.ListTeamsByUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing user teams: %w", err)
	}
	var existing *domain.Team
	count := 0
	for i := range entered {
		if entered[i].TournamentID != req.TournamentID {
			continue
		}
		count++
		if entered[i].TeamNumber == req.TeamNumber {
			existing = &entered[i]
		}
	}
	if existing == nil && count >= domain.MaxTeamsPerUser {
		return nil, domain.Invalid("maximum %d teams per tournament", domain.MaxTeamsPerUser)
	}

	team := domain.Team{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		UserName:     user.Name,
		TournamentID: t.ID,
		TeamNumber:   req.TeamNumber,
		Golfers:      req.Golfers,
		TotalCost:    domain.TotalCost(req.Golfers),
		UpdatedAt:    now.UTC(),
	}
	if existing != nil {
		team.ID = existing.ID
	}

	saved, err := s.teams.UpsertTeam(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	s.logger.Info("team saved",
		"team_id", saved.ID,
		"user_id", saved.UserID,
		"tournament_id", saved.TournamentID,
		"team_number", saved.TeamNumber,
		"total_cost", saved.TotalCost,
	)
	return saved, nil
}

// DeleteTeam removes one of the user's own teams before the deadline.
func (s *TeamService) DeleteTeam(ctx context.Context, teamID, userID string) error {
	team, err := s.teams.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.UserID != userID {
		return fmt.Errorf("not your team: %w", domain.ErrForbidden)
	}
	t, err := s.tournaments.GetTournament(ctx, team.TournamentID)
	if err != nil {
		return err
	}
	if t.Locked(s.now()) {
		return domain.ErrLocked
	}
	if err := s.teams.DeleteTeam(ctx, teamID); err != nil {
		return err
	}

	s.logger.Info("team deleted", "team_id", teamID, "user_id", userID)
	return nil
}

// AdminListTeams returns a tournament and every team entered in it.
func (s *TeamService) AdminListTeams(ctx context.Context, adminID, tournamentID string) (*domain.Tournament, []domain.Team, error) {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return nil, nil, err
	}
	t, err := s.tournaments.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, nil, err
	}
	teams, err := s.ListTournamentTeams(ctx, tournamentID)
	if err != nil {
		return nil, nil, err
	}
	return t, teams, nil
}

// AdminUpdateTeam replaces a team's golfers regardless of the deadline and
// marks the team as admin modified.
func (s *TeamService) AdminUpdateTeam(ctx context.Context, adminID, teamID string, golfers []domain.Pick) (*domain.Team, error) {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return nil, err
	}
	team, err := s.teams.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateRoster(golfers); err != nil {
		return nil, err
	}

	team.Golfers = golfers
	team.TotalCost = domain.TotalCost(golfers)
	team.AdminModified = true
	team.UpdatedAt = s.now().UTC()

	saved, err := s.teams.UpsertTeam(ctx, *team)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	s.logger.Info("team updated by admin", "team_id", teamID, "admin_id", adminID)
	return saved, nil
}

// AdminDeleteTeam removes any team regardless of owner or deadline.
func (s *TeamService) AdminDeleteTeam(ctx context.Context, adminID, teamID string) error {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return err
	}
	if err := s.teams.DeleteTeam(ctx, teamID); err != nil {
		return err
	}
	s.logger.Info("team deleted by admin", "team_id", teamID, "admin_id", adminID)
	return nil
}

// SetPaid records whether a team's entry fee has been paid.
func (s *TeamService) SetPaid(ctx context.Context, adminID, teamID string, paid bool) error {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return err
	}
	return s.teams.SetTeamPaid(ctx, teamID, paid)
}
