package service

import (
	"context"
	"time"

	"github.com/fairway-fantasy/internal/domain"
)

// UserStore persists pool members
type UserStore interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByPIN(ctx context.Context, pin string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, u domain.User) error
	RenameUserTeams(ctx context.Context, userID, name string) error
}

// TournamentStore persists tournament slots
type TournamentStore interface {
	SaveTournament(ctx context.Context, t domain.Tournament) error
	GetTournament(ctx context.Context, id string) (*domain.Tournament, error)
	GetTournamentBySlot(ctx context.Context, slot int) (*domain.Tournament, error)
	ListTournaments(ctx context.Context) ([]domain.Tournament, error)
	SetTournamentStatus(ctx context.Context, id string, status domain.TournamentStatus) error
	DeleteTournament(ctx context.Context, id string) error
	CountTeamsByTournament(ctx context.Context) (map[string]int, error)
}

// TeamStore persists fantasy teams
type TeamStore interface {
	ListTeamsByUser(ctx context.Context, userID string) ([]domain.Team, error)
	ListTeamsByTournament(ctx context.Context, tournamentID string) ([]domain.Team, error)
	GetTeam(ctx context.Context, id string) (*domain.Team, error)
	UpsertTeam(ctx context.Context, team domain.Team) (*domain.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	DeleteTeamsByTournament(ctx context.Context, tournamentID string) (int64, error)
	SetTeamPaid(ctx context.Context, id string, paid bool) error
}

// ScoreCache holds the latest field snapshot and team totals
type ScoreCache interface {
	SetScores(ctx context.Context, tournamentID string, scores []domain.ScoreSnapshot, at time.Time) error
	GetScores(ctx context.Context, tournamentID string) ([]domain.ScoreSnapshot, time.Time, error)
	SetTeamTotals(ctx context.Context, tournamentID string, standings []domain.TeamStanding) error
	GetTeamRank(ctx context.Context, tournamentID, teamID string) (int64, float64, error)
	DeleteTournament(ctx context.Context, tournamentID string) error
}

// Refresher asks the score provider to publish a fresh feed
type Refresher interface {
	RequestRefresh(ctx context.Context, eventID string) error
}

// Broadcaster pushes standings to live subscribers
type Broadcaster interface {
	BroadcastStandings(tournamentID string, view *domain.LeaderboardView)
	BroadcastFinalized(tournamentID string, champions []domain.TeamStanding)
}

func requireAdmin(ctx context.Context, users UserStore, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrForbidden
	}
	u, err := users.GetUser(ctx, userID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}
	if !u.IsAdmin {
		return nil, domain.ErrForbidden
	}
	return u, nil
}
