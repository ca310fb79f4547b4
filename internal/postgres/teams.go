package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fairway-fantasy/internal/domain"
)

const teamColumns = `id, user_id, user_name, tournament_id, team_number, golfers, total_cost, paid, admin_modified, created_at, updated_at`

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var (
		t           domain.Team
		golfersJSON []byte
	)
	err := row.Scan(&t.ID, &t.UserID, &t.UserName, &t.TournamentID, &t.TeamNumber,
		&golfersJSON, &t.TotalCost, &t.Paid, &t.AdminModified, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(golfersJSON, &t.Golfers); err != nil {
		return nil, fmt.Errorf("unmarshaling golfers: %w", err)
	}
	return &t, nil
}

func (r *Repository) queryTeams(ctx context.Context, query string, args ...any) ([]domain.Team, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

// ListTeamsByUser retrieves every team a user has entered
func (r *Repository) ListTeamsByUser(ctx context.Context, userID string) ([]domain.Team, error) {
	return r.queryTeams(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE user_id = $1 ORDER BY tournament_id, team_number`, userID)
}

// ListTeamsByTournament retrieves the teams of a tournament in entry order
func (r *Repository) ListTeamsByTournament(ctx context.Context, tournamentID string) ([]domain.Team, error) {
	return r.queryTeams(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE tournament_id = $1 ORDER BY created_at, id`, tournamentID)
}

// GetTeam retrieves a team by ID
func (r *Repository) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	t, err := scanTeam(r.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, fmt.Errorf("getting team: %w", err)
	}
	return t, nil
}

// UpsertTeam inserts a team or replaces the golfers of the user's existing
// team with the same number. The stored row is returned.
func (r *Repository) UpsertTeam(ctx context.Context, team domain.Team) (*domain.Team, error) {
	golfersJSON, err := json.Marshal(team.Golfers)
	if err != nil {
		return nil, fmt.Errorf("marshaling golfers: %w", err)
	}

	query := `
		INSERT INTO teams (id, user_id, user_name, tournament_id, team_number, golfers, total_cost, admin_modified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (user_id, tournament_id, team_number)
		DO UPDATE SET golfers = $6, total_cost = $7, user_name = $3,
			admin_modified = teams.admin_modified OR $8, updated_at = $9
		RETURNING ` + teamColumns
	row := r.pool.QueryRow(ctx, query,
		team.ID,
		team.UserID,
		team.UserName,
		team.TournamentID,
		team.TeamNumber,
		golfersJSON,
		team.TotalCost,
		team.AdminModified,
		team.UpdatedAt,
	)
	saved, err := scanTeam(row)
	if err != nil {
		return nil, fmt.Errorf("upserting team: %w", err)
	}
	return saved, nil
}

// DeleteTeam removes a team
func (r *Repository) DeleteTeam(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

// DeleteTeamsByTournament removes every team entered in a tournament
func (r *Repository) DeleteTeamsByTournament(ctx context.Context, tournamentID string) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("deleting tournament teams: %w", err)
	}
	return result.RowsAffected(), nil
}

// SetTeamPaid records the entry fee status
func (r *Repository) SetTeamPaid(ctx context.Context, id string, paid bool) error {
	result, err := r.pool.Exec(ctx, `UPDATE teams SET paid = $2 WHERE id = $1`, id, paid)
	if err != nil {
		return fmt.Errorf("setting team paid: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}
