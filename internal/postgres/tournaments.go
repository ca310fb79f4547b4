package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fairway-fantasy/internal/domain"
)

const tournamentColumns = `id, slot, name, COALESCE(espn_event_id, ''), status, start_date, end_date, deadline, golfers, created_at`

func scanTournament(row pgx.Row) (*domain.Tournament, error) {
	var (
		t                    domain.Tournament
		start, end, deadline *time.Time
		golfersJSON          []byte
	)
	err := row.Scan(&t.ID, &t.Slot, &t.Name, &t.ProviderEventID, &t.Status,
		&start, &end, &deadline, &golfersJSON, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.StartDate = fromNull(start)
	t.EndDate = fromNull(end)
	t.Deadline = fromNull(deadline)
	if len(golfersJSON) > 0 {
		if err := json.Unmarshal(golfersJSON, &t.Golfers); err != nil {
			return nil, fmt.Errorf("unmarshaling golfers: %w", err)
		}
	}
	return &t, nil
}

// SaveTournament inserts or replaces a tournament
func (r *Repository) SaveTournament(ctx context.Context, t domain.Tournament) error {
	golfers := t.Golfers
	if golfers == nil {
		golfers = []domain.Golfer{}
	}
	golfersJSON, err := json.Marshal(golfers)
	if err != nil {
		return fmt.Errorf("marshaling golfers: %w", err)
	}

	query := `
		INSERT INTO tournaments (id, slot, name, espn_event_id, status, start_date, end_date, deadline, golfers, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id)
		DO UPDATE SET
			slot = $2, name = $3, espn_event_id = NULLIF($4, ''), status = $5,
			start_date = $6, end_date = $7, deadline = $8, golfers = $9
	`
	_, err = r.pool.Exec(ctx, query,
		t.ID,
		t.Slot,
		t.Name,
		t.ProviderEventID,
		string(t.Status),
		nullTime(t.StartDate),
		nullTime(t.EndDate),
		nullTime(t.Deadline),
		golfersJSON,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving tournament: %w", err)
	}
	return nil
}

// GetTournament retrieves a tournament by ID
func (r *Repository) GetTournament(ctx context.Context, id string) (*domain.Tournament, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id)
	t, err := scanTournament(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTournamentNotFound
		}
		return nil, fmt.Errorf("getting tournament: %w", err)
	}
	return t, nil
}

// GetTournamentBySlot retrieves the tournament occupying a slot
func (r *Repository) GetTournamentBySlot(ctx context.Context, slot int) (*domain.Tournament, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE slot = $1`, slot)
	t, err := scanTournament(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTournamentNotFound
		}
		return nil, fmt.Errorf("getting tournament by slot: %w", err)
	}
	return t, nil
}

// ListTournaments retrieves all tournaments ordered by slot
func (r *Repository) ListTournaments(ctx context.Context) ([]domain.Tournament, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tournamentColumns+` FROM tournaments ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("listing tournaments: %w", err)
	}
	defer rows.Close()

	var out []domain.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tournament: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// SetTournamentStatus updates the lifecycle status
func (r *Repository) SetTournamentStatus(ctx context.Context, id string, status domain.TournamentStatus) error {
	result, err := r.pool.Exec(ctx, `UPDATE tournaments SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("setting tournament status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrTournamentNotFound
	}
	return nil
}

// DeleteTournament removes a tournament and its teams
func (r *Repository) DeleteTournament(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting tournament: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrTournamentNotFound
	}
	return nil
}

// CountTeamsByTournament returns the number of entered teams per tournament
func (r *Repository) CountTeamsByTournament(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT tournament_id, COUNT(*) FROM teams GROUP BY tournament_id`)
	if err != nil {
		return nil, fmt.Errorf("counting teams: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scanning team count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
