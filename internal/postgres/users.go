package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fairway-fantasy/internal/domain"
)

const userColumns = `id, name, email, pin, is_admin, created_at`

// CreateUser inserts a user
func (r *Repository) CreateUser(ctx context.Context, u domain.User) error {
	query := `
		INSERT INTO users (id, name, email, pin, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query, u.ID, u.Name, u.Email, u.PIN, u.IsAdmin, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return r.getUserWhere(ctx, `id = $1`, id)
}

// GetUserByPIN retrieves a user by login PIN
func (r *Repository) GetUserByPIN(ctx context.Context, pin string) (*domain.User, error) {
	return r.getUserWhere(ctx, `pin = $1`, pin)
}

// GetUserByEmail retrieves a user by email, case-insensitively
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUserWhere(ctx, `LOWER(email) = LOWER($1)`, email)
}

func (r *Repository) getUserWhere(ctx context.Context, cond string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + cond
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PIN, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// UpdateUser saves a changed name, email, pin or admin flag
func (r *Repository) UpdateUser(ctx context.Context, u domain.User) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $2, email = $3, pin = $4, is_admin = $5 WHERE id = $1`,
		u.ID, u.Name, u.Email, u.PIN, u.IsAdmin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("updating user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// RenameUserTeams copies a user's new display name onto their teams
func (r *Repository) RenameUserTeams(ctx context.Context, userID, name string) error {
	if _, err := r.pool.Exec(ctx, `UPDATE teams SET user_name = $2 WHERE user_id = $1`, userID, name); err != nil {
		return fmt.Errorf("renaming user teams: %w", err)
	}
	return nil
}
