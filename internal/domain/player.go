package domain

import (
	"fmt"
	"time"
)

// User represents a pool member
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PIN       string    `json:"pin,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the identity a roster builder or leaderboard view acts for
type Session struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	IsAdmin  bool   `json:"is_admin"`
}

// Session returns the identity of the user.
func (u *User) Session() Session {
	return Session{UserID: u.ID, UserName: u.Name, IsAdmin: u.IsAdmin}
}

// Team is a persisted fantasy roster
type Team struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	UserName      string    `json:"user_name"`
	TournamentID  string    `json:"tournament_id"`
	TeamNumber    int       `json:"team_number"`
	Golfers       []Pick    `json:"golfers"`
	TotalCost     int       `json:"total_cost"`
	Paid          bool      `json:"paid"`
	AdminModified bool      `json:"admin_modified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DisplayName is how the team is shown in standings.
func (t *Team) DisplayName() string {
	return fmt.Sprintf("%s #%d", t.UserName, t.TeamNumber)
}

// TeamRequest is a create-or-replace submission
type TeamRequest struct {
	UserID       string `json:"user_id"`
	TournamentID string `json:"tournament_id"`
	TeamNumber   int    `json:"team_number"`
	Golfers      []Pick `json:"golfers"`
}

// Validate checks the request shape and roster rules.
func (r *TeamRequest) Validate() error {
	if r.UserID == "" || r.TournamentID == "" {
		return ErrInvalidRequest
	}
	if r.TeamNumber < 1 || r.TeamNumber > MaxTeamsPerUser {
		return Invalid("team number must be 1 or 2")
	}
	return ValidateRoster(r.Golfers)
}

// RegisterRequest creates a user
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	PIN   string `json:"pin"`
}

// Validate checks the registration fields.
func (r *RegisterRequest) Validate() error {
	if r.Name == "" || r.Email == "" {
		return ErrInvalidRequest
	}
	return ValidatePIN(r.PIN)
}

// ValidatePIN requires exactly four digits.
func ValidatePIN(pin string) error {
	if len(pin) != 4 {
		return Invalid("pin must be exactly 4 digits")
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return Invalid("pin must be exactly 4 digits")
		}
	}
	return nil
}

// ProfileUpdate changes a user's profile; nil fields are left unchanged
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	PIN   *string `json:"pin,omitempty"`
}
