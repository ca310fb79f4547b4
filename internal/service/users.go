package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairway-fantasy/internal/config"
	"github.com/fairway-fantasy/internal/domain"
)

// UserService handles registration, PIN login and profiles
type UserService struct {
	users  UserStore
	config *config.PoolConfig
	logger *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(users UserStore, cfg *config.PoolConfig, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		config: cfg,
		logger: logger,
	}
}

// Register creates a user. Email and PIN must both be unused; the admin PIN
// grants admin rights.
func (s *UserService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, "", req.Email, req.PIN); err != nil {
		return nil, err
	}

	u := domain.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		PIN:       req.PIN,
		IsAdmin:   req.PIN == s.config.AdminPIN,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered", "user_id", u.ID, "is_admin", u.IsAdmin)
	return &u, nil
}

// Login finds the user owning a PIN.
func (s *UserService) Login(ctx context.Context, pin string) (*domain.User, error) {
	if err := domain.ValidatePIN(pin); err != nil {
		return nil, domain.ErrUserNotFound
	}
	return s.users.GetUserByPIN(ctx, pin)
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetUser(ctx, id)
}

// UpdateProfile applies a profile change. Changing the PIN re-evaluates admin
// rights, and a new name is copied onto the user's teams.
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	renamed := false
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, domain.Invalid("name is required")
		}
		renamed = name != u.Name
		u.Name = name
	}

	var email, pin string
	if upd.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*upd.Email))
		if email == "" {
			return nil, domain.Invalid("email is required")
		}
		if email == u.Email {
			email = ""
		}
	}
	if upd.PIN != nil {
		if err := domain.ValidatePIN(*upd.PIN); err != nil {
			return nil, err
		}
		if *upd.PIN != u.PIN {
			pin = *upd.PIN
		}
	}
	if err := s.checkUnique(ctx, u.ID, email, pin); err != nil {
		return nil, err
	}
	if email != "" {
		u.Email = email
	}
	if pin != "" {
		u.PIN = pin
		u.IsAdmin = pin == s.config.AdminPIN
	}

	if err := s.users.UpdateUser(ctx, *u); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	if renamed {
		if err := s.users.RenameUserTeams(ctx, u.ID, u.Name); err != nil {
			s.logger.Warn("failed to rename user teams", "user_id", u.ID, "error", err)
		}
	}
	return u, nil
}

// checkUnique rejects an email or pin already held by another user. Empty
// values are skipped.
func (s *UserService) checkUnique(ctx context.Context, selfID, email, pin string) error {
	if email != "" {
		other, err := s.users.GetUserByEmail(ctx, email)
		if err != nil && !domain.IsNotFoundError(err) {
			return fmt.Errorf("checking email: %w", err)
		}
		if other != nil && other.ID != selfID {
			return fmt.Errorf("email already in use: %w", domain.ErrUserExists)
		}
	}
	if pin != "" {
		other, err := s.users.GetUserByPIN(ctx, pin)
		if err != nil && !domain.IsNotFoundError(err) {
			return fmt.Errorf("checking pin: %w", err)
		}
		if other != nil && other.ID != selfID {
			return fmt.Errorf("pin already in use: %w", domain.ErrUserExists)
		}
	}
	return nil
}
