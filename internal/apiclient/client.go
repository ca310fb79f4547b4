// Package apiclient talks to the pool API on behalf of a signed-in user. It
// backs the roster builder and the leaderboard watcher.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fairway-fantasy/internal/domain"
)

// envelope mirrors the API response body
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// APIError is a failed API call. It unwraps to the matching domain error.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case "validation":
		return domain.Invalid("%s", strings.TrimPrefix(e.Message, domain.ErrValidationFailed.Error()+": "))
	case "not_found":
		switch {
		case strings.Contains(e.Message, "team"):
			return domain.ErrTeamNotFound
		case strings.Contains(e.Message, "user"):
			return domain.ErrUserNotFound
		}
		return domain.ErrTournamentNotFound
	case "unauthorized":
		return domain.ErrUserNotFound
	case "forbidden":
		return domain.ErrForbidden
	case "locked":
		return domain.ErrLocked
	case "conflict":
		return domain.ErrUserExists
	case "busy":
		return domain.ErrRefreshInFlight
	case "rate_limited":
		return domain.ErrRateLimited
	case "data_unavailable":
		return domain.ErrDataUnavailable
	}
	return domain.ErrInternalError
}

// Client is a pool API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	userID     string
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUser sets the user the client acts for.
func WithUser(userID string) Option {
	return func(c *Client) { c.userID = userID }
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v1",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login signs in by PIN and binds the client to that user.
func (c *Client) Login(ctx context.Context, pin string) (*domain.User, error) {
	var u domain.User
	if err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"pin": pin}, &u); err != nil {
		return nil, err
	}
	c.userID = u.ID
	return &u, nil
}

// Tournament loads a tournament with its golfer catalog.
func (c *Client) Tournament(ctx context.Context, id string) (*domain.Tournament, error) {
	var t domain.TournamentDetail
	if err := c.do(ctx, http.MethodGet, "/tournaments/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t.Tournament, nil
}

// ListUserTeams returns the user's teams across tournaments.
func (c *Client) ListUserTeams(ctx context.Context, userID string) ([]domain.Team, error) {
	var teams []domain.Team
	if err := c.do(ctx, http.MethodGet, "/teams/user/"+url.PathEscape(userID), nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// UpsertTeam creates or replaces a team.
func (c *Client) UpsertTeam(ctx context.Context, req domain.TeamRequest) (*domain.Team, error) {
	var team domain.Team
	if err := c.do(ctx, http.MethodPost, "/teams", req, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// DeleteTeam removes one of the user's teams.
func (c *Client) DeleteTeam(ctx context.Context, teamID, userID string) error {
	path := "/teams/" + url.PathEscape(teamID) + "?user_id=" + url.QueryEscape(userID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// FetchLeaderboard loads the standings of a tournament.
func (c *Client) FetchLeaderboard(ctx context.Context, tournamentID string) (*domain.LeaderboardView, error) {
	var view domain.LeaderboardView
	if err := c.do(ctx, http.MethodGet, "/leaderboard/"+url.PathEscape(tournamentID), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// TriggerRefresh asks the server to pull fresh scores. Only admins may.
func (c *Client) TriggerRefresh(ctx context.Context, tournamentID string) error {
	path := "/scores/refresh/" + url.PathEscape(tournamentID) + "?user_id=" + url.QueryEscape(c.userID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// History loads the pool's champions record.
func (c *Client) History(ctx context.Context) (*domain.PoolHistory, error) {
	var h domain.PoolHistory
	if err := c.do(ctx, http.MethodGet, "/history", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decoding response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
		c.logger.Debug("api call failed", "method", method, "path", path, "status", resp.StatusCode, "code", env.Code)
		return apiErr
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decoding data: %w", method, path, err)
	}
	return nil
}

// IsAPIError reports whether err came back from the API with the given code.
func IsAPIError(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
