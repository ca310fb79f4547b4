// Package provider asks the external scoring provider to re-pull a
// tournament. Fresh scores come back on the score feed topic.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/fairway-fantasy/internal/config"
	"github.com/fairway-fantasy/internal/domain"
)

// ErrUnavailable is returned while the provider circuit is open
var ErrUnavailable = errors.New("score provider unavailable")

// Client calls the provider's refresh endpoint behind a circuit breaker and
// a per-event rate limit
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	perMinute  int
	logger     *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	inFlight map[string]bool
}

// NewClient creates a provider client
func NewClient(cfg *config.ProviderConfig, logger *slog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "score-provider",
		MaxRequests: uint32(cfg.BreakerRequests),
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		perMinute:  cfg.RefreshPerMinute,
		logger:     logger,
		limiters:   make(map[string]*rate.Limiter),
		inFlight:   make(map[string]bool),
	}
}

func (c *Client) limiter(eventID string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[eventID]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(max(c.perMinute, 1))), 1)
		c.limiters[eventID] = l
	}
	return l
}

// begin marks a refresh of eventID as running. It reports false when one
// already is.
func (c *Client) begin(eventID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight[eventID] {
		return false
	}
	c.inFlight[eventID] = true
	return true
}

func (c *Client) done(eventID string) {
	c.mu.Lock()
	delete(c.inFlight, eventID)
	c.mu.Unlock()
}

// RequestRefresh asks the provider to re-pull an event. It returns
// ErrRefreshInFlight while a request for the same event is running and
// ErrRateLimited when the event was refreshed too recently.
func (c *Client) RequestRefresh(ctx context.Context, eventID string) error {
	if eventID == "" {
		return domain.Invalid("tournament has no provider event")
	}
	if !c.begin(eventID) {
		return domain.ErrRefreshInFlight
	}
	defer c.done(eventID)

	if !c.limiter(eventID).Allow() {
		return domain.ErrRateLimited
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.post(ctx, eventID)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ErrUnavailable
		}
		return err
	}

	c.logger.Info("provider refresh requested", "event_id", eventID)
	return nil
}

func (c *Client) post(ctx context.Context, eventID string) error {
	endpoint := fmt.Sprintf("%s/refresh/%s", c.baseURL, url.PathEscape(eventID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building refresh request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// State reports the circuit state for health output
func (c *Client) State() string {
	return c.breaker.State().String()
}
