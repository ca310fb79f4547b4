// Package poller keeps a leaderboard view current for the tournament being
// watched.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fairway-fantasy/internal/config"
	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/standings"
)

// Fetcher reads leaderboards and asks the provider for fresh scores
type Fetcher interface {
	FetchLeaderboard(ctx context.Context, tournamentID string) (*domain.LeaderboardView, error)
	TriggerRefresh(ctx context.Context, tournamentID string) error
}

// Config controls the watch schedule
type Config struct {
	Interval time.Duration
	Fallback time.Duration
}

// ConfigFrom takes the watch schedule from the pool settings
func ConfigFrom(cfg *config.PoolConfig) Config {
	return Config{
		Interval: cfg.PollInterval,
		Fallback: cfg.PollFallback,
	}
}

// Watcher polls the leaderboard of one tournament at a time. Switching
// tournaments or stopping cancels the running poll loop, and any response
// for a tournament that is no longer watched is dropped.
type Watcher struct {
	fetcher  Fetcher
	config   Config
	now      func() time.Time
	onUpdate func(*domain.LeaderboardView)
	logger   *slog.Logger

	// serializes Watch and Stop
	lifecycle sync.Mutex

	mu         sync.Mutex
	tournament *domain.Tournament
	cancel     context.CancelFunc
	doneCh     chan struct{}
	inFlight   map[string]bool
	current    *domain.LeaderboardView
	polling    bool
}

// NewWatcher creates a watcher. onUpdate, when set, is called with each
// applied view.
func NewWatcher(fetcher Fetcher, cfg Config, onUpdate func(*domain.LeaderboardView), logger *slog.Logger) *Watcher {
	return &Watcher{
		fetcher:  fetcher,
		config:   cfg,
		now:      time.Now,
		onUpdate: onUpdate,
		logger:   logger,
		inFlight: make(map[string]bool),
	}
}

// SetClock overrides the clock used for the poll window.
func (w *Watcher) SetClock(now func() time.Time) {
	w.now = now
}

// Watch switches to tournament t. The previous loop is cancelled and a new
// one fetches the leaderboard once, then keeps polling while t is live.
// Watch does not wait for the first fetch.
func (w *Watcher) Watch(ctx context.Context, t *domain.Tournament) {
	w.lifecycle.Lock()
	defer w.lifecycle.Unlock()

	w.stop()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	live := standings.PollWindow(t, w.now(), w.config.Fallback)

	w.mu.Lock()
	w.tournament = t
	w.current = nil
	w.cancel = cancel
	w.doneCh = done
	w.polling = live
	w.mu.Unlock()

	w.logger.Info("watching tournament",
		"tournament_id", t.ID,
		"polling", live,
		"interval", w.config.Interval,
	)

	go w.run(loopCtx, t, live, done)
}

// Stop cancels polling and forgets the watched tournament.
func (w *Watcher) Stop() {
	w.lifecycle.Lock()
	defer w.lifecycle.Unlock()
	w.stop()
}

func (w *Watcher) stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.doneCh
	prev := w.tournament
	w.cancel, w.doneCh = nil, nil
	w.tournament = nil
	w.polling = false
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if prev != nil {
		w.logger.Debug("stopped watching tournament", "tournament_id", prev.ID)
	}
}

// Refresh asks the provider for fresh scores and reloads the leaderboard.
// It returns ErrRefreshInFlight instead of queueing when a fetch for the
// same tournament is running.
func (w *Watcher) Refresh(ctx context.Context) error {
	w.mu.Lock()
	t := w.tournament
	w.mu.Unlock()
	if t == nil {
		return fmt.Errorf("%w: no tournament selected", domain.ErrInvalidRequest)
	}
	return w.fetch(ctx, t.ID, true)
}

// Current returns the last applied view.
func (w *Watcher) Current() *domain.LeaderboardView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Polling reports whether a poll loop is running.
func (w *Watcher) Polling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

func (w *Watcher) run(ctx context.Context, t *domain.Tournament, live bool, done chan struct{}) {
	defer close(done)

	if err := w.fetch(ctx, t.ID, false); err != nil && ctx.Err() == nil {
		w.logger.Warn("leaderboard load failed", "tournament_id", t.ID, "error", err)
	}
	if !live {
		return
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !w.Polling() || !standings.PollWindow(t, w.now(), w.config.Fallback) {
				w.logger.Info("polling stopped", "tournament_id", t.ID)
				w.mu.Lock()
				w.polling = false
				w.mu.Unlock()
				return
			}
			if err := w.fetch(ctx, t.ID, false); err != nil && ctx.Err() == nil {
				w.logger.Warn("leaderboard poll failed", "tournament_id", t.ID, "error", err)
			}
		}
	}
}

func (w *Watcher) fetch(ctx context.Context, tournamentID string, trigger bool) error {
	w.mu.Lock()
	if w.inFlight[tournamentID] {
		w.mu.Unlock()
		return domain.ErrRefreshInFlight
	}
	w.inFlight[tournamentID] = true
	w.mu.Unlock()

	view, err := w.load(ctx, tournamentID, trigger)

	w.mu.Lock()
	delete(w.inFlight, tournamentID)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if w.tournament == nil || w.tournament.ID != tournamentID {
		w.mu.Unlock()
		w.logger.Debug("discarding stale leaderboard", "tournament_id", tournamentID)
		return nil
	}
	w.current = view
	if view.IsFinalized {
		w.polling = false
	}
	w.mu.Unlock()

	if w.onUpdate != nil {
		w.onUpdate(view)
	}
	return nil
}

func (w *Watcher) load(ctx context.Context, tournamentID string, trigger bool) (*domain.LeaderboardView, error) {
	if trigger {
		if err := w.fetcher.TriggerRefresh(ctx, tournamentID); err != nil {
			return nil, fmt.Errorf("triggering refresh: %w", err)
		}
	}
	view, err := w.fetcher.FetchLeaderboard(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("fetching leaderboard: %w", err)
	}
	standings.NormalizeView(view)
	return view, nil
}
