package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fairway-fantasy/internal/config"
	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/standings"
)

// TournamentLister lists every tournament slot
type TournamentLister interface {
	ListTournaments(ctx context.Context) ([]domain.Tournament, error)
}

// Standings rebuilds and refreshes leaderboards
type Standings interface {
	RefreshIfStale(ctx context.Context, t *domain.Tournament) bool
	Rebuild(ctx context.Context, tournamentID string) (*domain.LeaderboardView, error)
}

// SyncWorker keeps live tournaments fresh: on each tick it asks the provider
// for scores when the cache is stale and pushes rebuilt standings to watchers.
type SyncWorker struct {
	tournaments TournamentLister
	standings   Standings
	config      *config.SyncConfig
	fallback    time.Duration
	now         func() time.Time
	logger      *slog.Logger
	stopCh      chan struct{}
	doneCh      chan struct{}
	mu          sync.Mutex
	running     bool
}

// NewSyncWorker creates a new sync worker. fallback bounds the poll window of
// tournaments without an end date.
func NewSyncWorker(
	tournaments TournamentLister,
	standings Standings,
	cfg *config.SyncConfig,
	fallback time.Duration,
	logger *slog.Logger,
) *SyncWorker {
	return &SyncWorker{
		tournaments: tournaments,
		standings:   standings,
		config:      cfg,
		fallback:    fallback,
		now:         time.Now,
		logger:      logger,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// SetClock overrides the time source.
func (w *SyncWorker) SetClock(now func() time.Time) {
	w.now = now
}

// Start begins the background sync process
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("sync worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background sync process
func (w *SyncWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("sync worker stopped")
	return nil
}

// run is the main worker loop
func (w *SyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.syncAll(ctx)
		}
	}
}

// syncAll refreshes and rebroadcasts every tournament inside its poll window
func (w *SyncWorker) syncAll(ctx context.Context) {
	startTime := time.Now()

	list, err := w.tournaments.ListTournaments(ctx)
	if err != nil {
		w.logger.Error("failed to list tournaments for sync", "error", err)
		return
	}

	now := w.now()
	syncedCount := 0
	refreshCount := 0
	errorCount := 0

	for i := range list {
		t := &list[i]
		if !standings.PollWindow(t, now, w.fallback) {
			continue
		}
		if w.standings.RefreshIfStale(ctx, t) {
			refreshCount++
		}
		if _, err := w.standings.Rebuild(ctx, t.ID); err != nil {
			w.logger.Error("failed to rebuild standings",
				"tournament_id", t.ID,
				"error", err,
			)
			errorCount++
			continue
		}
		syncedCount++
	}

	w.logger.Debug("sync cycle completed",
		"duration", time.Since(startTime),
		"synced", syncedCount,
		"refreshed", refreshCount,
		"errors", errorCount,
	)
}

// Warm rebuilds every tournament that has a field so cached team totals are
// back in place after a restart.
func (w *SyncWorker) Warm(ctx context.Context) error {
	w.logger.Info("warming standings cache")

	list, err := w.tournaments.ListTournaments(ctx)
	if err != nil {
		return err
	}

	warmed := 0
	for _, t := range list {
		if t.Status == domain.StatusSetup {
			continue
		}
		if _, err := w.standings.Rebuild(ctx, t.ID); err != nil {
			w.logger.Warn("failed to warm standings",
				"tournament_id", t.ID,
				"error", err,
			)
			// Continue with other tournaments
			continue
		}
		warmed++
	}

	w.logger.Info("standings cache warmed", "count", warmed)
	return nil
}

// IsRunning returns whether the worker is currently running
func (w *SyncWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunOnce runs a single sync cycle (useful for manual triggers)
func (w *SyncWorker) RunOnce(ctx context.Context) {
	w.syncAll(ctx)
}
