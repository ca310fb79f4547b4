package poller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairway-fantasy/internal/config"
	"github.com/fairway-fantasy/internal/domain"
)

type fakeFetcher struct {
	mu       sync.Mutex
	views    map[string]*domain.LeaderboardView
	fetches  map[string]int
	triggers []string
	gates    map[string]chan struct{}
	entered  chan string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		views:   make(map[string]*domain.LeaderboardView),
		fetches: make(map[string]int),
		gates:   make(map[string]chan struct{}),
		entered: make(chan string, 10),
	}
}

// hold makes the next fetch of id wait until the returned channel is closed.
func (f *fakeFetcher) hold(id string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[id] = ch
	return ch
}

func (f *fakeFetcher) FetchLeaderboard(ctx context.Context, id string) (*domain.LeaderboardView, error) {
	f.mu.Lock()
	f.fetches[id]++
	gate := f.gates[id]
	delete(f.gates, id)
	f.mu.Unlock()

	if gate != nil {
		f.entered <- id
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	v := *f.views[id]
	return &v, nil
}

func (f *fakeFetcher) TriggerRefresh(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, id)
	return nil
}

func (f *fakeFetcher) count(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[id]
}

type recorder struct {
	n       atomic.Int32
	updates chan *domain.LeaderboardView
}

func newRecorder() *recorder {
	return &recorder{updates: make(chan *domain.LeaderboardView, 100)}
}

func (r *recorder) onUpdate(v *domain.LeaderboardView) {
	r.n.Add(1)
	select {
	case r.updates <- v:
	default:
	}
}

func (r *recorder) next(t *testing.T) *domain.LeaderboardView {
	t.Helper()
	select {
	case v := <-r.updates:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for leaderboard update")
		return nil
	}
}

func view(id string) *domain.LeaderboardView {
	return &domain.LeaderboardView{Tournament: domain.TournamentSummary{ID: id, Name: id}}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func upcoming(id string) *domain.Tournament {
	return &domain.Tournament{ID: id, StartDate: time.Now().Add(48 * time.Hour)}
}

func live(id string) *domain.Tournament {
	return &domain.Tournament{ID: id, StartDate: time.Now().Add(-time.Hour)}
}

func TestWatchOutsideWindowFetchesOnce(t *testing.T) {
	f := newFakeFetcher()
	f.views["masters"] = view("masters")
	rec := newRecorder()
	w := NewWatcher(f, Config{Interval: 5 * time.Millisecond, Fallback: 96 * time.Hour}, rec.onUpdate, testLogger())

	w.Watch(context.Background(), upcoming("masters"))
	v := rec.next(t)
	assert.Equal(t, "masters", v.Tournament.ID)
	assert.False(t, w.Polling())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, f.count("masters"))
	assert.Equal(t, "masters", w.Current().Tournament.ID)
	w.Stop()
}

func TestWatchPollsWhileLiveAndStops(t *testing.T) {
	f := newFakeFetcher()
	f.views["masters"] = view("masters")
	rec := newRecorder()
	w := NewWatcher(f, Config{Interval: 5 * time.Millisecond, Fallback: 96 * time.Hour}, rec.onUpdate, testLogger())

	w.Watch(context.Background(), live("masters"))
	for i := 0; i < 3; i++ {
		rec.next(t)
	}
	assert.True(t, w.Polling())

	w.Stop()
	assert.False(t, w.Polling())
	assert.Nil(t, w.Current(), "nothing is watched")

	after := f.count("masters")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, f.count("masters"), "no fetches after stop")
}

func TestFinalizedViewEndsPolling(t *testing.T) {
	f := newFakeFetcher()
	final := view("masters")
	final.IsFinalized = true
	f.views["masters"] = final
	rec := newRecorder()
	w := NewWatcher(f, Config{Interval: 5 * time.Millisecond, Fallback: 96 * time.Hour}, rec.onUpdate, testLogger())

	w.Watch(context.Background(), live("masters"))
	rec.next(t)

	time.Sleep(30 * time.Millisecond)
	assert.False(t, w.Polling())
	assert.Equal(t, 1, f.count("masters"))
	w.Stop()
}

func TestSwitchCancelsPreviousLoop(t *testing.T) {
	f := newFakeFetcher()
	f.views["masters"] = view("masters")
	f.views["pga"] = view("pga")
	rec := newRecorder()
	w := NewWatcher(f, Config{Interval: 5 * time.Millisecond, Fallback: 96 * time.Hour}, rec.onUpdate, testLogger())

	w.Watch(context.Background(), live("masters"))
	rec.next(t)

	w.Watch(context.Background(), upcoming("pga"))
	masters := f.count("masters")

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, masters, f.count("masters"))
	require.Eventually(t, func() bool {
		c := w.Current()
		return c != nil && c.Tournament.ID == "pga"
	}, time.Second, 5*time.Millisecond)
	w.Stop()
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	f := newFakeFetcher()
	f.views["masters"] = view("masters")
	f.views["pga"] = view("pga")
	rec := newRecorder()
	w := NewWatcher(f, Config{Interval: time.Hour, Fallback: 96 * time.Hour}, rec.onUpdate, testLogger())

	w.Watch(context.Background(), upcoming("masters"))
	rec.next(t)

	gate := f.hold("masters")
	refreshed := make(chan error, 1)
	go func() { refreshed <- w.Refresh(context.Background()) }()
	<-f.entered

	w.Watch(context.Background(), upcoming("pga"))
	v := rec.next(t)
	assert.Equal(t, "pga", v.Tournament.ID)

	close(gate)
	require.NoError(t, <-refreshed)
	assert.Equal(t, "pga", w.Current().Tournament.ID)
	assert.Equal(t, int32(2), rec.n.Load())
	w.Stop()
}

func TestRefreshDroppedWhileBusy(t *testing.T) {
	f := newFakeFetcher()
	f.views["masters"] = view("masters")
	rec := newRecorder()
	w := NewWatcher(f, Config{Interval: time.Hour, Fallback: 96 * time.Hour}, rec.onUpdate, testLogger())

	gate := f.hold("masters")
	w.Watch(context.Background(), upcoming("masters"))
	<-f.entered

	err := w.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrRefreshInFlight)

	close(gate)
	rec.next(t)

	require.NoError(t, w.Refresh(context.Background()))
	assert.Equal(t, []string{"masters"}, f.triggers)
	assert.Equal(t, 2, f.count("masters"))
	w.Stop()
}

func TestRefreshWithoutTournament(t *testing.T) {
	w := NewWatcher(newFakeFetcher(), Config{Interval: time.Minute}, nil, testLogger())
	assert.ErrorIs(t, w.Refresh(context.Background()), domain.ErrInvalidRequest)
	w.Stop()
}

func TestConfigFromPool(t *testing.T) {
	pool := config.DefaultConfig().Pool
	pool.PollInterval = 45 * time.Second

	cfg := ConfigFrom(&pool)
	assert.Equal(t, 45*time.Second, cfg.Interval)
	assert.Equal(t, 4*24*time.Hour, cfg.Fallback)
}
