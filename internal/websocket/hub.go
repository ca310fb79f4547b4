package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/fairway-fantasy/internal/domain"
)

// Message types
const (
	MessageTypeStandings   = "standings_update"
	MessageTypeFinalized   = "tournament_finalized"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeSubscribed  = "subscribed"
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
	MessageTypeError       = "error"
)

// Message represents a WebSocket message
type Message struct {
	Type         string    `json:"type"`
	TournamentID string    `json:"tournament_id,omitempty"`
	Data         any       `json:"data,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

type subscription struct {
	client       *Client
	tournamentID string
	add          bool
}

// Hub fans standings out to the clients watching each tournament
type Hub struct {
	// watchers per tournament ID
	watchers map[string]map[*Client]struct{}
	clients  map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	subs       chan subscription
	broadcast  chan *Message

	mu     sync.RWMutex
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		watchers:   make(map[string]map[*Client]struct{}),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subs:       make(chan subscription, 64),
		broadcast:  make(chan *Message, 256),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")
	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info("WebSocket hub stopping")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("client registered", "client_id", c.id)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				for id := range h.watchers {
					h.drop(c, id)
				}
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", "client_id", c.id)

		case s := <-h.subs:
			h.mu.Lock()
			if s.add {
				if h.watchers[s.tournamentID] == nil {
					h.watchers[s.tournamentID] = make(map[*Client]struct{})
				}
				h.watchers[s.tournamentID][s.client] = struct{}{}
			} else {
				h.drop(s.client, s.tournamentID)
			}
			h.mu.Unlock()
			h.logger.Debug("subscription changed",
				"client_id", s.client.id,
				"tournament_id", s.tournamentID,
				"subscribed", s.add,
			)

		case m := <-h.broadcast:
			h.deliver(m)
		}
	}
}

// drop must be called with mu held
func (h *Hub) drop(c *Client, tournamentID string) {
	set, ok := h.watchers[tournamentID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.watchers, tournamentID)
	}
}

// Stop stops the hub
func (h *Hub) Stop() {
	h.cancel()
}

func (h *Hub) deliver(m *Message) {
	data, err := json.Marshal(m)
	if err != nil {
		h.logger.Error("failed to marshal message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.watchers[m.TournamentID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("client buffer full, skipping", "client_id", c.id)
		}
	}
}

func (h *Hub) enqueue(m *Message) {
	select {
	case h.broadcast <- m:
	default:
		h.logger.Warn("broadcast channel full, dropping message", "tournament_id", m.TournamentID)
	}
}

// BroadcastStandings pushes a leaderboard view to the tournament's watchers.
// The view must already have reveal rules applied.
func (h *Hub) BroadcastStandings(tournamentID string, view *domain.LeaderboardView) {
	h.enqueue(&Message{
		Type:         MessageTypeStandings,
		TournamentID: tournamentID,
		Data:         view,
		Timestamp:    time.Now(),
	})
}

// BroadcastFinalized announces the champions of a completed tournament.
func (h *Hub) BroadcastFinalized(tournamentID string, champions []domain.TeamStanding) {
	h.enqueue(&Message{
		Type:         MessageTypeFinalized,
		TournamentID: tournamentID,
		Data:         champions,
		Timestamp:    time.Now(),
	})
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Subscribe starts sending a tournament's standings to a client
func (h *Hub) Subscribe(c *Client, tournamentID string) {
	h.subs <- subscription{client: c, tournamentID: tournamentID, add: true}
}

// Unsubscribe stops sending a tournament's standings to a client
func (h *Hub) Unsubscribe(c *Client, tournamentID string) {
	h.subs <- subscription{client: c, tournamentID: tournamentID}
}

// Watchers returns the number of clients watching a tournament
func (h *Hub) Watchers(tournamentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[tournamentID])
}

// Connections returns the total number of connected clients
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
