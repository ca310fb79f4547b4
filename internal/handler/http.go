package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/provider"
	"github.com/fairway-fantasy/internal/service"
	"github.com/fairway-fantasy/internal/websocket"
)

// Error codes carried in APIResponse.Code
const (
	CodeValidation      = "validation"
	CodeNotFound        = "not_found"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeLocked          = "locked"
	CodeConflict        = "conflict"
	CodeBusy            = "busy"
	CodeRateLimited     = "rate_limited"
	CodeDataUnavailable = "data_unavailable"
	CodeUnavailable     = "unavailable"
	CodeInternal        = "internal"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the business logic the API exposes
type Services struct {
	Users       *service.UserService
	Teams       *service.TeamService
	Tournaments *service.TournamentService
	Leaderboard *service.LeaderboardService
	History     *service.HistoryService
}

// Handler provides HTTP handlers for the pool API
type Handler struct {
	users       *service.UserService
	teams       *service.TeamService
	tournaments *service.TournamentService
	leaderboard *service.LeaderboardService
	history     *service.HistoryService
	hub         *websocket.Hub
	deps        map[string]Pinger
	logger      *slog.Logger
}

// NewHandler creates a new HTTP handler. deps are checked by /ready.
func NewHandler(svc Services, hub *websocket.Hub, deps map[string]Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		users:       svc.Users,
		teams:       svc.Teams,
		tournaments: svc.Tournaments,
		leaderboard: svc.Leaderboard,
		history:     svc.History,
		hub:         hub,
		deps:        deps,
		logger:      logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Get("/user/{userID}", h.GetUser)
			r.Put("/user/{userID}", h.UpdateProfile)
			r.Put("/profile/{userID}", h.UpdateProfile)
		})

		r.Get("/tournaments", h.ListTournaments)
		r.Get("/tournaments/{tournamentID}", h.GetTournament)

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", h.SaveTeam)
			r.Get("/user/{userID}", h.ListUserTeams)
			r.Get("/tournament/{tournamentID}", h.ListTournamentTeams)
			r.Delete("/{teamID}", h.DeleteTeam)
		})

		r.Get("/leaderboard/{tournamentID}", h.GetLeaderboard)
		r.Get("/leaderboard/{tournamentID}/teams/{teamID}", h.GetTeamRank)
		r.Post("/scores/refresh/{tournamentID}", h.RefreshScores)
		r.Get("/history", h.GetHistory)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/tournaments", h.AdminListSlots)
			r.Get("/tournaments/{slot}", h.AdminGetSlot)
			r.Put("/tournaments/{slot}", h.AdminSetupSlot)
			r.Delete("/tournaments/{slot}", h.AdminResetSlot)
			r.Post("/tournaments/{slot}/prices", h.AdminDefaultPrices)

			// {id} is a tournament for GET and a team otherwise
			r.Get("/teams/{id}", h.AdminListTeams)
			r.Put("/teams/{id}", h.AdminUpdateTeam)
			r.Delete("/teams/{id}", h.AdminDeleteTeam)
			r.Patch("/teams/{id}/paid", h.AdminSetPaid)
		})

		r.Get("/ws/stats", h.GetWebSocketStats)
	})

	return r
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data any) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, code string, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
		Code:    code,
	})
}

// fail maps a service error to its HTTP status. Unexpected errors are
// logged and hidden behind ErrInternalError.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case domain.IsValidation(err):
		h.writeError(w, http.StatusBadRequest, CodeValidation, err)
	case domain.IsNotFoundError(err):
		h.writeError(w, http.StatusNotFound, CodeNotFound, err)
	case errors.Is(err, domain.ErrForbidden):
		h.writeError(w, http.StatusForbidden, CodeForbidden, err)
	case domain.IsLocked(err):
		h.writeError(w, http.StatusLocked, CodeLocked, err)
	case errors.Is(err, domain.ErrUserExists):
		h.writeError(w, http.StatusConflict, CodeConflict, err)
	case errors.Is(err, domain.ErrSaveInFlight), errors.Is(err, domain.ErrRefreshInFlight):
		h.writeError(w, http.StatusConflict, CodeBusy, err)
	case errors.Is(err, domain.ErrRateLimited):
		h.writeError(w, http.StatusTooManyRequests, CodeRateLimited, err)
	case errors.Is(err, domain.ErrDataUnavailable):
		h.writeError(w, http.StatusNotFound, CodeDataUnavailable, err)
	case errors.Is(err, provider.ErrUnavailable):
		h.writeError(w, http.StatusServiceUnavailable, CodeUnavailable, err)
	default:
		h.logger.Error("request failed",
			"op", op,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		h.writeError(w, http.StatusInternalServerError, CodeInternal, domain.ErrInternalError)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, CodeValidation, domain.ErrInvalidRequest)
		return false
	}
	return true
}

func slotParam(r *http.Request) (int, error) {
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		return 0, domain.Invalid("slot must be a number")
	}
	return slot, nil
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]int{"total_connections": h.hub.Connections()}
	if id := r.URL.Query().Get("tournament_id"); id != "" {
		stats["watchers"] = h.hub.Watchers(id)
	}
	h.writeSuccess(w, stats)
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck pings every backing store
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", "dependency", name, "error", err)
			h.writeJSON(w, http.StatusServiceUnavailable, APIResponse{
				Success: false,
				Error:   name + " unavailable",
				Code:    CodeUnavailable,
			})
			return
		}
	}
	h.writeSuccess(w, map[string]string{"status": "ready"})
}
