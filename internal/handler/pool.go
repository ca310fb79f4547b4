package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairway-fantasy/internal/domain"
)

var errInvalidPIN = errors.New("invalid pin, no account found")

type loginRequest struct {
	PIN string `json:"pin"`
}

// Register creates an account
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.users.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: u})
}

// Login signs a user in by PIN
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.users.Login(r.Context(), req.PIN)
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusUnauthorized, CodeUnauthorized, errInvalidPIN)
			return
		}
		h.fail(w, r, "login", err)
		return
	}
	h.writeSuccess(w, u)
}

// GetUser returns a user profile
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, r, "get user", err)
		return
	}
	h.writeSuccess(w, u)
}

// UpdateProfile changes a user's name, email or PIN
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd domain.ProfileUpdate
	if !h.decode(w, r, &upd) {
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), chi.URLParam(r, "userID"), upd)
	if err != nil {
		h.fail(w, r, "update profile", err)
		return
	}
	h.writeSuccess(w, u)
}

// ListTournaments returns every tournament slot with team counts
func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	list, err := h.tournaments.List(r.Context())
	if err != nil {
		h.fail(w, r, "list tournaments", err)
		return
	}
	h.writeSuccess(w, list)
}

// GetTournament returns a tournament with its golfer catalog
func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	t, err := h.tournaments.Get(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		h.fail(w, r, "get tournament", err)
		return
	}
	h.writeSuccess(w, t)
}

// ListUserTeams returns a user's teams across tournaments
func (h *Handler) ListUserTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.ListUserTeams(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, r, "list user teams", err)
		return
	}
	h.writeSuccess(w, teams)
}

// ListTournamentTeams returns the teams entered in a tournament
func (h *Handler) ListTournamentTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.ListTournamentTeams(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		h.fail(w, r, "list tournament teams", err)
		return
	}
	h.writeSuccess(w, teams)
}

// SaveTeam creates or replaces one of the user's teams
func (h *Handler) SaveTeam(w http.ResponseWriter, r *http.Request) {
	var req domain.TeamRequest
	if !h.decode(w, r, &req) {
		return
	}

	team, err := h.teams.SaveTeam(r.Context(), req)
	if err != nil {
		h.fail(w, r, "save team", err)
		return
	}
	h.writeSuccess(w, team)
}

// DeleteTeam removes one of the user's teams
func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, CodeValidation, domain.ErrInvalidRequest)
		return
	}

	if err := h.teams.DeleteTeam(r.Context(), chi.URLParam(r, "teamID"), userID); err != nil {
		h.fail(w, r, "delete team", err)
		return
	}
	h.writeSuccess(w, map[string]string{"status": "deleted"})
}

// GetLeaderboard returns the standings of a tournament
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.leaderboard.GetLeaderboard(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		h.fail(w, r, "get leaderboard", err)
		return
	}
	h.writeSuccess(w, view)
}

// GetTeamRank returns a team's current rank and points
func (h *Handler) GetTeamRank(w http.ResponseWriter, r *http.Request) {
	rank, points, err := h.leaderboard.TeamRank(r.Context(),
		chi.URLParam(r, "tournamentID"), chi.URLParam(r, "teamID"))
	if err != nil {
		h.fail(w, r, "get team rank", err)
		return
	}
	h.writeSuccess(w, map[string]any{
		"team_id":      chi.URLParam(r, "teamID"),
		"rank":         rank,
		"total_points": points,
	})
}

// RefreshScores asks the provider for fresh scores (admin only)
func (h *Handler) RefreshScores(w http.ResponseWriter, r *http.Request) {
	view, err := h.leaderboard.TriggerRefresh(r.Context(),
		chi.URLParam(r, "tournamentID"), r.URL.Query().Get("user_id"))
	if err != nil {
		h.fail(w, r, "refresh scores", err)
		return
	}
	h.writeSuccess(w, view)
}

// GetHistory returns the pool's champions record
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, http.StatusNotFound, CodeNotFound, errors.New("history is not available"))
		return
	}
	hist, err := h.history.GetHistory(r.Context())
	if err != nil {
		h.fail(w, r, "get history", err)
		return
	}
	h.writeSuccess(w, hist)
}
