package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fairway-fantasy/internal/domain"
)

type adminTeamUpdate struct {
	Golfers []domain.Pick `json:"golfers"`
}

func adminID(r *http.Request) string {
	return r.URL.Query().Get("user_id")
}

// AdminListSlots returns every tournament slot
func (h *Handler) AdminListSlots(w http.ResponseWriter, r *http.Request) {
	list, err := h.tournaments.ListSlots(r.Context(), adminID(r))
	if err != nil {
		h.fail(w, r, "list slots", err)
		return
	}
	h.writeSuccess(w, list)
}

// AdminGetSlot returns the tournament in a slot
func (h *Handler) AdminGetSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		h.fail(w, r, "get slot", err)
		return
	}
	t, err := h.tournaments.GetBySlot(r.Context(), adminID(r), slot)
	if err != nil {
		h.fail(w, r, "get slot", err)
		return
	}
	h.writeSuccess(w, t)
}

// AdminSetupSlot updates or creates the tournament in a slot
func (h *Handler) AdminSetupSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		h.fail(w, r, "setup slot", err)
		return
	}
	var setup domain.TournamentSetup
	if !h.decode(w, r, &setup) {
		return
	}

	t, err := h.tournaments.SetupSlot(r.Context(), adminID(r), slot, setup)
	if err != nil {
		h.fail(w, r, "setup slot", err)
		return
	}
	h.writeSuccess(w, t)
}

// AdminDefaultPrices prices the field from the odds
func (h *Handler) AdminDefaultPrices(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		h.fail(w, r, "default prices", err)
		return
	}
	t, err := h.tournaments.SetDefaultPrices(r.Context(), adminID(r), slot)
	if err != nil {
		h.fail(w, r, "default prices", err)
		return
	}
	h.writeSuccess(w, t)
}

// AdminResetSlot clears a slot completely
func (h *Handler) AdminResetSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		h.fail(w, r, "reset slot", err)
		return
	}
	t, err := h.tournaments.ResetSlot(r.Context(), adminID(r), slot)
	if err != nil {
		h.fail(w, r, "reset slot", err)
		return
	}
	h.writeSuccess(w, t)
}

// AdminListTeams returns a tournament with all of its teams
func (h *Handler) AdminListTeams(w http.ResponseWriter, r *http.Request) {
	t, teams, err := h.teams.AdminListTeams(r.Context(), adminID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "admin list teams", err)
		return
	}
	h.writeSuccess(w, map[string]any{
		"tournament": t,
		"teams":      teams,
	})
}

// AdminUpdateTeam replaces a team's golfers regardless of the deadline
func (h *Handler) AdminUpdateTeam(w http.ResponseWriter, r *http.Request) {
	var upd adminTeamUpdate
	if !h.decode(w, r, &upd) {
		return
	}

	team, err := h.teams.AdminUpdateTeam(r.Context(), adminID(r), chi.URLParam(r, "id"), upd.Golfers)
	if err != nil {
		h.fail(w, r, "admin update team", err)
		return
	}
	h.writeSuccess(w, team)
}

// AdminDeleteTeam removes any team
func (h *Handler) AdminDeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.teams.AdminDeleteTeam(r.Context(), adminID(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "admin delete team", err)
		return
	}
	h.writeSuccess(w, map[string]string{"status": "deleted"})
}

// AdminSetPaid records a team's entry fee status
func (h *Handler) AdminSetPaid(w http.ResponseWriter, r *http.Request) {
	paid, err := strconv.ParseBool(r.URL.Query().Get("paid"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, CodeValidation, domain.ErrInvalidRequest)
		return
	}

	teamID := chi.URLParam(r, "id")
	if err := h.teams.SetPaid(r.Context(), adminID(r), teamID, paid); err != nil {
		h.fail(w, r, "set paid", err)
		return
	}
	h.writeSuccess(w, map[string]any{"team_id": teamID, "paid": paid})
}
