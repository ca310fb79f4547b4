package domain

import "time"

// TournamentStatus is driven by admin actions and the score feed
type TournamentStatus string

const (
	StatusSetup         TournamentStatus = "setup"
	StatusGolfersLoaded TournamentStatus = "golfers_loaded"
	StatusPricesSet     TournamentStatus = "prices_set"
	StatusCompleted     TournamentStatus = "completed"
)

// Tournament is one of the pool's tournament slots
type Tournament struct {
	ID              string           `json:"id"`
	Slot            int              `json:"slot"`
	Name            string           `json:"name"`
	ProviderEventID string           `json:"espn_event_id,omitempty"`
	Status          TournamentStatus `json:"status"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	Deadline        time.Time        `json:"deadline"`
	Golfers         []Golfer         `json:"golfers"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Locked reports whether roster mutation is forbidden at now.
// A tournament without a deadline never locks.
func (t *Tournament) Locked(now time.Time) bool {
	if t == nil || t.Deadline.IsZero() {
		return false
	}
	return now.After(t.Deadline)
}

// StandingsHidden reports whether team standings must be withheld at now.
func (t *Tournament) StandingsHidden(now time.Time) bool {
	if t == nil || t.Deadline.IsZero() {
		return false
	}
	return now.Before(t.Deadline)
}

// IsFinalized reports whether the feed has marked the tournament final.
func (t *Tournament) IsFinalized() bool {
	return t != nil && t.Status == StatusCompleted
}

// HasPrices reports whether at least one golfer is selectable.
func (t *Tournament) HasPrices() bool {
	if t == nil {
		return false
	}
	for _, g := range t.Golfers {
		if g.Priced() {
			return true
		}
	}
	return false
}

// Golfer looks up a catalog entry by name.
func (t *Tournament) Golfer(name string) (Golfer, bool) {
	for _, g := range t.Golfers {
		if g.Name == name {
			return g, true
		}
	}
	return Golfer{}, false
}

// TournamentSummary is the list view of a tournament
type TournamentSummary struct {
	ID          string           `json:"id"`
	Slot        int              `json:"slot"`
	Name        string           `json:"name"`
	Status      TournamentStatus `json:"status"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	Deadline    time.Time        `json:"deadline"`
	GolferCount int              `json:"golfer_count"`
	TeamCount   int              `json:"team_count"`
	HasPrices   bool             `json:"has_prices"`
}

// Summary builds the list view.
func (t *Tournament) Summary(teamCount int) TournamentSummary {
	return TournamentSummary{
		ID:          t.ID,
		Slot:        t.Slot,
		Name:        t.Name,
		Status:      t.Status,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Deadline:    t.Deadline,
		GolferCount: len(t.Golfers),
		TeamCount:   teamCount,
		HasPrices:   t.HasPrices(),
	}
}

// TournamentSetup is an admin update to a slot; nil fields are left unchanged
type TournamentSetup struct {
	Name            *string    `json:"name,omitempty"`
	ProviderEventID *string    `json:"espn_event_id,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	Golfers         []Golfer   `json:"golfers,omitempty"`
}

// TournamentDetail is a tournament with its entry count
type TournamentDetail struct {
	Tournament
	TeamCount int `json:"team_count"`
}
