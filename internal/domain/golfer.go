package domain

import "strings"

const (
	// Budget is the salary cap for one roster.
	Budget = 1000000
	// RosterSize is the number of golfers on a complete team.
	RosterSize = 5
	// MaxTeamsPerUser is the number of teams a user may enter per tournament.
	MaxTeamsPerUser = 2
)

// Golfer is a catalog entry scoped to one tournament
type Golfer struct {
	ProviderID   string   `json:"espn_id,omitempty"`
	Name         string   `json:"name"`
	ShortName    string   `json:"short_name,omitempty"`
	Price        *int     `json:"price"`
	WorldRanking int      `json:"world_ranking"`
	Odds         *float64 `json:"odds,omitempty"`
}

// Priced reports whether the golfer can be selected.
func (g Golfer) Priced() bool {
	return g.Price != nil && *g.Price > 0
}

// Snapshot captures the golfer as a roster pick. The pick does not follow
// later catalog changes.
func (g Golfer) Snapshot() Pick {
	p := Pick{
		ProviderID:   g.ProviderID,
		Name:         g.Name,
		WorldRanking: g.WorldRanking,
	}
	if g.Price != nil {
		p.Price = *g.Price
	}
	return p
}

// Pick is a golfer frozen onto a roster at add time
type Pick struct {
	ProviderID   string `json:"espn_id,omitempty"`
	Name         string `json:"name"`
	Price        int    `json:"price"`
	WorldRanking int    `json:"world_ranking"`
}

// SameGolfer matches picks by name, case-insensitively.
func (p Pick) SameGolfer(name string) bool {
	return strings.EqualFold(p.Name, name)
}

// Slots is the fixed five-position roster. A nil entry is an empty slot.
type Slots [RosterSize]*Pick

// Filled returns the occupied slots in order.
func (s Slots) Filled() []Pick {
	out := make([]Pick, 0, RosterSize)
	for _, p := range s {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// Count returns the number of occupied slots.
func (s Slots) Count() int {
	n := 0
	for _, p := range s {
		if p != nil {
			n++
		}
	}
	return n
}

// Cost sums the price of the occupied slots.
func (s Slots) Cost() int {
	total := 0
	for _, p := range s {
		if p != nil {
			total += p.Price
		}
	}
	return total
}

// Names returns the golfer name at each position, "" for empty slots.
func (s Slots) Names() [RosterSize]string {
	var names [RosterSize]string
	for i, p := range s {
		if p != nil {
			names[i] = p.Name
		}
	}
	return names
}

// Contains reports whether a golfer with the given name is on the roster.
func (s Slots) Contains(name string) bool {
	for _, p := range s {
		if p != nil && p.SameGolfer(name) {
			return true
		}
	}
	return false
}

// SlotsFrom packs picks into a roster from the top.
func SlotsFrom(picks []Pick) Slots {
	var s Slots
	for i := 0; i < len(picks) && i < RosterSize; i++ {
		p := picks[i]
		s[i] = &p
	}
	return s
}

// TotalCost sums pick prices.
func TotalCost(picks []Pick) int {
	total := 0
	for _, p := range picks {
		total += p.Price
	}
	return total
}

// ValidateRoster checks a complete roster: exactly RosterSize distinct golfers
// within Budget.
func ValidateRoster(picks []Pick) error {
	if len(picks) != RosterSize {
		return Invalid("must select exactly %d golfers", RosterSize)
	}
	seen := make(map[string]struct{}, len(picks))
	for _, p := range picks {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if key == "" {
			return Invalid("golfer name is required")
		}
		if _, dup := seen[key]; dup {
			return Invalid("cannot select the same golfer twice on one team")
		}
		seen[key] = struct{}{}
	}
	if cost := TotalCost(picks); cost > Budget {
		return Invalid("over budget by %d", cost-Budget)
	}
	return nil
}
