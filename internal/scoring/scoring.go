// Package scoring turns a raw field of score lines into fantasy points.
//
// Non-cut golfers with a known score are ranked by strokes relative to par.
// Tied golfers share a "T" position and split the place points of the
// positions they occupy. Stroke points depend on the distance to the leader.
package scoring

import (
	"sort"
	"strconv"
	"strings"

	"github.com/fairway-fantasy/internal/domain"
)

// MinimumPoints is the floor for any golfer still in the field with a score.
const MinimumPoints = 5.0

var placePoints = map[int]float64{
	1: 300, 2: 200, 3: 175, 4: 150, 5: 125, 6: 100, 7: 90, 8: 80, 9: 70, 10: 60,
	11: 55, 12: 54, 13: 53, 14: 52, 15: 51,
}

var strokePoints = map[int]float64{0: 100, 1: 85, 2: 80, 3: 75, 4: 70, 5: 65}

// PlacePoints returns the points for finishing at an exact position.
func PlacePoints(pos int) float64 {
	if pos <= 0 {
		return 0
	}
	if p, ok := placePoints[pos]; ok {
		return p
	}
	return max(0, 51-float64(pos-15))
}

// StrokePoints returns the points for finishing sb strokes behind the leader.
func StrokePoints(sb int) float64 {
	if sb < 0 {
		return 0
	}
	if p, ok := strokePoints[sb]; ok {
		return p
	}
	return max(0, 65-float64(sb-5)*5)
}

// ParsePosition reads a feed position like "T3" or "12". Non-finishing
// tokens such as CUT, WD and DQ yield 0.
func ParsePosition(s string) int {
	s = strings.TrimPrefix(strings.TrimSpace(strings.ToUpper(s)), "T")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Result is the scoring outcome for one golfer
type Result struct {
	Position      string  `json:"position"`
	PlacePoints   float64 `json:"place_points"`
	StrokePoints  float64 `json:"stroke_points"`
	StrokesBehind int     `json:"strokes_behind"`
	TotalPoints   float64 `json:"total_points"`
}

// Table holds the results for a field, addressable by name or provider id
type Table struct {
	byName map[string]Result
	byID   map[string]Result
}

// Compute scores the field.
func Compute(scores []domain.ScoreSnapshot) *Table {
	t := &Table{
		byName: make(map[string]Result),
		byID:   make(map[string]Result),
	}

	active := Ranked(scores)
	if len(active) == 0 {
		return t
	}
	leader := *active[0].ScoreInt

	pos := 1
	for i := 0; i < len(active); {
		score := *active[i].ScoreInt
		j := i
		for j < len(active) && *active[j].ScoreInt == score {
			j++
		}
		tied := j - i

		var place float64
		for p := pos; p < pos+tied; p++ {
			place += PlacePoints(p)
		}
		place /= float64(tied)

		sb := score - leader
		stroke := StrokePoints(sb)

		label := strconv.Itoa(pos)
		if tied > 1 {
			label = "T" + label
		}

		res := Result{
			Position:      label,
			PlacePoints:   place,
			StrokePoints:  stroke,
			StrokesBehind: sb,
			TotalPoints:   place + stroke,
		}
		for k := i; k < j; k++ {
			t.byName[key(active[k].Name)] = res
			if id := active[k].ProviderID; id != "" {
				t.byID[id] = res
			}
		}

		pos += tied
		i = j
	}
	return t
}

// Lookup finds the result for a score line by name, then provider id.
func (t *Table) Lookup(name, providerID string) (Result, bool) {
	if t == nil {
		return Result{}, false
	}
	if r, ok := t.byName[key(name)]; ok {
		return r, true
	}
	if providerID != "" {
		r, ok := t.byID[providerID]
		return r, ok
	}
	return Result{}, false
}

// Points returns the fantasy points credited to a golfer line: zero when cut
// or unscored, otherwise the table total with MinimumPoints as floor.
func (t *Table) Points(s domain.ScoreSnapshot) (Result, bool) {
	if s.IsCut {
		return Result{}, false
	}
	r, ok := t.Lookup(s.Name, s.ProviderID)
	if !ok {
		return Result{}, false
	}
	if r.TotalPoints < MinimumPoints {
		r.TotalPoints = MinimumPoints
	}
	return r, true
}

// Ranked returns the non-cut golfers with a known score, lowest score first.
// Feed order is kept among equal scores.
func Ranked(scores []domain.ScoreSnapshot) []domain.ScoreSnapshot {
	out := make([]domain.ScoreSnapshot, 0, len(scores))
	for _, s := range scores {
		if !s.IsCut && s.ScoreInt != nil {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].ScoreInt < *out[j].ScoreInt
	})
	return out
}

// DetectCuts marks golfers cut by round count: once any golfer has started a
// third round, golfers with exactly two rounds did not make the cut.
func DetectCuts(scores []domain.ScoreSnapshot) []domain.ScoreSnapshot {
	maxRounds := 0
	for _, s := range scores {
		maxRounds = max(maxRounds, len(s.Rounds))
	}
	if maxRounds < 3 {
		return scores
	}
	out := make([]domain.ScoreSnapshot, len(scores))
	copy(out, scores)
	for i := range out {
		if len(out[i].Rounds) == 2 {
			out[i].IsCut = true
		}
	}
	return out
}

// Leader returns the best non-cut score in the field.
func Leader(scores []domain.ScoreSnapshot) (int, bool) {
	ranked := Ranked(scores)
	if len(ranked) == 0 {
		return 0, false
	}
	return *ranked[0].ScoreInt, true
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
