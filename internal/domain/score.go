package domain

import (
	"strconv"
	"strings"
	"time"
)

// Round is one round line from the score feed
type Round struct {
	Number  int    `json:"round"`
	Score   string `json:"score"`
	Strokes *int   `json:"strokes,omitempty"`
}

// HasScore reports whether the round carries a displayable score.
func (r Round) HasScore() bool {
	s := strings.TrimSpace(r.Score)
	return s != "" && s != "-"
}

// ScoreSnapshot is one golfer's line from the live feed
type ScoreSnapshot struct {
	ProviderID string     `json:"espn_id,omitempty"`
	Name       string     `json:"name"`
	Position   string     `json:"position"`
	TotalScore string     `json:"total_score"`
	ScoreInt   *int       `json:"score_int"`
	Rounds     []Round    `json:"rounds"`
	Thru       string     `json:"thru"`
	IsActive   bool       `json:"is_active"`
	IsCut      bool       `json:"is_cut"`
	TeeTime    *time.Time `json:"tee_time,omitempty"`
	SortOrder  int        `json:"sort_order"`
}

// ParseScore converts a feed score token to strokes relative to par.
// "E" is even; "-" and "" are unknown.
func ParseScore(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	if strings.EqualFold(s, "E") {
		v := 0
		return &v
	}
	v, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return nil
	}
	return &v
}

// FormatScore renders strokes relative to par: 0 is "E", positives are signed.
func FormatScore(v int) string {
	switch {
	case v == 0:
		return "E"
	case v > 0:
		return "+" + strconv.Itoa(v)
	default:
		return strconv.Itoa(v)
	}
}

// RoundStateKind discriminates GolferRoundState
type RoundStateKind string

const (
	StateUpcoming   RoundStateKind = "upcoming"
	StateInProgress RoundStateKind = "in_progress"
	StateFinished   RoundStateKind = "finished"
	StateCut        RoundStateKind = "cut"
)

// GolferRoundState is the derived round status of a golfer. Only the fields
// for the given Kind are meaningful: Thru for InProgress, AfterRound for Cut,
// TeeTime for Upcoming. Label keeps a provider thru value that is shown
// verbatim, such as "0" or "12*".
type GolferRoundState struct {
	Kind       RoundStateKind `json:"kind"`
	Thru       int            `json:"thru,omitempty"`
	AfterRound int            `json:"after_round,omitempty"`
	TeeTime    *time.Time     `json:"tee_time,omitempty"`
	Label      string         `json:"label,omitempty"`
}
