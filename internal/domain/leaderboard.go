package domain

import "time"

// GolferStanding is a rostered golfer merged with its live line and points
type GolferStanding struct {
	Pick
	Position      string           `json:"position"`
	TotalScore    string           `json:"total_score"`
	ScoreInt      *int             `json:"score_int"`
	Rounds        []Round          `json:"rounds"`
	RoundCells    [4]string        `json:"round_cells"`
	Thru          string           `json:"thru"`
	State         GolferRoundState `json:"state"`
	IsActive      bool             `json:"is_active"`
	IsCut         bool             `json:"is_cut"`
	StrokesBehind int              `json:"strokes_behind"`
	PlacePoints   float64          `json:"place_points"`
	StrokePoints  float64          `json:"stroke_points"`
	TotalPoints   float64          `json:"total_points"`
	SortOrder     int              `json:"sort_order"`
}

// TeamStanding is a ranked fantasy team
type TeamStanding struct {
	TeamID      string           `json:"team_id"`
	UserID      string           `json:"user_id"`
	UserName    string           `json:"user_name"`
	TeamNumber  int              `json:"team_number"`
	TeamName    string           `json:"team_name"`
	Rank        int              `json:"rank"`
	TotalPoints float64          `json:"total_points"`
	Paid        bool             `json:"paid"`
	Golfers     []GolferStanding `json:"golfers"`
}

// TournamentEntry is a row of the tournament-wide top list
type TournamentEntry struct {
	ScoreSnapshot
	Position string `json:"position"`
}

// LeaderboardView is everything the standings page renders
type LeaderboardView struct {
	Tournament          TournamentSummary `json:"tournament"`
	TeamStandings       []TeamStanding    `json:"team_standings"`
	TournamentStandings []TournamentEntry `json:"tournament_standings"`
	Champions           []TeamStanding    `json:"champions,omitempty"`
	StandingsLocked     bool              `json:"standings_locked"`
	IsFinalized         bool              `json:"is_finalized"`
	LastUpdated         time.Time         `json:"last_updated"`
}

// ScoreFeed is a full field update for one tournament
type ScoreFeed struct {
	TournamentID string          `json:"tournament_id"`
	Scores       []ScoreSnapshot `json:"scores"`
	Final        bool            `json:"final"`
	Timestamp    time.Time       `json:"timestamp"`
}
