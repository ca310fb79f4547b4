package domain

// PastTournament is the podium of one pool tournament. Winners holds member
// names in finishing order, first place first.
type PastTournament struct {
	Name    string   `json:"name" yaml:"name"`
	Winners []string `json:"winners" yaml:"winners"`
}

// HistoryYear groups a season's results, most recent tournament first
type HistoryYear struct {
	Year        int              `json:"year" yaml:"year"`
	Tournaments []PastTournament `json:"tournaments" yaml:"tournaments"`
}

// RecordHolder is a member's count of championships or podium finishes
type RecordHolder struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	RecentYear int    `json:"recent_year"`
}

// PoolHistory is the champions record of the pool
type PoolHistory struct {
	Years         []HistoryYear  `json:"years"`
	Championships []RecordHolder `json:"championships"`
	TopThree      []RecordHolder `json:"top_three"`
}
