// Package standings merges rosters with the live field into a ranked view.
package standings

import (
	"sort"
	"strings"
	"time"

	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/scoring"
)

// Options tune the view built by Build
type Options struct {
	TopN      int
	Champions int
	Location  *time.Location
}

// Aggregate scores every team against the field and ranks them by total
// points. Teams with equal totals keep their input order.
func Aggregate(teams []domain.Team, scores []domain.ScoreSnapshot, table *scoring.Table, loc *time.Location) []domain.TeamStanding {
	out := make([]domain.TeamStanding, 0, len(teams))
	for i := range teams {
		out = append(out, scoreTeam(&teams[i], scores, table, loc))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalPoints > out[j].TotalPoints
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func scoreTeam(team *domain.Team, scores []domain.ScoreSnapshot, table *scoring.Table, loc *time.Location) domain.TeamStanding {
	st := domain.TeamStanding{
		TeamID:     team.ID,
		UserID:     team.UserID,
		UserName:   team.UserName,
		TeamNumber: team.TeamNumber,
		TeamName:   team.DisplayName(),
		Paid:       team.Paid,
		Golfers:    make([]domain.GolferStanding, 0, len(team.Golfers)),
	}

	for _, pick := range team.Golfers {
		g := scoreGolfer(pick, scores, table, loc)
		st.TotalPoints += g.TotalPoints
		st.Golfers = append(st.Golfers, g)
	}

	sort.SliceStable(st.Golfers, func(i, j int) bool {
		a, b := st.Golfers[i], st.Golfers[j]
		if a.IsCut != b.IsCut {
			return !a.IsCut
		}
		if a.IsCut {
			return a.SortOrder < b.SortOrder
		}
		return a.TotalPoints > b.TotalPoints
	})
	return st
}

func scoreGolfer(pick domain.Pick, scores []domain.ScoreSnapshot, table *scoring.Table, loc *time.Location) domain.GolferStanding {
	line, ok := match(pick, scores)
	if !ok {
		return domain.GolferStanding{
			Pick:       pick,
			Position:   Placeholder,
			TotalScore: Placeholder,
			RoundCells: RoundCells(nil, false),
			Thru:       Placeholder,
			State:      domain.GolferRoundState{Kind: domain.StateUpcoming},
			SortOrder:  9999,
		}
	}

	line = Normalize(line)
	state := DeriveState(line)
	g := domain.GolferStanding{
		Pick:       pick,
		Position:   line.Position,
		TotalScore: line.TotalScore,
		ScoreInt:   line.ScoreInt,
		Rounds:     line.Rounds,
		RoundCells: RoundCells(line.Rounds, line.IsCut),
		Thru:       ThruDisplay(state, loc),
		State:      state,
		IsActive:   line.IsActive,
		IsCut:      line.IsCut,
		SortOrder:  line.SortOrder,
	}
	if line.IsCut {
		g.Position = CutMarker
		return g
	}

	if r, ok := table.Points(line); ok {
		g.Position = r.Position
		g.StrokesBehind = r.StrokesBehind
		g.PlacePoints = r.PlacePoints
		g.StrokePoints = r.StrokePoints
		g.TotalPoints = r.TotalPoints
	}
	if g.Position == "" {
		g.Position = Placeholder
	}
	return g
}

func match(pick domain.Pick, scores []domain.ScoreSnapshot) (domain.ScoreSnapshot, bool) {
	for _, s := range scores {
		if strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(pick.Name)) {
			return s, true
		}
	}
	if pick.ProviderID != "" {
		for _, s := range scores {
			if s.ProviderID == pick.ProviderID {
				return s, true
			}
		}
	}
	return domain.ScoreSnapshot{}, false
}

// TournamentTop returns the best n golfers still in the field.
func TournamentTop(scores []domain.ScoreSnapshot, table *scoring.Table, n int) []domain.TournamentEntry {
	ranked := scoring.Ranked(scores)
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]domain.TournamentEntry, 0, len(ranked))
	for _, s := range ranked {
		e := domain.TournamentEntry{ScoreSnapshot: s, Position: s.Position}
		if r, ok := table.Lookup(s.Name, s.ProviderID); ok {
			e.Position = r.Position
		}
		out = append(out, e)
	}
	return out
}

// Champions returns the top n teams once the tournament is final.
func Champions(ranked []domain.TeamStanding, finalized bool, n int) []domain.TeamStanding {
	if !finalized || n <= 0 {
		return nil
	}
	if len(ranked) < n {
		n = len(ranked)
	}
	return append([]domain.TeamStanding(nil), ranked[:n]...)
}

// Reveal withholds team standings while the tournament is still open for
// entries. The tournament-wide list is always shown.
func Reveal(v *domain.LeaderboardView, t *domain.Tournament, now time.Time) {
	v.StandingsLocked = t.StandingsHidden(now)
	if v.StandingsLocked {
		v.TeamStandings = nil
		v.Champions = nil
	}
}

// PollWindow reports whether live polling should run at now: the tournament
// has started, is not completed, and has not passed its end date (or start
// plus fallback when no end date is known).
func PollWindow(t *domain.Tournament, now time.Time, fallback time.Duration) bool {
	if t == nil || t.StartDate.IsZero() || t.Status == domain.StatusCompleted {
		return false
	}
	end := t.EndDate
	if end.IsZero() {
		end = t.StartDate.Add(fallback)
	}
	return !now.Before(t.StartDate) && !now.After(end)
}

// Build assembles the full leaderboard view for a tournament.
func Build(t *domain.Tournament, teams []domain.Team, scores []domain.ScoreSnapshot, lastUpdated, now time.Time, opts Options) *domain.LeaderboardView {
	table := scoring.Compute(scores)
	ranked := Aggregate(teams, scores, table, opts.Location)

	v := &domain.LeaderboardView{
		Tournament:          t.Summary(len(teams)),
		TeamStandings:       ranked,
		TournamentStandings: TournamentTop(NormalizeAll(scores), table, opts.TopN),
		Champions:           Champions(ranked, t.IsFinalized(), opts.Champions),
		IsFinalized:         t.IsFinalized(),
		LastUpdated:         lastUpdated,
	}
	Reveal(v, t, now)
	return v
}
