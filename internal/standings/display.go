package standings

import (
	"strconv"
	"strings"
	"time"

	"github.com/fairway-fantasy/internal/domain"
)

// Display markers
const (
	CutMarker        = "CUT"
	FinishedMarker   = "F"
	InProgressMarker = "▶"
	Placeholder      = "-"
)

// TeeTimeLayout is how tee times are rendered in the thru column.
const TeeTimeLayout = "3:04 PM"

// Normalize rewrites a cut golfer's line the same way on every load: the
// total becomes the signed numeric score and only the first two rounds are
// kept. Lines that are already normalized come back unchanged.
func Normalize(s domain.ScoreSnapshot) domain.ScoreSnapshot {
	if !s.IsCut {
		return s
	}
	if s.ScoreInt != nil {
		s.TotalScore = domain.FormatScore(*s.ScoreInt)
	}
	s.Rounds = cutRounds(s.Rounds)
	return s
}

// cutRounds keeps rounds one and two. Rounds without a number count by
// position.
func cutRounds(rounds []domain.Round) []domain.Round {
	keep := true
	for i, r := range rounds {
		if roundNumber(r, i) > 2 {
			keep = false
			break
		}
	}
	if keep {
		return rounds
	}
	out := make([]domain.Round, 0, 2)
	for i, r := range rounds {
		if roundNumber(r, i) <= 2 {
			out = append(out, r)
		}
	}
	return out
}

func roundNumber(r domain.Round, i int) int {
	if r.Number > 0 {
		return r.Number
	}
	return i + 1
}

// NormalizeAll applies Normalize to a field.
func NormalizeAll(scores []domain.ScoreSnapshot) []domain.ScoreSnapshot {
	out := make([]domain.ScoreSnapshot, len(scores))
	for i, s := range scores {
		out[i] = Normalize(s)
	}
	return out
}

// NormalizeView re-applies normalization to a view received from elsewhere.
func NormalizeView(v *domain.LeaderboardView) {
	if v == nil {
		return
	}
	for i := range v.TeamStandings {
		normalizeTeam(&v.TeamStandings[i])
	}
	for i := range v.Champions {
		normalizeTeam(&v.Champions[i])
	}
	for i := range v.TournamentStandings {
		pos := v.TournamentStandings[i].Position
		v.TournamentStandings[i].ScoreSnapshot = Normalize(v.TournamentStandings[i].ScoreSnapshot)
		v.TournamentStandings[i].Position = pos
	}
}

func normalizeTeam(t *domain.TeamStanding) {
	for i := range t.Golfers {
		g := &t.Golfers[i]
		if !g.IsCut {
			continue
		}
		if g.ScoreInt != nil {
			g.TotalScore = domain.FormatScore(*g.ScoreInt)
		}
		g.Rounds = cutRounds(g.Rounds)
		g.RoundCells = RoundCells(g.Rounds, true)
	}
}

// DeriveState works out where a golfer is in the current round.
func DeriveState(s domain.ScoreSnapshot) domain.GolferRoundState {
	if s.IsCut {
		return domain.GolferRoundState{Kind: domain.StateCut, AfterRound: 2}
	}

	thru := strings.TrimSpace(s.Thru)
	if thru == "18" || strings.EqualFold(thru, FinishedMarker) {
		return domain.GolferRoundState{Kind: domain.StateFinished}
	}
	if n, err := strconv.Atoi(thru); err == nil && n > 0 {
		return domain.GolferRoundState{Kind: domain.StateInProgress, Thru: n}
	}
	if thru != "" && thru != Placeholder {
		// "0", a back nine start like "12*", or any other provider text
		st := domain.GolferRoundState{Kind: domain.StateInProgress, Label: thru}
		if n, err := strconv.Atoi(strings.TrimSuffix(thru, "*")); err == nil && n >= 0 {
			st.Thru = n
		} else if !s.IsActive {
			st.Kind = domain.StateUpcoming
		}
		return st
	}

	if s.IsActive {
		if s.TeeTime != nil {
			return domain.GolferRoundState{Kind: domain.StateUpcoming, TeeTime: s.TeeTime}
		}
		return domain.GolferRoundState{Kind: domain.StateInProgress}
	}
	return domain.GolferRoundState{Kind: domain.StateUpcoming}
}

// ThruDisplay renders the thru column. Tee times are shown in loc.
func ThruDisplay(state domain.GolferRoundState, loc *time.Location) string {
	if state.Label != "" && state.Kind != domain.StateCut && state.Kind != domain.StateFinished {
		return state.Label
	}
	switch state.Kind {
	case domain.StateCut:
		return CutMarker
	case domain.StateFinished:
		return FinishedMarker
	case domain.StateInProgress:
		if state.Thru > 0 {
			return strconv.Itoa(state.Thru)
		}
		return InProgressMarker
	default:
		if state.TeeTime != nil {
			if loc == nil {
				loc = time.UTC
			}
			return state.TeeTime.In(loc).Format(TeeTimeLayout)
		}
		return Placeholder
	}
}

// RoundCells renders the four round columns. A cut golfer shows CUT for the
// weekend rounds; a round without a score shows the placeholder.
func RoundCells(rounds []domain.Round, cut bool) [4]string {
	var cells [4]string
	for i := range cells {
		if cut && i >= 2 {
			cells[i] = CutMarker
			continue
		}
		cells[i] = Placeholder
		if r, ok := roundAt(rounds, i+1); ok && r.HasScore() {
			cells[i] = strings.TrimSpace(r.Score)
		}
	}
	return cells
}

func roundAt(rounds []domain.Round, number int) (domain.Round, bool) {
	for _, r := range rounds {
		if r.Number == number {
			return r, true
		}
	}
	if number-1 < len(rounds) && rounds[number-1].Number == 0 {
		return rounds[number-1], true
	}
	return domain.Round{}, false
}
