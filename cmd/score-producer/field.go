package main

import (
	"math/rand"
	"sort"
	"strconv"

	"github.com/fairway-fantasy/internal/domain"
)

const (
	holes  = 18
	rounds = 4
)

var golferNames = []string{
	"Scottie Scheffler", "Rory McIlroy", "Jon Rahm", "Collin Morikawa", "Viktor Hovland",
	"Xander Schauffele", "Ludvig Aberg", "Bryson DeChambeau", "Patrick Cantlay", "Tommy Fleetwood",
	"Hideki Matsuyama", "Wyndham Clark", "Max Homa", "Tony Finau", "Jordan Spieth",
	"Justin Thomas", "Sahith Theegala", "Cameron Young", "Brooks Koepka", "Shane Lowry",
	"Sungjae Im", "Russell Henley", "Tom Kim", "Matt Fitzpatrick", "Jason Day",
	"Sepp Straka", "Corey Conners", "Min Woo Lee", "Tyrrell Hatton", "Adam Scott",
}

type simGolfer struct {
	id     string
	name   string
	rounds []int // strokes to par per finished round
	hole   int   // holes completed in the current round
	today  int
	cut    bool
}

func (g *simGolfer) total() int {
	t := g.today
	for _, r := range g.rounds {
		t += r
	}
	return t
}

// field simulates a tournament hole by hole. After round two the bottom half
// of the field is cut.
type field struct {
	golfers []*simGolfer
	round   int
	rng     *rand.Rand
}

func newField(size int, seed int64) *field {
	if size > len(golferNames) {
		size = len(golferNames)
	}
	f := &field{round: 1, rng: rand.New(rand.NewSource(seed))}
	for i := 0; i < size; i++ {
		f.golfers = append(f.golfers, &simGolfer{
			id:   strconv.Itoa(1000 + i),
			name: golferNames[i],
		})
	}
	return f
}

// final reports whether every round has been played.
func (f *field) final() bool {
	return f.round > rounds
}

// step plays one hole for every golfer still on the course.
func (f *field) step() {
	if f.final() {
		return
	}
	done := true
	for _, g := range f.golfers {
		if g.cut || g.hole == holes {
			continue
		}
		g.hole++
		g.today += f.holeScore()
		if g.hole < holes {
			done = false
		}
	}
	if !done {
		return
	}

	for _, g := range f.golfers {
		if g.cut {
			continue
		}
		g.rounds = append(g.rounds, g.today)
		g.today = 0
		g.hole = 0
	}
	if f.round == 2 {
		f.applyCut()
	}
	f.round++
}

func (f *field) holeScore() int {
	switch n := f.rng.Intn(100); {
	case n < 3:
		return -2
	case n < 22:
		return -1
	case n < 82:
		return 0
	case n < 96:
		return 1
	default:
		return 2
	}
}

func (f *field) applyCut() {
	ordered := append([]*simGolfer(nil), f.golfers...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].total() < ordered[j].total() })
	for _, g := range ordered[(len(ordered)+1)/2:] {
		g.cut = true
	}
}

// snapshot renders the field as a feed payload.
func (f *field) snapshot() []domain.ScoreSnapshot {
	out := make([]domain.ScoreSnapshot, 0, len(f.golfers))
	for i, g := range f.golfers {
		total := g.total()
		s := domain.ScoreSnapshot{
			ProviderID: g.id,
			Name:       g.name,
			TotalScore: domain.FormatScore(total),
			ScoreInt:   &total,
			IsCut:      g.cut,
			IsActive:   !g.cut && !f.final() && g.hole > 0,
			SortOrder:  i,
		}
		for n, r := range g.rounds {
			s.Rounds = append(s.Rounds, domain.Round{Number: n + 1, Score: domain.FormatScore(r)})
		}
		switch {
		case g.cut || f.final() || (g.hole == 0 && len(g.rounds) > 0):
			s.Thru = "F"
		case g.hole == 0:
			s.Thru = "-"
		default:
			s.Rounds = append(s.Rounds, domain.Round{Number: len(g.rounds) + 1, Score: domain.FormatScore(g.today)})
			s.Thru = strconv.Itoa(g.hole)
		}
		out = append(out, s)
	}
	return out
}
