package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairway-fantasy/internal/domain"
)

func line(name string, score int, cut bool) domain.ScoreSnapshot {
	s := score
	return domain.ScoreSnapshot{Name: name, ScoreInt: &s, IsCut: cut, TotalScore: domain.FormatScore(score)}
}

func TestPlacePoints(t *testing.T) {
	tests := []struct {
		pos  int
		want float64
	}{
		{0, 0},
		{1, 300},
		{2, 200},
		{10, 60},
		{15, 51},
		{16, 50},
		{40, 26},
		{66, 0},
		{90, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlacePoints(tt.pos), "pos %d", tt.pos)
	}
}

func TestStrokePoints(t *testing.T) {
	tests := []struct {
		sb   int
		want float64
	}{
		{-1, 0},
		{0, 100},
		{1, 85},
		{5, 65},
		{6, 60},
		{10, 40},
		{18, 0},
		{30, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StrokePoints(tt.sb), "sb %d", tt.sb)
	}
}

func TestParsePosition(t *testing.T) {
	assert.Equal(t, 3, ParsePosition("T3"))
	assert.Equal(t, 12, ParsePosition(" 12 "))
	assert.Equal(t, 0, ParsePosition("CUT"))
	assert.Equal(t, 0, ParsePosition("WD"))
	assert.Equal(t, 0, ParsePosition(""))
}

func TestComputeSplitsTiedPlacePoints(t *testing.T) {
	table := Compute([]domain.ScoreSnapshot{
		line("Scottie Scheffler", -12, false),
		line("Rory McIlroy", -10, false),
		line("Xander Schauffele", -10, false),
		line("Jon Rahm", -9, false),
		line("Cut Golfer", -20, true),
	})

	leader, ok := table.Lookup("scottie scheffler", "")
	require.True(t, ok)
	assert.Equal(t, "1", leader.Position)
	assert.Equal(t, 400.0, leader.TotalPoints)

	tied, ok := table.Lookup("Rory McIlroy", "")
	require.True(t, ok)
	assert.Equal(t, "T2", tied.Position)
	assert.Equal(t, 187.5, tied.PlacePoints)
	assert.Equal(t, 2, tied.StrokesBehind)
	assert.Equal(t, 80.0, tied.StrokePoints)

	fourth, ok := table.Lookup("Jon Rahm", "")
	require.True(t, ok)
	assert.Equal(t, "4", fourth.Position)

	_, ok = table.Lookup("Cut Golfer", "")
	assert.False(t, ok)
}

func TestLookupByProviderID(t *testing.T) {
	s := line("Ludvig Åberg", -3, false)
	s.ProviderID = "4375972"
	table := Compute([]domain.ScoreSnapshot{s})

	r, ok := table.Lookup("Ludvig Aberg", "4375972")
	require.True(t, ok)
	assert.Equal(t, "1", r.Position)
}

func TestPointsAppliesMinimumAndZeroesCut(t *testing.T) {
	field := []domain.ScoreSnapshot{line("Leader", -15, false)}
	for i := 0; i < 70; i++ {
		field = append(field, line(fmt.Sprintf("Golfer %02d", i), i, false))
	}
	table := Compute(field)

	last := field[len(field)-1]
	raw, ok := table.Lookup(last.Name, "")
	require.True(t, ok)
	assert.Equal(t, 0.0, raw.TotalPoints)

	r, ok := table.Points(last)
	require.True(t, ok)
	assert.Equal(t, MinimumPoints, r.TotalPoints)

	cut := line("Leader", -15, true)
	_, ok = table.Points(cut)
	assert.False(t, ok)
}

func TestDetectCuts(t *testing.T) {
	twoRounds := domain.ScoreSnapshot{Name: "A", Rounds: []domain.Round{{Number: 1}, {Number: 2}}}
	threeRounds := domain.ScoreSnapshot{Name: "B", Rounds: []domain.Round{{Number: 1}, {Number: 2}, {Number: 3}}}

	out := DetectCuts([]domain.ScoreSnapshot{twoRounds, threeRounds})
	assert.True(t, out[0].IsCut)
	assert.False(t, out[1].IsCut)
	assert.False(t, twoRounds.IsCut, "input is not mutated")

	early := DetectCuts([]domain.ScoreSnapshot{twoRounds})
	assert.False(t, early[0].IsCut)
}

func TestLeader(t *testing.T) {
	_, ok := Leader(nil)
	assert.False(t, ok)

	v, ok := Leader([]domain.ScoreSnapshot{line("A", 2, false), line("B", -4, false), line("C", -9, true)})
	require.True(t, ok)
	assert.Equal(t, -4, v)
}
