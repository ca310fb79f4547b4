package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairway-fantasy/internal/domain"
)

func TestDefaultSeed(t *testing.T) {
	years, err := Default()
	require.NoError(t, err)
	require.Len(t, years, 10)
	assert.Equal(t, 2025, years[0].Year)
	require.Len(t, years[0].Tournaments, 4)
	assert.Equal(t, "The Open", years[0].Tournaments[0].Name)
	assert.Equal(t, []string{"Dat Boy", "Rich Pocki", "Bill Moser"}, years[0].Tournaments[0].Winners)
}

func TestRecordsFromSeed(t *testing.T) {
	years, err := Default()
	require.NoError(t, err)

	wins, podiums := Records(years, 3)
	assert.Equal(t, []domain.RecordHolder{
		{Name: "Justin Blazel", Count: 2, RecentYear: 2025},
		{Name: "Carson Custer", Count: 2, RecentYear: 2019},
		{Name: "Dat Boy", Count: 1, RecentYear: 2025},
	}, wins)
	assert.Equal(t, []domain.RecordHolder{
		{Name: "Carson Custer", Count: 4, RecentYear: 2025},
		{Name: "Andrew David", Count: 4, RecentYear: 2023},
		{Name: "Sam Lanzino", Count: 3, RecentYear: 2021},
	}, podiums)
}

func TestMerge(t *testing.T) {
	seeded := []domain.HistoryYear{
		{Year: 2025, Tournaments: []domain.PastTournament{
			{Name: "PGA Championship", Winners: []string{"A", "B", "C"}},
			{Name: "Masters", Winners: []string{"D", "E", "F"}},
		}},
	}

	tests := []struct {
		name    string
		results []Result
		want    []domain.HistoryYear
	}{
		{
			name: "no results",
			want: seeded,
		},
		{
			name: "new season goes first",
			results: []Result{
				{Year: 2026, Tournament: domain.PastTournament{Name: "Masters", Winners: []string{"Alice", "Bob"}}},
			},
			want: []domain.HistoryYear{
				{Year: 2026, Tournaments: []domain.PastTournament{{Name: "Masters", Winners: []string{"Alice", "Bob"}}}},
				seeded[0],
			},
		},
		{
			name: "result replaces seeded entry",
			results: []Result{
				{Year: 2025, Tournament: domain.PastTournament{Name: "Masters", Winners: []string{"X", "Y", "Z"}}},
			},
			want: []domain.HistoryYear{
				{Year: 2025, Tournaments: []domain.PastTournament{
					{Name: "Masters", Winners: []string{"X", "Y", "Z"}},
					{Name: "PGA Championship", Winners: []string{"A", "B", "C"}},
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(seeded, tt.results))
		})
	}
	assert.Len(t, seeded[0].Tournaments, 2)
}

func TestRecordsIgnoreBeyondPodium(t *testing.T) {
	years := []domain.HistoryYear{
		{Year: 2026, Tournaments: []domain.PastTournament{{Name: "Masters", Winners: []string{"A", "B", "C", "D"}}}},
	}
	wins, podiums := Records(years, 10)
	assert.Equal(t, []domain.RecordHolder{{Name: "A", Count: 1, RecentYear: 2026}}, wins)
	assert.Len(t, podiums, 3)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "history.yaml")
	require.NoError(t, os.WriteFile(good, []byte("- year: 2024\n  tournaments:\n    - name: Masters\n      winners: [A, B, C]\n"), 0o600))

	years, err := LoadFile(good)
	require.NoError(t, err)
	require.Len(t, years, 1)
	assert.Equal(t, []string{"A", "B", "C"}, years[0].Tournaments[0].Winners)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- year: 0\n"), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
