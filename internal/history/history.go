// Package history keeps the pool's champions record: podiums from earlier
// seasons plus the results of tournaments the pool has finalized.
package history

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/fairway-fantasy/internal/domain"
)

//go:embed seed.yaml
var seed []byte

// Podium is how many finishers a past tournament records.
const Podium = 3

// Result is the podium of a finalized tournament
type Result struct {
	Year       int
	Tournament domain.PastTournament
}

// Parse decodes a YAML list of seasons.
func Parse(data []byte) ([]domain.HistoryYear, error) {
	var years []domain.HistoryYear
	if err := yaml.Unmarshal(data, &years); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}
	for _, y := range years {
		if y.Year <= 0 {
			return nil, fmt.Errorf("parsing history: invalid year %d", y.Year)
		}
	}
	return years, nil
}

// Default returns the built-in seasons.
func Default() ([]domain.HistoryYear, error) {
	return Parse(seed)
}

// LoadFile reads seasons from a YAML file.
func LoadFile(path string) ([]domain.HistoryYear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	return Parse(data)
}

// Merge folds finalized results into the seeded seasons. A result replaces a
// seeded tournament of the same year and name. Years come out newest first,
// and within a year results come before seeded tournaments. seeded is not
// modified.
func Merge(seeded []domain.HistoryYear, results []Result) []domain.HistoryYear {
	byYear := make(map[int]*domain.HistoryYear)
	var order []int

	year := func(y int) *domain.HistoryYear {
		if h, ok := byYear[y]; ok {
			return h
		}
		byYear[y] = &domain.HistoryYear{Year: y}
		order = append(order, y)
		return byYear[y]
	}

	replaced := make(map[int]map[string]bool)
	for _, r := range results {
		h := year(r.Year)
		h.Tournaments = append(h.Tournaments, domain.PastTournament{
			Name:    r.Tournament.Name,
			Winners: append([]string(nil), r.Tournament.Winners...),
		})
		if replaced[r.Year] == nil {
			replaced[r.Year] = make(map[string]bool)
		}
		replaced[r.Year][r.Tournament.Name] = true
	}
	for _, s := range seeded {
		h := year(s.Year)
		for _, t := range s.Tournaments {
			if replaced[s.Year][t.Name] {
				continue
			}
			h.Tournaments = append(h.Tournaments, domain.PastTournament{
				Name:    t.Name,
				Winners: append([]string(nil), t.Winners...),
			})
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i] > order[j] })
	out := make([]domain.HistoryYear, 0, len(order))
	for _, y := range order {
		out = append(out, *byYear[y])
	}
	return out
}

// Records counts championships and podium finishes per member and returns
// the n leaders of each. Equal counts go to the more recent year, then to
// whoever appears first in years.
func Records(years []domain.HistoryYear, n int) (championships, topThree []domain.RecordHolder) {
	wins := newTally()
	podiums := newTally()
	for _, y := range years {
		for _, t := range y.Tournaments {
			for place, name := range t.Winners {
				if place >= Podium {
					break
				}
				if place == 0 {
					wins.add(name, y.Year)
				}
				podiums.add(name, y.Year)
			}
		}
	}
	return wins.leaders(n), podiums.leaders(n)
}

type tally struct {
	index   map[string]int
	holders []domain.RecordHolder
}

func newTally() *tally {
	return &tally{index: make(map[string]int)}
}

func (t *tally) add(name string, year int) {
	i, ok := t.index[name]
	if !ok {
		i = len(t.holders)
		t.index[name] = i
		t.holders = append(t.holders, domain.RecordHolder{Name: name})
	}
	h := &t.holders[i]
	h.Count++
	if year > h.RecentYear {
		h.RecentYear = year
	}
}

func (t *tally) leaders(n int) []domain.RecordHolder {
	out := append([]domain.RecordHolder(nil), t.holders...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].RecentYear > out[j].RecentYear
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
