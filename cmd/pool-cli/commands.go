package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fairway-fantasy/internal/apiclient"
	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/poller"
	"github.com/fairway-fantasy/internal/roster"
)

var errUsage = errors.New("usage: pool-cli [flags] teams | set <team> <golfer>,<golfer>,... | clear <team> | leaderboard | watch | refresh | history")

// app runs one pool-cli command against the pool API
type app struct {
	client   *apiclient.Client
	watchCfg poller.Config
	out      io.Writer
	logger   *slog.Logger
}

func (a *app) run(ctx context.Context, pin, tournamentID string, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	user, err := a.client.Login(ctx, pin)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	t, err := a.client.Tournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("loading tournament: %w", err)
	}

	switch args[0] {
	case "teams", "set", "clear":
		return a.edit(ctx, user, t, args)
	case "leaderboard":
		return a.leaderboard(ctx, t, false)
	case "refresh":
		return a.leaderboard(ctx, t, true)
	case "watch":
		return a.watch(ctx, t)
	case "history":
		return a.history(ctx)
	default:
		return errUsage
	}
}

func (a *app) edit(ctx context.Context, user *domain.User, t *domain.Tournament, args []string) error {
	b := roster.NewBuilder(a.client, user.Session(), t, a.logger)
	if err := b.Load(ctx); err != nil {
		return fmt.Errorf("loading teams: %w", err)
	}

	if args[0] != "teams" {
		if len(args) < 2 {
			return errUsage
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return errUsage
		}
		if err := b.Clear(n); err != nil {
			return err
		}
		if args[0] == "set" {
			if err := fill(b, t, n, strings.Join(args[2:], " ")); err != nil {
				return err
			}
		}

		res, err := b.Save(ctx)
		for _, tr := range res.Teams {
			fmt.Fprintf(a.out, "team %d: %s\n", tr.TeamNumber, tr.Outcome)
		}
		if err != nil {
			return err
		}
	}

	a.printTeams(b)
	return nil
}

// fill adds a comma separated list of golfers to team n.
func fill(b *roster.Builder, t *domain.Tournament, n int, list string) error {
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		g, ok := findGolfer(t, name)
		if !ok {
			return fmt.Errorf("%w: %q is not in the field", domain.ErrInvalidRequest, name)
		}
		if err := b.Add(n, g); err != nil {
			return fmt.Errorf("adding %s: %w", g.Name, err)
		}
	}
	return nil
}

func findGolfer(t *domain.Tournament, name string) (domain.Golfer, bool) {
	if g, ok := t.Golfer(name); ok {
		return g, true
	}
	for _, g := range t.Golfers {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return domain.Golfer{}, false
}

func (a *app) printTeams(b *roster.Builder) {
	for n := 1; n <= domain.MaxTeamsPerUser; n++ {
		fmt.Fprintf(a.out, "Team %d  cost %d  remaining %d\n", n, b.Cost(n), b.Remaining(n))
		for i, name := range b.Team(n).Names() {
			if name == "" {
				name = "(empty)"
			}
			fmt.Fprintf(a.out, "  %d. %s\n", i+1, name)
		}
	}
}

// leaderboard prints the view once, asking the provider for fresh scores
// first when refresh is set.
func (a *app) leaderboard(ctx context.Context, t *domain.Tournament, refresh bool) error {
	updates := make(chan *domain.LeaderboardView, 1)
	w := poller.NewWatcher(a.client, a.watchCfg, func(v *domain.LeaderboardView) {
		select {
		case updates <- v:
		default:
		}
	}, a.logger)
	w.Watch(ctx, t)
	defer w.Stop()

	var v *domain.LeaderboardView
	select {
	case v = <-updates:
	case <-ctx.Done():
		return ctx.Err()
	}

	if refresh {
		if err := w.Refresh(ctx); err != nil {
			return err
		}
		v = w.Current()
	}
	a.printView(v)
	return nil
}

func (a *app) watch(ctx context.Context, t *domain.Tournament) error {
	w := poller.NewWatcher(a.client, a.watchCfg, a.printView, a.logger)
	w.Watch(ctx, t)
	<-ctx.Done()
	w.Stop()
	return nil
}

func (a *app) printView(v *domain.LeaderboardView) {
	if v == nil {
		return
	}
	fmt.Fprintf(a.out, "%s  updated %s\n", v.Tournament.Name, v.LastUpdated.Format(time.Kitchen))
	if v.StandingsLocked {
		fmt.Fprintln(a.out, "Standings locked until the deadline")
	}
	for _, st := range v.TeamStandings {
		fmt.Fprintf(a.out, "%3d  %-28s %8.1f\n", st.Rank, st.TeamName, st.TotalPoints)
	}
	for _, e := range v.TournamentStandings {
		fmt.Fprintf(a.out, "%5s  %-24s %5s  %s\n", e.Position, e.Name, e.TotalScore, e.Thru)
	}
}

func (a *app) history(ctx context.Context) error {
	h, err := a.client.History(ctx)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	fmt.Fprintln(a.out, "Most championships")
	for i, r := range h.Championships {
		fmt.Fprintf(a.out, "  %d. %s  %d (last %d)\n", i+1, r.Name, r.Count, r.RecentYear)
	}
	fmt.Fprintln(a.out, "Most top 3 finishes")
	for i, r := range h.TopThree {
		fmt.Fprintf(a.out, "  %d. %s  %d (last %d)\n", i+1, r.Name, r.Count, r.RecentYear)
	}
	for _, y := range h.Years {
		fmt.Fprintf(a.out, "%d\n", y.Year)
		for _, t := range y.Tournaments {
			fmt.Fprintf(a.out, "  %s: %s\n", t.Name, strings.Join(t.Winners, ", "))
		}
	}
	return nil
}
