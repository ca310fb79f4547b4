package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/memstore"
)

func newTeamService(store *memstore.Store, now time.Time) *TeamService {
	svc := NewTeamService(store, store, store, discard)
	svc.SetClock(func() time.Time { return now })
	return svc
}

func request(number int, golfers []domain.Pick) domain.TeamRequest {
	return domain.TeamRequest{UserID: "u1", TournamentID: "masters", TeamNumber: number, Golfers: golfers}
}

func TestSaveTeamCreatesAndReplaces(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seed(store)
	svc := newTeamService(store, deadline.Add(-time.Hour))

	first, err := svc.SaveTeam(ctx, request(1, roster()))
	require.NoError(t, err)
	assert.Equal(t, "Alice", first.UserName)
	assert.Equal(t, 1000000, first.TotalCost)

	golfers := roster()
	golfers[4] = pick("Tony Finau", 75000)
	second, err := svc.SaveTeam(ctx, request(1, golfers))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 975000, second.TotalCost)

	teams, err := svc.ListUserTeams(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, teams, 1)
}

func TestSaveTeamRules(t *testing.T) {
	over := roster()
	over[4] = pick("Viktor Hovland", 100001)
	dup := roster()
	dup[4] = pick("scottie scheffler", 1000)

	tests := []struct {
		name string
		req  domain.TeamRequest
		now  time.Time
		want error
	}{
		{"after deadline", request(1, roster()), deadline.Add(time.Second), domain.ErrLocked},
		{"team number", request(3, roster()), deadline.Add(-time.Hour), domain.ErrValidationFailed},
		{"four golfers", request(1, roster()[:4]), deadline.Add(-time.Hour), domain.ErrValidationFailed},
		{"over budget", request(1, over), deadline.Add(-time.Hour), domain.ErrValidationFailed},
		{"duplicate golfer", request(1, dup), deadline.Add(-time.Hour), domain.ErrValidationFailed},
		{"unknown user", domain.TeamRequest{UserID: "ghost", TournamentID: "masters", TeamNumber: 1, Golfers: roster()}, deadline.Add(-time.Hour), domain.ErrUserNotFound},
		{"unknown tournament", domain.TeamRequest{UserID: "u1", TournamentID: "open", TeamNumber: 1, Golfers: roster()}, deadline.Add(-time.Hour), domain.ErrTournamentNotFound},
		{"missing ids", domain.TeamRequest{TeamNumber: 1}, deadline.Add(-time.Hour), domain.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			seed(store)
			svc := newTeamService(store, tt.now)

			_, err := svc.SaveTeam(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, store.Teams())
		})
	}
}

func TestSaveTeamSecondTeamAndOtherTournaments(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seed(store)
	store.PutTeam(domain.Team{ID: "elsewhere", UserID: "u1", TournamentID: "open", TeamNumber: 1})
	svc := newTeamService(store, deadline.Add(-time.Hour))

	_, err := svc.SaveTeam(ctx, request(1, roster()))
	require.NoError(t, err)
	_, err = svc.SaveTeam(ctx, request(2, roster()))
	require.NoError(t, err)

	// both slots taken: replacing either still works
	_, err = svc.SaveTeam(ctx, request(2, roster()))
	assert.NoError(t, err)

	teams, err := svc.ListTournamentTeams(ctx, "masters")
	require.NoError(t, err)
	assert.Len(t, teams, 2)
}

func TestSaveTeamMaximumTeams(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seed(store)
	// two rows already fill the limit, neither numbered 2
	store.PutTeam(domain.Team{ID: "a", UserID: "u1", TournamentID: "masters", TeamNumber: 1})
	store.PutTeam(domain.Team{ID: "b", UserID: "u1", TournamentID: "masters", TeamNumber: 1})
	svc := newTeamService(store, deadline.Add(-time.Hour))

	_, err := svc.SaveTeam(ctx, request(2, roster()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum 2 teams")
}

func TestSaveTeamPersistenceFailure(t *testing.T) {
	store := memstore.New()
	seed(store)
	store.FailUpserts(errors.New("connection reset"))
	svc := newTeamService(store, deadline.Add(-time.Hour))

	_, err := svc.SaveTeam(context.Background(), request(1, roster()))
	assert.ErrorIs(t, err, domain.ErrPersistenceFailed)
}

func TestDeleteTeam(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seed(store)
	svc := newTeamService(store, deadline.Add(-time.Hour))

	team, err := svc.SaveTeam(ctx, request(1, roster()))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteTeam(ctx, team.ID, "u2"), domain.ErrForbidden)

	locked := newTeamService(store, deadline.Add(time.Minute))
	assert.ErrorIs(t, locked.DeleteTeam(ctx, team.ID, "u1"), domain.ErrLocked)

	require.NoError(t, svc.DeleteTeam(ctx, team.ID, "u1"))
	assert.ErrorIs(t, svc.DeleteTeam(ctx, team.ID, "u1"), domain.ErrTeamNotFound)
}

func TestAdminTeamOverrides(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seed(store)
	open := newTeamService(store, deadline.Add(-time.Hour))
	team, err := open.SaveTeam(ctx, request(1, roster()))
	require.NoError(t, err)

	svc := newTeamService(store, deadline.Add(48*time.Hour))

	golfers := roster()
	golfers[0] = pick("Xander Schauffele", 275000)
	_, err = svc.AdminUpdateTeam(ctx, "u1", team.ID, golfers)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := svc.AdminUpdateTeam(ctx, "admin", team.ID, golfers)
	require.NoError(t, err)
	assert.True(t, updated.AdminModified)
	assert.Equal(t, 975000, updated.TotalCost)
	assert.Equal(t, "Xander Schauffele", updated.Golfers[0].Name)

	_, err = svc.AdminUpdateTeam(ctx, "admin", team.ID, golfers[:3])
	assert.True(t, domain.IsValidation(err))

	require.NoError(t, svc.SetPaid(ctx, "admin", team.ID, true))
	paid, ok := store.Team(team.ID)
	require.True(t, ok)
	assert.True(t, paid.Paid)
	assert.ErrorIs(t, svc.SetPaid(ctx, "admin", "missing", true), domain.ErrTeamNotFound)

	tour, teams, err := svc.AdminListTeams(ctx, "admin", "masters")
	require.NoError(t, err)
	assert.Equal(t, "The Masters", tour.Name)
	assert.Len(t, teams, 1)

	require.NoError(t, svc.AdminDeleteTeam(ctx, "admin", team.ID))
	assert.Zero(t, store.Teams())
}
