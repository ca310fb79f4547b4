package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairway-fantasy/internal/domain"
)

func TestDecode(t *testing.T) {
	feed, err := Decode([]byte(`{
		"tournament_id": "masters",
		"final": true,
		"scores": [{"name": "Rory McIlroy", "position": "T2", "total_score": "-8", "score_int": -8, "thru": "F"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "masters", feed.TournamentID)
	assert.True(t, feed.Final)
	require.Len(t, feed.Scores, 1)
	assert.Equal(t, -8, *feed.Scores[0].ScoreInt)

	_, err = Decode([]byte(`{"scores": []}`))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = Decode([]byte(`{"tournament_id": "masters", "scores": [{"position": "1"}]}`))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestLatestKeepsNewestPerTournament(t *testing.T) {
	base := time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)
	feeds := []domain.ScoreFeed{
		{TournamentID: "masters", Timestamp: base},
		{TournamentID: "pga", Timestamp: base},
		{TournamentID: "masters", Timestamp: base.Add(-time.Minute), Final: true},
		{TournamentID: "masters", Timestamp: base.Add(time.Minute)},
		{TournamentID: "pga", Timestamp: base, Final: true},
	}

	out := Latest(feeds)
	require.Len(t, out, 2)
	assert.Equal(t, "masters", out[0].TournamentID)
	assert.Equal(t, base.Add(time.Minute), out[0].Timestamp)
	assert.False(t, out[0].Final, "older message ignored")
	assert.Equal(t, "pga", out[1].TournamentID)
	assert.True(t, out[1].Final, "later message wins a tie")
}
