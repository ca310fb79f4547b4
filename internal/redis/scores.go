package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairway-fantasy/internal/config"
	"github.com/fairway-fantasy/internal/domain"
)

// ScoreCache keeps the latest score feed per tournament and a hash of team
// ranks and totals
type ScoreCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewScoreCache creates a new Redis score cache
func NewScoreCache(cfg *config.RedisConfig, logger *slog.Logger) (*ScoreCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &ScoreCache{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (s *ScoreCache) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection
func (s *ScoreCache) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func scoresKey(tournamentID string) string {
	return fmt.Sprintf("tournament:%s:scores", tournamentID)
}

func updatedKey(tournamentID string) string {
	return fmt.Sprintf("tournament:%s:updated", tournamentID)
}

func standingsKey(tournamentID string) string {
	return fmt.Sprintf("tournament:%s:standings", tournamentID)
}

// SetScores stores a full field for a tournament along with its timestamp
func (s *ScoreCache) SetScores(ctx context.Context, tournamentID string, scores []domain.ScoreSnapshot, at time.Time) error {
	data, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("marshaling scores: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, scoresKey(tournamentID), data, 0)
	pipe.Set(ctx, updatedKey(tournamentID), at.UTC().Format(time.RFC3339Nano), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("setting scores: %w", err)
	}

	s.logger.Debug("cached scores", "tournament_id", tournamentID, "golfers", len(scores))
	return nil
}

// GetScores returns the cached field and when it was stored.
// ErrDataUnavailable means no feed has arrived yet.
func (s *ScoreCache) GetScores(ctx context.Context, tournamentID string) ([]domain.ScoreSnapshot, time.Time, error) {
	pipe := s.client.Pipeline()
	scoresCmd := pipe.Get(ctx, scoresKey(tournamentID))
	updatedCmd := pipe.Get(ctx, updatedKey(tournamentID))
	_, err := pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, time.Time{}, fmt.Errorf("getting scores: %w", err)
	}

	data, err := scoresCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, domain.ErrDataUnavailable
		}
		return nil, time.Time{}, fmt.Errorf("getting scores result: %w", err)
	}

	var scores []domain.ScoreSnapshot
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, time.Time{}, fmt.Errorf("unmarshaling scores: %w", err)
	}

	var updated time.Time
	if raw, err := updatedCmd.Result(); err == nil {
		updated, _ = time.Parse(time.RFC3339Nano, raw)
	}
	return scores, updated, nil
}

// SetTeamTotals replaces the stored team ranks. The rank comes from the
// standings so tied teams keep the order the leaderboard shows.
func (s *ScoreCache) SetTeamTotals(ctx context.Context, tournamentID string, standings []domain.TeamStanding) error {
	key := standingsKey(tournamentID)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(standings) > 0 {
		fields := make(map[string]interface{}, len(standings))
		for i, st := range standings {
			rank := st.Rank
			if rank == 0 {
				rank = i + 1
			}
			fields[st.TeamID] = encodeRank(rank, st.TotalPoints)
		}
		pipe.HSet(ctx, key, fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("setting team totals: %w", err)
	}
	return nil
}

// GetTeamRank returns a team's 1-based rank and point total
func (s *ScoreCache) GetTeamRank(ctx context.Context, tournamentID, teamID string) (int64, float64, error) {
	raw, err := s.client.HGet(ctx, standingsKey(tournamentID), teamID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, domain.ErrTeamNotFound
		}
		return 0, 0, fmt.Errorf("getting team rank: %w", err)
	}

	rank, points, err := decodeRank(raw)
	if err != nil {
		return 0, 0, fmt.Errorf("decoding team rank %q: %w", raw, err)
	}
	return rank, points, nil
}

func encodeRank(rank int, points float64) string {
	return strconv.Itoa(rank) + "|" + strconv.FormatFloat(points, 'f', -1, 64)
}

func decodeRank(raw string) (int64, float64, error) {
	rankPart, pointsPart, ok := strings.Cut(raw, "|")
	if !ok {
		return 0, 0, errors.New("missing separator")
	}
	rank, err := strconv.ParseInt(rankPart, 10, 64)
	if err != nil {
		return 0, 0, err
	}
	points, err := strconv.ParseFloat(pointsPart, 64)
	if err != nil {
		return 0, 0, err
	}
	return rank, points, nil
}

// DeleteTournament drops everything cached for a tournament
func (s *ScoreCache) DeleteTournament(ctx context.Context, tournamentID string) error {
	err := s.client.Del(ctx, scoresKey(tournamentID), updatedKey(tournamentID), standingsKey(tournamentID)).Err()
	if err != nil {
		return fmt.Errorf("deleting tournament cache: %w", err)
	}
	return nil
}
