package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/fairway-fantasy/internal/config"
	"github.com/fairway-fantasy/internal/domain"
)

// FeedHandler processes score feeds
type FeedHandler interface {
	IngestScores(ctx context.Context, feed domain.ScoreFeed) error
}

// Consumer consumes score feed messages from Kafka
type Consumer struct {
	config        *config.KafkaConfig
	handler       FeedHandler
	logger        *slog.Logger
	consumerGroup sarama.ConsumerGroup
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	ready         chan bool
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(cfg *config.KafkaConfig, handler FeedHandler, logger *slog.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_0_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Consumer{
		config:        cfg,
		handler:       handler,
		logger:        logger,
		consumerGroup: consumerGroup,
		ctx:           ctx,
		cancel:        cancel,
		ready:         make(chan bool),
	}, nil
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start() error {
	c.logger.Info("starting Kafka consumer",
		"brokers", c.config.Brokers,
		"topic", c.config.Topic,
		"group_id", c.config.GroupID,
	)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			handler := &consumerGroupHandler{
				consumer: c,
				ready:    c.ready,
			}

			if err := c.consumerGroup.Consume(c.ctx, []string{c.config.Topic}, handler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.logger.Error("error from consumer", "error", err)
			}

			if c.ctx.Err() != nil {
				return
			}

			c.ready = make(chan bool)
		}
	}()

	<-c.ready
	c.logger.Info("Kafka consumer ready")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.ctx.Done():
				return
			case err, ok := <-c.consumerGroup.Errors():
				if !ok {
					return
				}
				c.logger.Error("consumer group error", "error", err)
			}
		}
	}()

	return nil
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() error {
	c.logger.Info("stopping Kafka consumer")
	c.cancel()
	c.wg.Wait()
	return c.consumerGroup.Close()
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	consumer *Consumer
	ready    chan bool
}

// Setup is called at the beginning of a new session
func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

// Cleanup is called at the end of a session
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim processes messages from a topic partition. Feeds are
// buffered and only the newest feed per tournament in a batch is applied.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	cfg := h.consumer.config
	logger := h.consumer.logger
	batch := make([]domain.ScoreFeed, 0, cfg.BatchSize)
	batchTimer := time.NewTimer(cfg.BatchTimeout)
	defer batchTimer.Stop()

	processBatch := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		feeds := Latest(batch)
		for _, feed := range feeds {
			if err := h.consumer.handler.IngestScores(ctx, feed); err != nil {
				logger.Error("failed to ingest feed",
					"tournament_id", feed.TournamentID,
					"golfers", len(feed.Scores),
					"error", err,
				)
			}
		}
		logger.Debug("processed batch", "messages", len(batch), "feeds", len(feeds))

		batch = batch[:0]
	}

	for {
		select {
		case <-session.Context().Done():
			processBatch()
			return nil

		case <-batchTimer.C:
			processBatch()
			batchTimer.Reset(cfg.BatchTimeout)

		case message, ok := <-claim.Messages():
			if !ok {
				processBatch()
				return nil
			}

			feed, err := Decode(message.Value)
			if err != nil {
				logger.Warn("dropping score feed message",
					"error", err,
					"offset", message.Offset,
					"partition", message.Partition,
				)
				session.MarkMessage(message, "")
				continue
			}

			batch = append(batch, feed)
			session.MarkMessage(message, "")

			if len(batch) >= cfg.BatchSize {
				processBatch()
				batchTimer.Reset(cfg.BatchTimeout)
			}
		}
	}
}

// Decode parses and checks a score feed message
func Decode(data []byte) (domain.ScoreFeed, error) {
	var feed domain.ScoreFeed
	if err := json.Unmarshal(data, &feed); err != nil {
		return feed, fmt.Errorf("unmarshaling feed: %w", err)
	}
	if feed.TournamentID == "" {
		return feed, fmt.Errorf("%w: missing tournament_id", domain.ErrInvalidRequest)
	}
	for i, s := range feed.Scores {
		if s.Name == "" {
			return feed, fmt.Errorf("%w: score %d has no golfer name", domain.ErrInvalidRequest, i)
		}
	}
	return feed, nil
}

// Latest keeps the newest feed for each tournament, in first-seen order.
// A later message wins a timestamp tie.
func Latest(feeds []domain.ScoreFeed) []domain.ScoreFeed {
	index := make(map[string]int, len(feeds))
	out := make([]domain.ScoreFeed, 0, len(feeds))
	for _, f := range feeds {
		i, seen := index[f.TournamentID]
		if !seen {
			index[f.TournamentID] = len(out)
			out = append(out, f)
			continue
		}
		if !f.Timestamp.Before(out[i].Timestamp) {
			out[i] = f
		}
	}
	return out
}
