package kafka

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/fairway-fantasy/internal/domain"
)

// Publisher writes score feeds to Kafka, keyed by tournament so one
// tournament's feeds stay ordered on a partition
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewPublisher creates a synchronous producer for the feed topic
func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Flush.Frequency = 100 * time.Millisecond
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating producer: %w", err)
	}
	return &Publisher{producer: producer, topic: topic, logger: logger}, nil
}

// Publish sends one feed
func (p *Publisher) Publish(feed domain.ScoreFeed) error {
	data, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("marshaling feed: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(feed.TournamentID),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return fmt.Errorf("sending feed: %w", err)
	}

	p.logger.Debug("published feed",
		"tournament_id", feed.TournamentID,
		"golfers", len(feed.Scores),
		"partition", partition,
		"offset", offset,
	)
	return nil
}

// Close flushes and closes the producer
func (p *Publisher) Close() error {
	return p.producer.Close()
}
