// Command score-producer publishes a simulated golf tournament to the score
// feed topic, one feed per simulated hole.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/kafka"
)

func main() {
	// Command line flags
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "golf-scores", "Kafka topic")
	tournamentID := flag.String("tournament", "", "Tournament ID to publish scores for")
	size := flag.Int("golfers", 30, "Number of golfers in the field")
	interval := flag.Duration("interval", 2*time.Second, "Time between simulated holes")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *tournamentID == "" {
		logger.Error("-tournament is required")
		os.Exit(2)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("  Score Feed Producer")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("  Brokers:     %s\n", *brokers)
	fmt.Printf("  Topic:       %s\n", *topic)
	fmt.Printf("  Tournament:  %s\n", *tournamentID)
	fmt.Printf("  Golfers:     %d\n", *size)
	fmt.Printf("  Interval:    %s\n", *interval)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	publisher, err := kafka.NewPublisher(strings.Split(*brokers, ","), *topic, logger)
	if err != nil {
		logger.Error("failed to create publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	f := newField(*size, *seed)
	publish := func() bool {
		feed := domain.ScoreFeed{
			TournamentID: *tournamentID,
			Scores:       f.snapshot(),
			Final:        f.final(),
			Timestamp:    time.Now().UTC(),
		}
		if err := publisher.Publish(feed); err != nil {
			logger.Error("failed to publish feed", "error", err)
			return false
		}
		return true
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	sent, failed := 0, 0
	for {
		select {
		case <-sigChan:
			fmt.Println("\nShutting down...")
			fmt.Printf("Sent: %d, Errors: %d\n", sent, failed)
			return

		case <-ticker.C:
			f.step()
			if publish() {
				sent++
			} else {
				failed++
			}
			if f.final() {
				fmt.Printf("Tournament final. Sent: %d, Errors: %d\n", sent, failed)
				return
			}
			if sent%18 == 0 {
				logger.Info("progress", "round", f.round, "sent", sent, "errors", failed)
			}
		}
	}
}
