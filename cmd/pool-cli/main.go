// Command pool-cli edits a user's teams and follows the leaderboard through
// the pool API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairway-fantasy/internal/apiclient"
	"github.com/fairway-fantasy/internal/config"
	"github.com/fairway-fantasy/internal/poller"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	server := flag.String("server", "http://localhost:8080", "Pool API base URL")
	pin := flag.String("pin", os.Getenv("POOL_PIN"), "Login PIN (defaults to $POOL_PIN)")
	tournamentID := flag.String("tournament", "", "Tournament ID")
	timeout := flag.Duration("timeout", 30*time.Second, "Timeout for one-shot commands")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Debug("using default config", "error", err)
		cfg = config.DefaultConfig()
	}

	if *pin == "" || *tournamentID == "" {
		fmt.Fprintln(os.Stderr, "-pin and -tournament are required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if flag.Arg(0) != "watch" {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	a := &app{
		client:   apiclient.New(*server, logger),
		watchCfg: poller.ConfigFrom(&cfg.Pool),
		out:      os.Stdout,
		logger:   logger,
	}
	if err := a.run(ctx, *pin, *tournamentID, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
