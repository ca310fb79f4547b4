package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fairway-fantasy/internal/config"
	"github.com/fairway-fantasy/internal/domain"
	"github.com/fairway-fantasy/internal/handler"
	"github.com/fairway-fantasy/internal/history"
	"github.com/fairway-fantasy/internal/kafka"
	"github.com/fairway-fantasy/internal/postgres"
	"github.com/fairway-fantasy/internal/provider"
	"github.com/fairway-fantasy/internal/redis"
	"github.com/fairway-fantasy/internal/service"
	"github.com/fairway-fantasy/internal/websocket"
	"github.com/fairway-fantasy/internal/worker"
)

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	loadErr := err
	if err != nil {
		cfg = config.DefaultConfig()
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)
	if loadErr != nil {
		logger.Warn("failed to load config file, using defaults", "error", loadErr)
	}

	location := time.Local
	if cfg.Pool.TimeZone != "" {
		loc, err := time.LoadLocation(cfg.Pool.TimeZone)
		if err != nil {
			logger.Error("invalid time zone", "time_zone", cfg.Pool.TimeZone, "error", err)
			os.Exit(1)
		}
		location = loc
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis
	logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
	scoreCache, err := redis.NewScoreCache(&cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer scoreCache.Close()
	logger.Info("connected to Redis")

	// Initialize PostgreSQL
	logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	postgresRepo, err := postgres.NewRepository(&cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer postgresRepo.Close()
	logger.Info("connected to PostgreSQL")

	// Run database migrations
	if err := postgresRepo.RunMigrations(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub initialized")

	// Initialize services
	providerClient := provider.NewClient(&cfg.Provider, logger)

	leaderboardService := service.NewLeaderboardService(
		postgresRepo,
		postgresRepo,
		postgresRepo,
		scoreCache,
		providerClient,
		&cfg.Pool,
		logger,
	)
	leaderboardService.SetLocation(location)

	// Set the WebSocket hub on the service for broadcasting
	leaderboardService.SetHub(wsHub)

	// Past seasons for the champions record
	loadHistory := history.Default
	if cfg.Pool.HistoryFile != "" {
		loadHistory = func() ([]domain.HistoryYear, error) { return history.LoadFile(cfg.Pool.HistoryFile) }
	}
	pastSeasons, err := loadHistory()
	if err != nil {
		logger.Error("failed to load pool history", "error", err)
		os.Exit(1)
	}

	services := handler.Services{
		Users:       service.NewUserService(postgresRepo, &cfg.Pool, logger),
		Teams:       service.NewTeamService(postgresRepo, postgresRepo, postgresRepo, logger),
		Tournaments: service.NewTournamentService(postgresRepo, postgresRepo, postgresRepo, scoreCache, logger),
		Leaderboard: leaderboardService,
		History:     service.NewHistoryService(postgresRepo, postgresRepo, scoreCache, pastSeasons, logger),
	}

	// Initialize sync worker
	syncWorker := worker.NewSyncWorker(
		postgresRepo,
		leaderboardService,
		&cfg.Sync,
		cfg.Pool.PollFallback,
		logger,
	)

	// Rebuild cached standings on startup (recovery)
	if err := syncWorker.Warm(ctx); err != nil {
		logger.Warn("failed to warm standings on startup", "error", err)
	}

	// Start sync worker
	if cfg.Sync.Enabled {
		if err := syncWorker.Start(ctx); err != nil {
			logger.Error("failed to start sync worker", "error", err)
			os.Exit(1)
		}
	}

	// Initialize Kafka consumer for the live score feed
	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka consumer",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		var err error
		kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, leaderboardService, logger)
		if err != nil {
			logger.Warn("failed to create Kafka consumer, continuing without Kafka", "error", err)
		} else {
			if err := kafkaConsumer.Start(); err != nil {
				logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
				kafkaConsumer = nil
			} else {
				logger.Info("Kafka consumer started successfully")
			}
		}
	}

	// Initialize HTTP handler with WebSocket hub
	httpHandler := handler.NewHandler(services, wsHub, map[string]handler.Pinger{
		"postgres": postgresRepo,
		"redis":    scoreCache,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		logger.Info("WebSocket endpoint available at /ws")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop WebSocket hub
	wsHub.Stop()

	// Stop Kafka consumer
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}

	// Stop sync worker
	if err := syncWorker.Stop(); err != nil {
		logger.Error("failed to stop sync worker", "error", err)
	}

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("server stopped")
}
