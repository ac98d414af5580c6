package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"neuranest-explorer/internal/explorer/config"
	delivery "neuranest-explorer/internal/explorer/delivery/http"
	_ "neuranest-explorer/internal/explorer/docs"
	"neuranest-explorer/internal/explorer/repository"
	"neuranest-explorer/internal/explorer/service"
	"neuranest-explorer/pkg/logger"
	"neuranest-explorer/pkg/metrics"
	"neuranest-explorer/pkg/redis"
	"neuranest-explorer/pkg/telegram"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the explorer API",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Explorer Service", logger.Field("name", cfg.App.Name))

	m := metrics.New("explorer")

	// Redis and Telegram are optional sinks for settled import jobs.
	var redisClient *goredis.Client
	if cfg.Redis.Enabled() {
		rc, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer rc.Close()
		redisClient = rc.Client
	}

	var notifier telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	fallback := repository.StaticToken(cfg.Upstream.Token)
	client, err := repository.NewClient(cfg.Upstream, fallback, appLogger, repository.WithMetrics(m))
	if err != nil {
		appLogger.Fatal("Failed to initialize upstream client", logger.ErrorField(err))
	}

	snapshot := service.NewSnapshotService(repository.NewTopicRepository(client), service.SnapshotConfig{
		Cron:                  cfg.Explorer.SnapshotCron,
		PageSize:              cfg.Explorer.SnapshotPageSize,
		Concurrency:           cfg.Explorer.SnapshotConcurrency,
		IncludeExplainability: cfg.Explorer.IncludeExplainability,
	}, appLogger, m)
	if err := snapshot.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start insights snapshot", logger.ErrorField(err))
	}
	defer snapshot.Stop()

	registry := service.NewSessionRegistry(service.SessionDeps{
		Client:       client,
		FallbackTok:  fallback,
		DetailCache:  service.NewDetailCache(cfg.Explorer.DrillDownCacheTTL),
		Redis:        redisClient,
		StreamMaxLen: cfg.Redis.StreamMaxLen,
		Telegram:     notifier,
		Config:       cfg.Explorer,
		Logger:       appLogger,
		Metrics:      m,
	})
	defer registry.Shutdown()

	e := delivery.NewRouter(delivery.RouterDeps{
		Registry: registry,
		Explorer: service.NewExplorerService(snapshot, cfg.Explorer.InsightsLimit),
		Metrics:  m,
		Logger:   appLogger,
	})

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title NeuraNest Explorer API
// @version 1.0
// @description Faceted trend exploration, score explanations, whitespace heatmap, bulk imports and watchlist.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "explorer-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-explorer.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing explorer-service CLI: %s\n", err)
		os.Exit(1)
	}
}
