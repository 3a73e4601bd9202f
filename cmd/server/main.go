package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/listingwatch/listingwatch/internal/api"
	"github.com/listingwatch/listingwatch/internal/config"
	"github.com/listingwatch/listingwatch/internal/market"
	"github.com/listingwatch/listingwatch/internal/notify"
	"github.com/listingwatch/listingwatch/internal/recovery"
	"github.com/listingwatch/listingwatch/internal/scheduler"
	"github.com/listingwatch/listingwatch/internal/store"
	ws "github.com/listingwatch/listingwatch/internal/websocket"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize PostgreSQL
	ctx := context.Background()
	pgStore, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()
	logger.Info("connected to PostgreSQL")

	// Run database migrations
	if err := pgStore.RunMigrations(ctx, "migrations"); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// Initialize Redis (notification rate limiting)
	redisStore, err := store.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisStore.Close()
	logger.Info("connected to Redis")

	// Proxy pool is optional; without it, blocked fetches are surfaced
	// instead of retried.
	proxies, err := recovery.LoadProxyList(cfg.ProxyListFile)
	if err != nil {
		logger.Error("failed to load proxy list", "error", err)
		os.Exit(1)
	}
	if proxies != nil {
		logger.Info("proxy pool loaded", "size", proxies.Size())
	} else {
		logger.Info("no proxy pool configured, running without proxy rotation")
	}

	// Marketplace clients share the store as their dedup ledger but
	// each own their transport and recovery state.
	clientCfg := market.Config{
		FetchTimeout: cfg.FetchTimeout,
		Lookback:     time.Duration(cfg.LookbackDays) * 24 * time.Hour,
		Proxies:      proxies,
	}
	registry := market.NewRegistry(
		market.NewVintedClient(pgStore, clientCfg),
		market.NewLeboncoinClient(pgStore, clientCfg),
	)

	// Live dashboard event hub
	hub := ws.NewHub(logger)
	go hub.Run()

	// Notification pipeline
	limiter := notify.NewRateLimiter(redisStore.Client(), logger)
	notifier := notify.NewLogNotifier(logger)
	dispatcher := notify.NewDispatcher(notifier, limiter, hub, logger, cfg.NotifyDelay)

	// Polling engine
	controller := recovery.NewController(logger)
	sched := scheduler.NewScheduler(
		pgStore, registry, controller, dispatcher, logger,
		cfg.PollInterval, cfg.MaxItemsPerCheck,
	)

	schedCtx, stopSched := context.WithCancel(ctx)
	defer stopSched()
	go sched.Start(schedCtx)

	sweeper := scheduler.NewSweeper(pgStore, hub, logger, cfg.RetentionDays)
	if err := sweeper.Start(schedCtx); err != nil {
		logger.Error("failed to start retention sweeper", "error", err)
		os.Exit(1)
	}

	// Setup router
	router := api.NewRouter(pgStore, registry, sched, hub)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Stop the scheduler first so no new cycle begins; a cycle already
	// in flight is allowed to finish.
	stopSched()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
