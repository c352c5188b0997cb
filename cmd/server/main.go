package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"stockwatch/internal/app/di"
	"stockwatch/internal/app/router"
	quoteshandler "stockwatch/internal/feature/quotes/transport/handler"
	"stockwatch/internal/feature/refresh/scheduler"
	refreshhandler "stockwatch/internal/feature/refresh/transport/handler"
	watchlisthandler "stockwatch/internal/feature/watchlist/transport/handler"
	"stockwatch/internal/platform/config"
	infradb "stockwatch/internal/platform/db"
	platformhandler "stockwatch/internal/platform/http/handler"
	"stockwatch/internal/platform/logger"
	"stockwatch/internal/platform/notify"
	infraredis "stockwatch/internal/platform/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	syncLog, err := logger.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = syncLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.Open(cfg.DB)
	if err != nil {
		return err
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
	} else if tmp != nil {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	hub := notify.NewHub()
	defer hub.Close()

	app := di.NewApp(cfg, db, rdb, hub)
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("failed to close notifier", "error", err)
		}
	}()

	if rdb != nil {
		relay := notify.NewRedisRelay(rdb, notify.DefaultChannel)
		go func() {
			if err := relay.Run(ctx, hub, nil); err != nil {
				slog.Error("redis relay stopped", "error", err)
			}
		}()
	}

	// Scheduler
	checker, err := scheduler.NewDialChecker(cfg.TwelveData.BaseURL, 3*time.Second)
	if err != nil {
		return err
	}
	sched := scheduler.New(app.Refresh.Run, checker, scheduler.Config{
		Period:         cfg.Refresh.Period,
		InitialBackoff: cfg.Refresh.InitialBackoff,
	})
	defer sched.Stop()

	// Handler
	health := platformhandler.NewHealthHandler(healthChecks(db, rdb)...)
	h := router.Handlers{
		Health:    health,
		Quotes:    quoteshandler.NewQuotesHandler(app.Quotes),
		Updates:   quoteshandler.NewUpdatesHandler(hub),
		Watchlist: watchlisthandler.NewWatchlistHandler(app.Watchlist, sched, app.QuoteRepo, app.Notifier),
		Sync:      refreshhandler.NewSyncHandler(sched),
	}

	if cfg.JWT.Secret == "" {
		slog.Warn("JWT_SECRET is not set. Mutating routes will answer 500 until it is configured.")
	}

	srv := &http.Server{
		Addr:              cfg.App.Port,
		Handler:           router.NewRouter(h, cfg.JWT.Secret),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sched.Initialize(ctx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.App.Port, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
