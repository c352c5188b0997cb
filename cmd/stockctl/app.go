package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/subcommands"
	redisv9 "github.com/redis/go-redis/v9"

	"stockwatch/internal/app/di"
	"stockwatch/internal/platform/config"
	infradb "stockwatch/internal/platform/db"
	"stockwatch/internal/platform/logger"
	infraredis "stockwatch/internal/platform/redis"
)

// session は1回のサブコマンド実行で使う配線済みのAppです。
type session struct {
	cfg *config.Config
	app *di.App

	closers []func() error
}

// openSession は設定を読み、DBと（有効なら）Redisに接続してAppを組み立てます。
// stockctl はHubを持たないため、通知はRedis経由でサーバーへ届きます。
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg}

	syncLog, err := logger.Setup(cfg.Log)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, syncLog)

	db, err := infradb.Open(cfg.DB)
	if err != nil {
		s.close()
		return nil, err
	}

	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable; widgets will not be notified", "error", err)
	} else if tmp != nil {
		rdb = tmp
		s.closers = append(s.closers, rdb.Close)
	}

	s.app = di.NewApp(cfg, db, rdb, nil)
	s.closers = append(s.closers, s.app.Close)
	return s, nil
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

// withSession はセッションを開いてfnを実行し、エラーを標準エラーに出します。
func withSession(ctx context.Context, fn func(ctx context.Context, s *session) error) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.close()

	if err := fn(ctx, s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
