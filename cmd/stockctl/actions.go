package main

import (
	"context"
	"log/slog"

	"stockwatch/internal/feature/watchlist/domain/entity"
)

// removeSymbol mirrors DELETE /watchlist/:symbol.
func removeSymbol(ctx context.Context, s *session, raw string) error {
	sym, err := entity.NormalizeSymbol(raw)
	if err != nil {
		return err
	}
	if err := s.app.Watchlist.RemoveSymbol(ctx, sym); err != nil {
		return err
	}
	if err := s.app.QuoteRepo.DeleteBySymbols(ctx, []string{sym}); err != nil {
		return err
	}
	notifyBestEffort(ctx, s)
	return nil
}

func notifyBestEffort(ctx context.Context, s *session) {
	if err := s.app.Notifier.NotifyDataUpdated(ctx); err != nil {
		slog.Warn("failed to notify data update", "error", err)
	}
}
