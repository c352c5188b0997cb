package di

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	quotesadapters "stockwatch/internal/feature/quotes/adapters"
	quoteshandler "stockwatch/internal/feature/quotes/transport/handler"
	quotesusecase "stockwatch/internal/feature/quotes/usecase"
	refreshusecase "stockwatch/internal/feature/refresh/usecase"
	watchlisthandler "stockwatch/internal/feature/watchlist/transport/handler"
	watchlistusecase "stockwatch/internal/feature/watchlist/usecase"
	"stockwatch/internal/platform/cache"
	"stockwatch/internal/platform/config"
	"stockwatch/internal/platform/notify"
	"stockwatch/internal/shared/history"
	"stockwatch/internal/shared/ratelimiter"
)

// Refresher is the refresh job as seen by the server and stockctl.
type Refresher interface {
	Refresh(ctx context.Context) (refreshusecase.Result, error)
	Sync(ctx context.Context) (refreshusecase.Result, error)
	Run(ctx context.Context) error
}

// App holds the wired usecases shared by cmd/server and cmd/stockctl.
type App struct {
	Watchlist watchlisthandler.WatchlistUsecase
	Quotes    quoteshandler.QuotesUsecase
	QuoteRepo quotesusecase.QuoteRepository
	Refresh   Refresher
	Notifier  notify.Notifier

	closeNotifier func() error
}

// NewApp wires repositories, usecases and notifiers.
// rdb and hub may be nil.
func NewApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client, hub *notify.Hub) *App {
	prefs := NewPreferenceRepository(rdb, db)
	watchlist := watchlistusecase.NewWatchlistUsecase(prefs, cfg.Refresh.DefaultSymbols)

	// キャッシュTTLは定期同期の間隔に合わせる
	quoteRepo := cache.NewCachingQuoteRepository(rdb, cfg.Refresh.Period, quotesadapters.NewQuoteRepository(db), "quotes")
	quotes := quotesusecase.NewQuotesUsecase(quoteRepo, watchlist, history.DefaultWeeksOnChart)

	notifier, closeNotifier := NewNotifier(rdb, hub, cfg.Kafka)
	limiter := ratelimiter.NewRateLimiter(cfg.TwelveData.RequestsPerMinute, time.Minute)
	refresh := refreshusecase.NewRefreshUsecase(
		watchlist,
		quoteRepo,
		NewMarket(cfg.TwelveData),
		notifier,
		limiter,
		cfg.Refresh.YearsOfHistory,
	)

	return &App{
		Watchlist:     watchlist,
		Quotes:        quotes,
		QuoteRepo:     quoteRepo,
		Refresh:       refresh,
		Notifier:      notifier,
		closeNotifier: closeNotifier,
	}
}

// Close releases resources owned by the App. The db and Redis clients are owned by the caller.
func (a *App) Close() error {
	return a.closeNotifier()
}
