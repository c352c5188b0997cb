// Package usecase は監視銘柄の株価を取得し、保存済みの行と突き合わせるリフレッシュジョブを実装します。
package usecase

//go:generate mockgen -package=usecase_test -destination=mock_market_repository_test.go stockwatch/internal/feature/refresh/usecase MarketRepository

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"

	qentity "stockwatch/internal/feature/quotes/domain/entity"
	"stockwatch/internal/feature/refresh/domain/entity"
	"stockwatch/internal/shared/history"
	"stockwatch/internal/shared/ratelimiter"
)

// MarketRepository はリモートの株価ソースです。
type MarketRepository interface {
	// GetQuotes は1回のバッチ要求で銘柄の株価を返します。解決できない銘柄は含まれないか、値がnilです。
	GetQuotes(ctx context.Context, symbols []string) (map[string]entity.MarketQuote, error)
	// GetWeeklyHistory は[from, to]の週次終値を新しい順で返します。
	GetWeeklyHistory(ctx context.Context, symbol string, from, to time.Time) ([]history.Point, error)
}

// WatchlistStore は監視銘柄セットの読み取りと削除です。
type WatchlistStore interface {
	GetWatchedSymbols(ctx context.Context) ([]string, error)
	RemoveSymbol(ctx context.Context, symbol string) error
}

// QuoteStore は保存済み株価行への書き込みです。
type QuoteStore interface {
	Exists(ctx context.Context, symbol string) (bool, error)
	UpsertBatch(ctx context.Context, quotes []qentity.Quote) error
}

// Notifier はデータ更新を通知します。
type Notifier interface {
	NotifyDataUpdated(ctx context.Context) error
}

// Result は1回のリフレッシュの結果です。
type Result struct {
	Upserted []string // 行を書き込んだ銘柄
	Pruned   []string // 監視セットから外した銘柄
	Skipped  []string // 取得中に監視から外されていた銘柄
}

type refreshUsecase struct {
	watchlist WatchlistStore
	quotes    QuoteStore
	market    MarketRepository
	notifier  Notifier
	limiter   ratelimiter.Limiter
	years     int
	now       func() time.Time

	sf singleflight.Group
}

// NewRefreshUsecase はrefreshUsecaseを生成します。yearsOfHistoryは取得する週次履歴の年数です。
func NewRefreshUsecase(
	watchlist WatchlistStore,
	quotes QuoteStore,
	market MarketRepository,
	notifier Notifier,
	limiter ratelimiter.Limiter,
	yearsOfHistory int,
) *refreshUsecase {
	if yearsOfHistory <= 0 {
		yearsOfHistory = 2
	}
	return &refreshUsecase{
		watchlist: watchlist,
		quotes:    quotes,
		market:    market,
		notifier:  notifier,
		limiter:   limiter,
		years:     yearsOfHistory,
		now:       time.Now,
	}
}

// Refresh は1回分の同期を行います。
//
//  1. 監視セットS0を読む（空なら何もしない）
//  2. S0の株価を1回で取得する（銘柄数分のリクエスト枠を消費し、失敗なら何も書かずに終了）
//  3. 監視セットS1を読み直す
//  4. S0の各銘柄について: S1に無ければスキップ、完全な株価なら履歴を取得して書き込み対象に、
//     不完全で保存済みの行も無ければ削除対象にする（履歴の取得失敗は何も書かずに終了）
//  5. 書き込み対象を1回でupsertする
//  6. データ更新を通知する
//  7. 削除対象を監視セットから外す
func (u *refreshUsecase) Refresh(ctx context.Context) (Result, error) {
	var res Result

	s0, err := u.watchlist.GetWatchedSymbols(ctx)
	if err != nil {
		return res, fmt.Errorf("load watched symbols: %w", err)
	}
	if len(s0) == 0 {
		return res, nil
	}
	s0 = slices.Sorted(slices.Values(s0))

	// バッチ要求は銘柄ごとに1リクエスト分として数えられる
	if err := u.limiter.WaitN(ctx, len(s0)); err != nil {
		return res, fmt.Errorf("wait for rate limit: %w", err)
	}
	quotes, err := u.market.GetQuotes(ctx, s0)
	if err != nil {
		return res, fmt.Errorf("fetch quotes: %w", err)
	}

	s1, err := u.watchlist.GetWatchedSymbols(ctx)
	if err != nil {
		return res, fmt.Errorf("reload watched symbols: %w", err)
	}

	now := u.now()
	from := now.AddDate(-u.years, 0, 0)

	var staged []qentity.Quote
	for _, sym := range s0 {
		if !slices.Contains(s1, sym) {
			res.Skipped = append(res.Skipped, sym)
			continue
		}

		q, ok := quotes[sym]
		if ok && q.Complete() {
			hist, err := u.fetchHistory(ctx, sym, from, now)
			if err != nil {
				return Result{}, err
			}
			staged = append(staged, qentity.Quote{
				Symbol:           sym,
				Price:            *q.Price,
				AbsoluteChange:   *q.AbsoluteChange,
				PercentageChange: *q.PercentageChange,
				History:          hist,
				UpdatedAt:        now,
			})
			res.Upserted = append(res.Upserted, sym)
			continue
		}

		exists, err := u.quotes.Exists(ctx, sym)
		if err != nil {
			return Result{}, fmt.Errorf("check stored quote %s: %w", sym, err)
		}
		if !exists {
			res.Pruned = append(res.Pruned, sym)
		}
	}

	if err := u.quotes.UpsertBatch(ctx, staged); err != nil {
		return Result{}, fmt.Errorf("upsert quotes: %w", err)
	}

	if err := u.notifier.NotifyDataUpdated(ctx); err != nil {
		slog.Warn("failed to notify data update", "error", err)
	}

	for _, sym := range res.Pruned {
		if err := u.watchlist.RemoveSymbol(ctx, sym); err != nil {
			slog.Warn("failed to prune invalid symbol", "symbol", sym, "error", err)
		}
	}

	return res, nil
}

// fetchHistory は履歴を取得してエンコードします。履歴が無い場合は空文字列です。
func (u *refreshUsecase) fetchHistory(ctx context.Context, symbol string, from, to time.Time) (string, error) {
	if err := u.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for rate limit: %w", err)
	}

	points, err := u.market.GetWeeklyHistory(ctx, symbol, from, to)
	if err != nil {
		return "", fmt.Errorf("fetch history %s: %w", symbol, err)
	}
	return history.Encode(points), nil
}

// Sync は同時に呼ばれた同期を1回の実行にまとめます。
func (u *refreshUsecase) Sync(ctx context.Context) (Result, error) {
	v, err, shared := u.sf.Do("refresh", func() (any, error) {
		return u.run(ctx)
	})
	if shared {
		slog.Debug("joined in-flight refresh")
	}
	res, _ := v.(Result)
	return res, err
}

// Run はスケジューラから呼ばれるジョブ本体です。エラーはリトライ判断のためそのまま返します。
func (u *refreshUsecase) Run(ctx context.Context) error {
	_, err := u.Sync(ctx)
	return err
}

func (u *refreshUsecase) run(ctx context.Context) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh panicked: %v", r)
			slog.Error("refresh panicked", "panic", r)
		}
	}()

	start := u.now()
	slog.Info("refresh started")

	res, err = u.Refresh(ctx)
	if err != nil {
		slog.Error("refresh failed", "error", err, "elapsed", u.now().Sub(start))
		return res, err
	}

	slog.Info("refresh finished",
		"upserted", len(res.Upserted),
		"pruned", len(res.Pruned),
		"skipped", len(res.Skipped),
		"elapsed", u.now().Sub(start),
	)
	return res, nil
}
