// Package usecase はquotesフィーチャーの読み取りモデル（一覧・詳細・ウィジェット）を組み立てます。
package usecase

import (
	"context"
	"fmt"

	"stockwatch/internal/feature/quotes/domain/entity"
	wlentity "stockwatch/internal/feature/watchlist/domain/entity"
	"stockwatch/internal/shared/history"
)

// QuoteReader は表示に必要な読み取り操作です。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type QuoteReader interface {
	FindAll(ctx context.Context) ([]entity.Quote, error)
	FindBySymbol(ctx context.Context, symbol string) (entity.Quote, error)
}

// QuoteRepository はquotesテーブルへの全操作です。adapters と cache が実装します。
type QuoteRepository interface {
	QuoteReader
	Exists(ctx context.Context, symbol string) (bool, error)
	UpsertBatch(ctx context.Context, quotes []entity.Quote) error
	DeleteBySymbols(ctx context.Context, symbols []string) error
}

// DisplayModeReader は現在の表示モードを返します。
type DisplayModeReader interface {
	GetDisplayMode(ctx context.Context) (wlentity.DisplayMode, error)
}

type quotesUsecase struct {
	quotes      QuoteReader
	mode        DisplayModeReader
	chartWindow int
}

// NewQuotesUsecase はquotesUsecaseを生成します。chartWindowが0以下なら52週を使います。
func NewQuotesUsecase(quotes QuoteReader, mode DisplayModeReader, chartWindow int) *quotesUsecase {
	if chartWindow <= 0 {
		chartWindow = history.DefaultWeeksOnChart
	}
	return &quotesUsecase{quotes: quotes, mode: mode, chartWindow: chartWindow}
}

// ListQuotes は保存済みの全銘柄を表示モードに従って整形して返します。
func (u *quotesUsecase) ListQuotes(ctx context.Context) ([]entity.QuoteRow, error) {
	mode, err := u.mode.GetDisplayMode(ctx)
	if err != nil {
		return nil, fmt.Errorf("get display mode: %w", err)
	}

	qs, err := u.quotes.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find quotes: %w", err)
	}

	rows := make([]entity.QuoteRow, 0, len(qs))
	for _, q := range qs {
		rows = append(rows, toRow(q, mode))
	}
	return rows, nil
}

// ListWidgetRows はウィジェット用の行を返します。内容は一覧と同じです。
func (u *quotesUsecase) ListWidgetRows(ctx context.Context) ([]entity.QuoteRow, error) {
	return u.ListQuotes(ctx)
}

// GetQuoteDetail は1銘柄の行とチャート系列を返します。
func (u *quotesUsecase) GetQuoteDetail(ctx context.Context, symbol string) (entity.QuoteDetail, error) {
	mode, err := u.mode.GetDisplayMode(ctx)
	if err != nil {
		return entity.QuoteDetail{}, fmt.Errorf("get display mode: %w", err)
	}

	q, err := u.quotes.FindBySymbol(ctx, symbol)
	if err != nil {
		return entity.QuoteDetail{}, err
	}

	return entity.QuoteDetail{
		QuoteRow: toRow(q, mode),
		Chart:    history.ChartData(q.History, u.chartWindow),
	}, nil
}

func toRow(q entity.Quote, mode wlentity.DisplayMode) entity.QuoteRow {
	change := FormatAbsoluteChange(q.AbsoluteChange)
	if mode == wlentity.DisplayModePercentage {
		change = FormatPercentageChange(q.PercentageChange)
	}
	return entity.QuoteRow{
		Symbol:           q.Symbol,
		Price:            q.Price,
		AbsoluteChange:   q.AbsoluteChange,
		PercentageChange: q.PercentageChange,
		PriceText:        FormatPrice(q.Price),
		ChangeText:       change,
		Up:               q.AbsoluteChange > 0,
	}
}
