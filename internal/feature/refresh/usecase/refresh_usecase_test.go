package usecase_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	qentity "stockwatch/internal/feature/quotes/domain/entity"
	"stockwatch/internal/feature/refresh/domain/entity"
	"stockwatch/internal/feature/refresh/usecase"
	"stockwatch/internal/shared/history"
)

var (
	errNetwork = errors.New("network down")
	errDB      = errors.New("database error")
	fixedNow   = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

// fakeWatchlist は監視セットのインメモリ実装です。
type fakeWatchlist struct {
	mu      sync.Mutex
	symbols []string
	removed []string
	getErr  error
}

func (f *fakeWatchlist) GetWatchedSymbols(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return slices.Clone(f.symbols), nil
}

func (f *fakeWatchlist) RemoveSymbol(_ context.Context, symbol string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, symbol)
	f.symbols = slices.DeleteFunc(f.symbols, func(s string) bool { return s == symbol })
	return nil
}

// fakeQuoteStore は保存済み行のインメモリ実装です。
type fakeQuoteStore struct {
	rows        map[string]qentity.Quote
	upsertCalls int
	upsertErr   error
}

func newFakeQuoteStore(existing ...string) *fakeQuoteStore {
	s := &fakeQuoteStore{rows: map[string]qentity.Quote{}}
	for _, sym := range existing {
		s.rows[sym] = qentity.Quote{Symbol: sym, Price: 1, History: "old"}
	}
	return s
}

func (f *fakeQuoteStore) Exists(_ context.Context, symbol string) (bool, error) {
	_, ok := f.rows[symbol]
	return ok, nil
}

func (f *fakeQuoteStore) UpsertBatch(_ context.Context, quotes []qentity.Quote) error {
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, q := range quotes {
		f.rows[q.Symbol] = q
	}
	return nil
}

type spyNotifier struct{ calls int }

func (s *spyNotifier) NotifyDataUpdated(context.Context) error {
	s.calls++
	return nil
}

// noWait は待たないリミッターです。
type noWait struct{}

func (noWait) Wait(ctx context.Context) error { return ctx.Err() }

func (noWait) WaitN(ctx context.Context, _ int) error { return ctx.Err() }

// countingLimiter は消費されたリクエスト数を記録します。
type countingLimiter struct {
	mu    sync.Mutex
	spent int
	err   error
}

func (l *countingLimiter) Wait(ctx context.Context) error { return l.WaitN(ctx, 1) }

func (l *countingLimiter) WaitN(_ context.Context, n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.spent += n
	return nil
}

func (l *countingLimiter) Spent() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.spent
}

func f64(v float64) *float64 { return &v }

func complete(sym string, price, change, pct float64) entity.MarketQuote {
	return entity.MarketQuote{Symbol: sym, Price: f64(price), AbsoluteChange: f64(change), PercentageChange: f64(pct)}
}

type deps struct {
	watchlist *fakeWatchlist
	quotes    *fakeQuoteStore
	market    *MockMarketRepository
	notifier  *spyNotifier
}

func newUsecase(t *testing.T, watched []string, existing ...string) (interface {
	Refresh(context.Context) (usecase.Result, error)
	Sync(context.Context) (usecase.Result, error)
	Run(context.Context) error
}, *deps) {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := &deps{
		watchlist: &fakeWatchlist{symbols: watched},
		quotes:    newFakeQuoteStore(existing...),
		market:    NewMockMarketRepository(ctrl),
		notifier:  &spyNotifier{},
	}
	uc := usecase.NewRefreshUsecase(d.watchlist, d.quotes, d.market, d.notifier, noWait{}, 2)
	uc.SetClock(func() time.Time { return fixedNow })
	return uc, d
}

func TestRefresh_EmptyWatchlistDoesNothing(t *testing.T) {
	t.Parallel()

	uc, d := newUsecase(t, nil)

	res, err := uc.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, usecase.Result{}, res)
	assert.Zero(t, d.quotes.upsertCalls)
	assert.Zero(t, d.notifier.calls)
}

func TestRefresh_ValidAndInvalidSymbol(t *testing.T) {
	t.Parallel()

	uc, d := newUsecase(t, []string{"ZZZZINVALID", "AAPL"})

	d.market.EXPECT().
		GetQuotes(gomock.Any(), []string{"AAPL", "ZZZZINVALID"}).
		Return(map[string]entity.MarketQuote{"AAPL": complete("AAPL", 190.5, 1.2, 0.63)}, nil).
		Times(1)
	d.market.EXPECT().
		GetWeeklyHistory(gomock.Any(), "AAPL", fixedNow.AddDate(-2, 0, 0), fixedNow).
		Return([]history.Point{
			{Millis: 1700000000000, Close: 101.5},
			{Millis: 1699900000000, Close: 99.0},
		}, nil).
		Times(1)

	res, err := uc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL"}, res.Upserted)
	assert.Equal(t, []string{"ZZZZINVALID"}, res.Pruned)
	assert.Empty(t, res.Skipped)

	require.Contains(t, d.quotes.rows, "AAPL")
	aapl := d.quotes.rows["AAPL"]
	assert.Equal(t, 190.5, aapl.Price)
	assert.Equal(t, 1.2, aapl.AbsoluteChange)
	assert.Equal(t, 0.63, aapl.PercentageChange)
	assert.Equal(t, "1700000000000, 101.5\n1699900000000, 99\n", aapl.History)
	assert.Equal(t, fixedNow, aapl.UpdatedAt)
	assert.NotContains(t, d.quotes.rows, "ZZZZINVALID")

	assert.Equal(t, 1, d.quotes.upsertCalls)
	assert.Equal(t, 1, d.notifier.calls)
	assert.Equal(t, []string{"AAPL"}, d.watchlist.symbols)
}

func TestRefresh_IncompleteQuoteWithStoredRowIsKept(t *testing.T) {
	t.Parallel()

	uc, d := newUsecase(t, []string{"AAPL"}, "AAPL")

	d.market.EXPECT().
		GetQuotes(gomock.Any(), gomock.Any()).
		Return(map[string]entity.MarketQuote{"AAPL": {Symbol: "AAPL", Price: f64(1)}}, nil)

	res, err := uc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Empty(t, res.Upserted)
	assert.Empty(t, res.Pruned)
	assert.Equal(t, "old", d.quotes.rows["AAPL"].History, "stored row must stay untouched")
	assert.Equal(t, []string{"AAPL"}, d.watchlist.symbols)
	assert.Empty(t, d.watchlist.removed)
}

func TestRefresh_SymbolRemovedDuringFetch(t *testing.T) {
	t.Parallel()

	uc, d := newUsecase(t, []string{"AAPL", "MSFT", "BAD"})

	d.market.EXPECT().
		GetQuotes(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, symbols []string) (map[string]entity.MarketQuote, error) {
			// 取得中にユーザーが MSFT と BAD を外した
			require.NoError(t, d.watchlist.RemoveSymbol(ctx, "MSFT"))
			require.NoError(t, d.watchlist.RemoveSymbol(ctx, "BAD"))
			return map[string]entity.MarketQuote{
				"AAPL": complete("AAPL", 1, 1, 1),
				"MSFT": complete("MSFT", 2, 2, 2),
			}, nil
		})
	d.market.EXPECT().
		GetWeeklyHistory(gomock.Any(), "AAPL", gomock.Any(), gomock.Any()).
		Return(nil, nil)

	res, err := uc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL"}, res.Upserted)
	assert.Equal(t, []string{"BAD", "MSFT"}, res.Skipped)
	assert.Empty(t, res.Pruned)
	assert.NotContains(t, d.quotes.rows, "MSFT")
	assert.Equal(t, []string{"MSFT", "BAD"}, d.watchlist.removed, "only the user's removals happened")
}

func TestRefresh_FetchErrorWritesNothing(t *testing.T) {
	t.Parallel()

	uc, d := newUsecase(t, []string{"AAPL", "ZZZZINVALID"})

	d.market.EXPECT().GetQuotes(gomock.Any(), gomock.Any()).Return(nil, errNetwork)

	_, err := uc.Refresh(context.Background())

	assert.ErrorIs(t, err, errNetwork)
	assert.Zero(t, d.quotes.upsertCalls)
	assert.Zero(t, d.notifier.calls)
	assert.Empty(t, d.watchlist.removed)
}

func TestRefresh_HistoryErrorKeepsStoredRows(t *testing.T) {
	t.Parallel()

	uc, d := newUsecase(t, []string{"AAPL", "MSFT", "BAD"}, "AAPL")

	d.market.EXPECT().
		GetQuotes(gomock.Any(), gomock.Any()).
		Return(map[string]entity.MarketQuote{
			"AAPL": complete("AAPL", 1, 1, 1),
			"MSFT": complete("MSFT", 2, 2, 2),
		}, nil)
	d.market.EXPECT().
		GetWeeklyHistory(gomock.Any(), "AAPL", gomock.Any(), gomock.Any()).
		Return(nil, errNetwork)

	_, err := uc.Refresh(context.Background())

	assert.ErrorIs(t, err, errNetwork)
	assert.Equal(t, "old", d.quotes.rows["AAPL"].History, "stored history must stay untouched")
	assert.Equal(t, 1.0, d.quotes.rows["AAPL"].Price)
	assert.NotContains(t, d.quotes.rows, "MSFT")
	assert.Zero(t, d.quotes.upsertCalls)
	assert.Zero(t, d.notifier.calls)
	assert.Empty(t, d.watchlist.removed)
}

func TestRefresh_ChargesLimiterForQuoteBatch(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	market := NewMockMarketRepository(ctrl)
	limiter := &countingLimiter{}
	quotes := newFakeQuoteStore()
	uc := usecase.NewRefreshUsecase(
		&fakeWatchlist{symbols: []string{"AAPL", "MSFT", "GOOG"}},
		quotes, market, &spyNotifier{}, limiter, 2,
	)

	gomock.InOrder(
		market.EXPECT().
			GetQuotes(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, symbols []string) (map[string]entity.MarketQuote, error) {
				assert.Equal(t, 3, limiter.Spent(), "batch must be charged one request per symbol before the call")
				return map[string]entity.MarketQuote{"AAPL": complete("AAPL", 1, 1, 1)}, nil
			}),
		market.EXPECT().
			GetWeeklyHistory(gomock.Any(), "AAPL", gomock.Any(), gomock.Any()).
			Return(nil, nil),
	)

	_, err := uc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, limiter.Spent())
}

func TestRefresh_LimiterCanceledBeforeBatchWritesNothing(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	market := NewMockMarketRepository(ctrl)
	quotes := newFakeQuoteStore()
	uc := usecase.NewRefreshUsecase(
		&fakeWatchlist{symbols: []string{"AAPL"}},
		quotes, market, &spyNotifier{}, &countingLimiter{err: context.Canceled}, 2,
	)

	_, err := uc.Refresh(context.Background())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, quotes.upsertCalls)
}

func TestRefresh_CanceledDuringHistoryWritesNothing(t *testing.T) {
	t.Parallel()

	uc, d := newUsecase(t, []string{"AAPL"})
	ctx, cancel := context.WithCancel(context.Background())

	d.market.EXPECT().
		GetQuotes(gomock.Any(), gomock.Any()).
		Return(map[string]entity.MarketQuote{"AAPL": complete("AAPL", 1, 1, 1)}, nil)
	d.market.EXPECT().
		GetWeeklyHistory(gomock.Any(), "AAPL", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, symbol string, from, to time.Time) ([]history.Point, error) {
			cancel()
			return nil, ctx.Err()
		})

	_, err := uc.Refresh(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, d.quotes.upsertCalls)
	assert.Zero(t, d.notifier.calls)
}

func TestRefresh_UpsertErrorSkipsNotifyAndPrune(t *testing.T) {
	t.Parallel()

	uc, d := newUsecase(t, []string{"AAPL", "BAD"})
	d.quotes.upsertErr = errDB

	d.market.EXPECT().
		GetQuotes(gomock.Any(), gomock.Any()).
		Return(map[string]entity.MarketQuote{"AAPL": complete("AAPL", 1, 1, 1)}, nil)
	d.market.EXPECT().
		GetWeeklyHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)

	_, err := uc.Refresh(context.Background())

	assert.ErrorIs(t, err, errDB)
	assert.Zero(t, d.notifier.calls)
	assert.Empty(t, d.watchlist.removed)
}

func TestRefresh_WatchlistErrorAborts(t *testing.T) {
	t.Parallel()

	uc, d := newUsecase(t, []string{"AAPL"})
	d.watchlist.getErr = errDB

	_, err := uc.Refresh(context.Background())

	assert.ErrorIs(t, err, errDB)
	assert.Zero(t, d.quotes.upsertCalls)
}

func TestRun_ReturnsErrorForScheduler(t *testing.T) {
	t.Parallel()

	uc, d := newUsecase(t, []string{"AAPL"})
	d.market.EXPECT().GetQuotes(gomock.Any(), gomock.Any()).Return(nil, errNetwork)

	assert.ErrorIs(t, uc.Run(context.Background()), errNetwork)
}

func TestRun_RecoversPanic(t *testing.T) {
	t.Parallel()

	uc, d := newUsecase(t, []string{"AAPL"})
	d.market.EXPECT().
		GetQuotes(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, symbols []string) (map[string]entity.MarketQuote, error) {
			panic("boom")
		})

	err := uc.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestSync_CollapsesConcurrentCallers(t *testing.T) {
	t.Parallel()

	uc, d := newUsecase(t, []string{"AAPL"}, "AAPL")

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	d.market.EXPECT().
		GetQuotes(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, symbols []string) (map[string]entity.MarketQuote, error) {
			once.Do(func() { close(entered) })
			<-release
			return map[string]entity.MarketQuote{}, nil
		}).
		Times(1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = uc.Sync(context.Background())
	}()
	<-entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[1] = uc.Sync(context.Background())
	}()
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}
