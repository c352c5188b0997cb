// Package usecase は監視銘柄セットと表示モードの読み書きを実装します。
package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"stockwatch/internal/feature/watchlist/domain/entity"
)

// PreferenceRepository は設定値の永続化レイヤーです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PreferenceRepository interface {
	// LoadSymbols は保存済みの銘柄セットと、初期化済みフラグを返します。
	LoadSymbols(ctx context.Context) (symbols []string, initialized bool, err error)
	// SaveSymbols はセットを置き換え、初期化済みフラグも立てます。
	SaveSymbols(ctx context.Context, symbols []string) error
	// LoadDisplayMode は保存値を返します。未設定なら "" です。
	LoadDisplayMode(ctx context.Context) (string, error)
	SaveDisplayMode(ctx context.Context, mode string) error
}

type watchlistUsecase struct {
	repo     PreferenceRepository
	defaults []string

	// 読み込み→変更→書き込みをプロセス内で直列化する
	mu sync.Mutex
}

// NewWatchlistUsecase はwatchlistUsecaseを生成します。defaultsは初回起動時に保存される銘柄です。
func NewWatchlistUsecase(repo PreferenceRepository, defaults []string) *watchlistUsecase {
	norm := make([]string, 0, len(defaults))
	for _, s := range defaults {
		if n, err := entity.NormalizeSymbol(s); err == nil {
			norm = append(norm, n)
		}
	}
	return &watchlistUsecase{repo: repo, defaults: sortedSet(norm)}
}

// GetWatchedSymbols は監視銘柄を昇順で返します。
// 初回（フラグ未設定）のみデフォルトを保存して返し、以降は保存値をそのまま返します。
func (u *watchlistUsecase) GetWatchedSymbols(ctx context.Context) ([]string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.load(ctx)
}

// AddSymbol は銘柄を追加します。既に含まれていれば何もしません。
func (u *watchlistUsecase) AddSymbol(ctx context.Context, symbol string) error {
	s, err := entity.NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	return u.update(ctx, func(set []string) []string {
		return append(set, s)
	})
}

// RemoveSymbol は銘柄を削除します。含まれていなければ何もしません。
func (u *watchlistUsecase) RemoveSymbol(ctx context.Context, symbol string) error {
	s, err := entity.NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	return u.update(ctx, func(set []string) []string {
		return slices.DeleteFunc(set, func(x string) bool { return x == s })
	})
}

// GetDisplayMode は現在の表示モードを返します。未設定なら absolute です。
func (u *watchlistUsecase) GetDisplayMode(ctx context.Context) (entity.DisplayMode, error) {
	raw, err := u.repo.LoadDisplayMode(ctx)
	if err != nil {
		return "", fmt.Errorf("load display mode: %w", err)
	}
	return entity.ParseDisplayMode(raw), nil
}

// ToggleDisplayMode は表示モードを反転して保存し、新しい値を返します。
func (u *watchlistUsecase) ToggleDisplayMode(ctx context.Context) (entity.DisplayMode, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	cur, err := u.GetDisplayMode(ctx)
	if err != nil {
		return "", err
	}
	next := cur.Toggle()
	if err := u.repo.SaveDisplayMode(ctx, string(next)); err != nil {
		return "", fmt.Errorf("save display mode: %w", err)
	}
	return next, nil
}

func (u *watchlistUsecase) update(ctx context.Context, fn func([]string) []string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	cur, err := u.load(ctx)
	if err != nil {
		return err
	}
	next := sortedSet(fn(slices.Clone(cur)))
	if slices.Equal(cur, next) {
		return nil
	}
	if err := u.repo.SaveSymbols(ctx, next); err != nil {
		return fmt.Errorf("save symbols: %w", err)
	}
	return nil
}

// load はロック取得済みの前提で呼び出します。
func (u *watchlistUsecase) load(ctx context.Context) ([]string, error) {
	symbols, initialized, err := u.repo.LoadSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	if initialized {
		return sortedSet(symbols), nil
	}

	defaults := slices.Clone(u.defaults)
	if err := u.repo.SaveSymbols(ctx, defaults); err != nil {
		return nil, fmt.Errorf("seed default symbols: %w", err)
	}
	return defaults, nil
}

func sortedSet(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out
}
