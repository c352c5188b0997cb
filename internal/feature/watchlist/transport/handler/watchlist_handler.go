// Package handler はwatchlistフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockwatch/internal/feature/watchlist/domain/entity"
	"stockwatch/internal/feature/watchlist/transport/http/dto"
)

// WatchlistUsecase は監視銘柄と表示モードのユースケースです。
type WatchlistUsecase interface {
	GetWatchedSymbols(ctx context.Context) ([]string, error)
	AddSymbol(ctx context.Context, symbol string) error
	RemoveSymbol(ctx context.Context, symbol string) error
	GetDisplayMode(ctx context.Context) (entity.DisplayMode, error)
	ToggleDisplayMode(ctx context.Context) (entity.DisplayMode, error)
}

// Syncer は即時同期を要求します。
type Syncer interface {
	SyncImmediately(ctx context.Context)
}

// QuoteRemover は監視から外した銘柄の保存済み行を削除します。
type QuoteRemover interface {
	DeleteBySymbols(ctx context.Context, symbols []string) error
}

// Notifier はウィジェット等へデータ更新を通知します。
type Notifier interface {
	NotifyDataUpdated(ctx context.Context) error
}

// WatchlistHandler は監視銘柄と表示モードのHTTPリクエストを処理します。
type WatchlistHandler struct {
	uc       WatchlistUsecase
	syncer   Syncer
	quotes   QuoteRemover
	notifier Notifier
}

// NewWatchlistHandler はWatchlistHandlerを生成します。
func NewWatchlistHandler(uc WatchlistUsecase, syncer Syncer, quotes QuoteRemover, notifier Notifier) *WatchlistHandler {
	return &WatchlistHandler{uc: uc, syncer: syncer, quotes: quotes, notifier: notifier}
}

// List は監視銘柄を返します。
//
// GET /watchlist
func (h *WatchlistHandler) List(c *gin.Context) {
	syms, err := h.uc.GetWatchedSymbols(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.WatchlistResponse{Symbols: syms})
}

// Add は銘柄を追加し、即時同期を要求します。
//
// POST /watchlist {"symbol":"AAPL"}
func (h *WatchlistHandler) Add(c *gin.Context) {
	var req dto.AddSymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.uc.AddSymbol(c.Request.Context(), req.Symbol); err != nil {
		writeError(c, err)
		return
	}
	// 同期はリクエストのライフサイクルから切り離す
	h.syncer.SyncImmediately(context.WithoutCancel(c.Request.Context()))

	h.List(c)
}

// Remove は銘柄を監視から外し、保存済みの行も削除します。
//
// DELETE /watchlist/:symbol
func (h *WatchlistHandler) Remove(c *gin.Context) {
	ctx := c.Request.Context()
	symbol, err := entity.NormalizeSymbol(c.Param("symbol"))
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.uc.RemoveSymbol(ctx, symbol); err != nil {
		writeError(c, err)
		return
	}
	if err := h.quotes.DeleteBySymbols(ctx, []string{symbol}); err != nil {
		writeError(c, err)
		return
	}
	h.notify(ctx)

	h.List(c)
}

// DisplayMode は現在の表示モードを返します。
//
// GET /display-mode
func (h *WatchlistHandler) DisplayMode(c *gin.Context) {
	mode, err := h.uc.GetDisplayMode(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DisplayModeResponse{Mode: string(mode)})
}

// ToggleDisplayMode は表示モードを反転します。ウィジェットの再描画のため通知も送ります。
//
// POST /display-mode/toggle
func (h *WatchlistHandler) ToggleDisplayMode(c *gin.Context) {
	mode, err := h.uc.ToggleDisplayMode(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	h.notify(c.Request.Context())
	c.JSON(http.StatusOK, dto.DisplayModeResponse{Mode: string(mode)})
}

// 通知の失敗は操作自体の失敗にしない
func (h *WatchlistHandler) notify(ctx context.Context) {
	if err := h.notifier.NotifyDataUpdated(ctx); err != nil {
		slog.Warn("failed to notify data update", "error", err)
	}
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, entity.ErrInvalidSymbol) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
