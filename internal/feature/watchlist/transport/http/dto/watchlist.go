// Package dto はwatchlist HTTP APIのリクエスト・レスポンスDTOを定義します。
package dto

// AddSymbolRequest は POST /watchlist のボディです。
type AddSymbolRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// WatchlistResponse は監視銘柄一覧です。
type WatchlistResponse struct {
	Symbols []string `json:"symbols"`
}

// DisplayModeResponse は現在の表示モードです。
type DisplayModeResponse struct {
	Mode string `json:"mode"`
}
