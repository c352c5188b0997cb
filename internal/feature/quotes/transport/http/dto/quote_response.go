// Package dto はquotes HTTP APIのレスポンスDTOを定義します。
package dto

import "stockwatch/internal/shared/history"

// QuoteRowResponse は一覧・ウィジェットの1行です。
type QuoteRowResponse struct {
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	PriceText        string  `json:"price_text"`
	AbsoluteChange   float64 `json:"absolute_change"`
	PercentageChange float64 `json:"percentage_change"`
	ChangeText       string  `json:"change_text"`
	Up               bool    `json:"up"`
}

// QuoteDetailResponse は銘柄詳細です。
type QuoteDetailResponse struct {
	QuoteRowResponse
	Chart history.Chart `json:"chart"`
}

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataUpdatedMessage はWebSocketで送るデータ更新通知です。
type DataUpdatedMessage struct {
	Action string `json:"action"`
}
