package entity

import "stockwatch/internal/shared/history"

// QuoteRow は一覧・ウィジェットの1行分の表示モデルです。
type QuoteRow struct {
	Symbol           string
	Price            float64
	AbsoluteChange   float64
	PercentageChange float64
	PriceText        string // "$1,234.56"
	ChangeText       string // 表示モードに応じて "+$1.23" または "+1.23%"
	Up               bool   // 前日比がプラスなら true
}

// QuoteDetail は銘柄詳細画面の表示モデルです。
type QuoteDetail struct {
	QuoteRow
	Chart history.Chart
}
