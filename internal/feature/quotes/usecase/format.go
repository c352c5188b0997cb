package usecase

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// usd はfloatをセント単位に丸めてからMoneyにします（float誤差での切り捨てを避ける）。
func usd(v float64) *money.Money {
	cents := decimal.NewFromFloat(v).Round(2).Shift(2).IntPart()
	return money.New(cents, money.USD)
}

// FormatPrice はドル表記（"$1,234.56"）に整形します。
func FormatPrice(v float64) string {
	return usd(v).Display()
}

// FormatAbsoluteChange は符号付きドル表記（"+$1.23", "-$0.50"）に整形します。
func FormatAbsoluteChange(v float64) string {
	m := usd(v)
	if m.IsNegative() {
		return m.Display()
	}
	return "+" + m.Display()
}

// FormatPercentageChange は小数2桁の符号付きパーセント（"+1.23%"）に整形します。
// 値はパーセント単位（1.5 は 1.5%）です。
func FormatPercentageChange(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return d.StringFixed(2) + "%"
	}
	return "+" + d.StringFixed(2) + "%"
}
