// Package entity defines the domain models for the refresh feature.
package entity

// MarketQuote is one symbol's quote as returned by the remote source.
// A nil field means the source did not provide that value.
type MarketQuote struct {
	Symbol           string
	Price            *float64
	AbsoluteChange   *float64
	PercentageChange *float64 // percent units, 1.5 means 1.5%
}

// Complete reports whether price and both changes are present.
func (q MarketQuote) Complete() bool {
	return q.Price != nil && q.AbsoluteChange != nil && q.PercentageChange != nil
}
