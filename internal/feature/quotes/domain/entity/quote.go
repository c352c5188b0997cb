// Package entity defines the domain models for the quotes feature.
package entity

import (
	"errors"
	"time"
)

// ErrQuoteNotFound is returned when no quote row exists for a symbol.
var ErrQuoteNotFound = errors.New("quote not found")

// Quote is the latest stored quote for one watched symbol.
type Quote struct {
	Symbol           string    // Stock ticker symbol (e.g., "AAPL")
	Price            float64   // Latest price
	AbsoluteChange   float64   // Change since previous close, in currency
	PercentageChange float64   // Change since previous close, in percent (1.5 means 1.5%)
	History          string    // Weekly closes, see package history
	UpdatedAt        time.Time // Time of the refresh that wrote this row
}
