// Package entity defines the domain models for the watchlist feature.
package entity

import (
	"errors"
	"strings"
)

// ErrInvalidSymbol is returned for a symbol that is empty after normalization.
var ErrInvalidSymbol = errors.New("invalid symbol")

// DisplayMode controls whether price changes are shown in currency or percent.
type DisplayMode string

const (
	DisplayModeAbsolute   DisplayMode = "absolute"
	DisplayModePercentage DisplayMode = "percentage"
)

// ParseDisplayMode maps a stored value to a DisplayMode. Anything that is not
// "percentage" reads as absolute, the default.
func ParseDisplayMode(s string) DisplayMode {
	if DisplayMode(s) == DisplayModePercentage {
		return DisplayModePercentage
	}
	return DisplayModeAbsolute
}

// Toggle returns the other mode.
func (m DisplayMode) Toggle() DisplayMode {
	if m == DisplayModePercentage {
		return DisplayModeAbsolute
	}
	return DisplayModePercentage
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", ErrInvalidSymbol
	}
	return s, nil
}
