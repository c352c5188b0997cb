// Package twelvedata provides a client for the Twelve Data stock market API.
package twelvedata

import (
	"time"

	"stockwatch/internal/platform/config"
)

// Config holds configuration for the Twelve Data API client.
type Config struct {
	APIKey  string        // API key for authentication
	BaseURL string        // Base URL for the API (e.g., "https://api.twelvedata.com")
	Timeout time.Duration // HTTP request timeout
}

// ConfigFrom maps the application configuration section to a client Config.
func ConfigFrom(c config.TwelveDataConfig) Config {
	return Config{
		APIKey:  c.APIKey,
		BaseURL: c.BaseURL,
		Timeout: c.Timeout,
	}
}
