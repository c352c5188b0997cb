// Package di provides dependency injection factories for creating application components.
package di

import (
	"stockwatch/internal/platform/config"
	"stockwatch/internal/platform/externalapi/twelvedata"
	infrahttp "stockwatch/internal/platform/http"
)

// NewMarket creates a fully configured TwelveDataMarket with HTTP client.
func NewMarket(cfg config.TwelveDataConfig) *twelvedata.TwelveDataMarket {
	tdCfg := twelvedata.ConfigFrom(cfg)
	httpClient := infrahttp.NewHTTPClient(tdCfg.Timeout)
	return twelvedata.NewTwelveDataMarket(tdCfg, httpClient)
}
