package dto

// QuoteResponse is one symbol in the Twelve Data quote endpoint response.
// A single-symbol request returns this object at the top level; a batch
// request returns a JSON object keyed by symbol.
type QuoteResponse struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Close         string `json:"close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`

	// エラー時のみ
	Status  string `json:"status,omitempty"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
