package quotes

import (
	"time"

	"github.com/shopspring/decimal"
)

// chartResponse maps the Yahoo Finance chart API response. Only the fields
// the quote service consumes are declared; the API returns far more.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote is the latest market price for one symbol.
type Quote struct {
	Symbol        string
	Currency      string
	CurrentPrice  decimal.Decimal
	PreviousClose *decimal.Decimal
	ChangePercent *decimal.Decimal
	FetchedAt     time.Time
}
