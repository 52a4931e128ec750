package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceCache holds the most recently fetched market price for a stock.
// Rows are refreshed by the background quote job; staleness is tolerated and
// surfaced via FetchedAt rather than treated as an error.
type PriceCache struct {
	StockID       string           `json:"stockId"`
	CurrentPrice  decimal.Decimal  `json:"currentPrice"`
	PreviousClose *decimal.Decimal `json:"previousClose,omitempty"`
	ChangePercent *decimal.Decimal `json:"changePercent,omitempty"`
	Currency      string           `json:"currency,omitempty"`
	FetchedAt     time.Time        `json:"fetchedAt"`
}
