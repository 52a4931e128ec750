package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade types recognized by the system.
const (
	TradeTypeBuy  = "buy"
	TradeTypeSell = "sell"
)

// Trade represents a single buy or sell of a stock in an account, as
// extracted from a broker tradebook export. Trades are immutable once
// imported; all lot and holdings state is derived from them.
type Trade struct {
	ID            string          `json:"id"`
	StockID       string          `json:"stockId"`
	AccountID     string          `json:"accountId"`
	TradeType     string          `json:"tradeType"`
	TradeDate     time.Time       `json:"tradeDate"`
	TradeDatetime *time.Time      `json:"tradeDatetime,omitempty"` // breaks same-date FIFO ordering when present
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	TradeID       string          `json:"tradeId"` // broker-assigned, unique per account
	OrderID       string          `json:"orderId,omitempty"`
	Exchange      string          `json:"exchange,omitempty"`
	CreatedAt     time.Time       `json:"createdAt,omitempty"`
}

// Value returns quantity x price for the trade.
func (t Trade) Value() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}

// TradeResponse represents a trade with enriched data for API responses.
type TradeResponse struct {
	Trade
	Symbol        string `json:"symbol"`
	StockName     string `json:"stockName"`
	AccountNumber string `json:"accountNumber"`
}
