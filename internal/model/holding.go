package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotView is the API representation of an open purchase tranche. Lots are
// derived from the trade log by the lot engine and never persisted.
type LotView struct {
	TradeDate     time.Time       `json:"tradeDate"`
	TradeDatetime *time.Time      `json:"tradeDatetime,omitempty"`
	Quantity      int64           `json:"quantity"`
	RemainingQty  int64           `json:"remainingQty"`
	Price         decimal.Decimal `json:"price"`
	Value         decimal.Decimal `json:"value"`
	TradeID       string          `json:"tradeId"`
}

// Holding is the computed position for one stock/account pair: remaining FIFO
// lots rolled up with optional market valuation and the allocations carved
// out of it.
type Holding struct {
	StockID              string               `json:"stockId"`
	AccountID            string               `json:"accountId"`
	Symbol               string               `json:"symbol"`
	StockName            string               `json:"stockName"`
	ISIN                 string               `json:"isin,omitempty"`
	Sector               string               `json:"sector,omitempty"`
	Exchange             string               `json:"exchange,omitempty"`
	AccountNumber        string               `json:"accountNumber"`
	Quantity             int64                `json:"quantity"`
	AvgBuyPrice          decimal.Decimal      `json:"avgBuyPrice"`
	TotalBuyValue        decimal.Decimal      `json:"totalBuyValue"`
	CurrentPrice         *decimal.Decimal     `json:"currentPrice,omitempty"`
	CurrentValue         *decimal.Decimal     `json:"currentValue,omitempty"`
	UnrealizedPnL        *decimal.Decimal     `json:"unrealizedPnl,omitempty"`
	UnrealizedPnLPercent *decimal.Decimal     `json:"unrealizedPnlPercent,omitempty"`
	DayChangePercent     *decimal.Decimal     `json:"dayChangePercent,omitempty"`
	BuyLots              []LotView            `json:"buyLots,omitempty"`
	Allocations          []AllocationResponse `json:"allocations,omitempty"`
}

// HoldingsSummary aggregates holdings into portfolio-level totals.
type HoldingsSummary struct {
	TotalHoldings      int             `json:"totalHoldings"`
	HoldingsWithPrice  int             `json:"holdingsWithPrice"`
	TotalBuyValue      decimal.Decimal `json:"totalBuyValue"`
	TotalCurrentValue  decimal.Decimal `json:"totalCurrentValue"`
	TotalUnrealizedPnL decimal.Decimal `json:"totalUnrealizedPnl"`
}
