package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allocation assigns a number of currently held units of a stock/account pair
// to an owner and goal. BuyPrice and BuyDate are fixed at creation time from
// the FIFO lots that notionally fund the allocation and are never recalculated
// when the owner, goal, or quantity change later.
//
// Invariant: for a given (stock, account), the sum of allocation quantities
// never exceeds the quantity held according to the lot engine.
type Allocation struct {
	ID        string          `json:"id"`
	StockID   string          `json:"stockId"`
	AccountID string          `json:"accountId"`
	OwnerID   string          `json:"ownerId"`
	GoalID    string          `json:"goalId"`
	Quantity  int64           `json:"quantity"`
	BuyPrice  decimal.Decimal `json:"buyPrice"`
	BuyDate   time.Time       `json:"buyDate"`
	CreatedAt time.Time       `json:"createdAt,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt,omitempty"`
}

// BuyValue returns quantity x frozen buy price.
func (a Allocation) BuyValue() decimal.Decimal {
	return a.BuyPrice.Mul(decimal.NewFromInt(a.Quantity))
}

// AllocationResponse represents an allocation enriched with display names.
type AllocationResponse struct {
	Allocation
	Symbol        string `json:"symbol"`
	StockName     string `json:"stockName"`
	AccountNumber string `json:"accountNumber"`
	OwnerName     string `json:"ownerName"`
	GoalName      string `json:"goalName"`
}

// SyncResult reports what an allocation/holdings sync changed.
type SyncResult struct {
	Adjusted int `json:"adjusted"`
	Deleted  int `json:"deleted"`
}
