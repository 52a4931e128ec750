package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
)

// Seeded by the default-data migration.
const (
	DefaultOwnerID = "00000000-0000-0000-0000-000000000001"
	DefaultGoalID  = "00000000-0000-0000-0000-000000000002"
)

// MakeID returns a fresh UUID string.
func MakeID() string {
	return uuid.New().String()
}

// StockBuilder provides a fluent interface for creating test stocks.
//
// Example usage:
//
//	stock := testutil.NewStock().WithSymbol("RELIANCE").Build(t, db)
type StockBuilder struct {
	stock model.Stock
}

// NewStock creates a StockBuilder with sensible defaults.
func NewStock() *StockBuilder {
	id := MakeID()
	return &StockBuilder{stock: model.Stock{
		ID:        id,
		Symbol:    "TEST" + id[:4],
		Name:      "Test Stock",
		ISIN:      "INE" + id[:9],
		Exchange:  "NSE",
		CreatedAt: time.Now().UTC(),
	}}
}

// WithSymbol sets a custom ticker symbol.
func (b *StockBuilder) WithSymbol(symbol string) *StockBuilder {
	b.stock.Symbol = symbol
	return b
}

// WithISIN sets a custom ISIN. Pass "" for a stock without one.
func (b *StockBuilder) WithISIN(isin string) *StockBuilder {
	b.stock.ISIN = isin
	return b
}

// WithName sets a custom display name.
func (b *StockBuilder) WithName(name string) *StockBuilder {
	b.stock.Name = name
	return b
}

// Build inserts the stock and returns it.
func (b *StockBuilder) Build(t *testing.T, db *sql.DB) model.Stock {
	t.Helper()
	if err := repository.NewStockRepository(db).InsertStock(context.Background(), &b.stock); err != nil {
		t.Fatalf("Failed to insert test stock: %v", err)
	}
	return b.stock
}

// AccountBuilder provides a fluent interface for creating test accounts.
type AccountBuilder struct {
	account model.Account
}

// NewAccount creates an AccountBuilder with sensible defaults.
func NewAccount() *AccountBuilder {
	id := MakeID()
	return &AccountBuilder{account: model.Account{
		ID:            id,
		AccountNumber: "ACC-" + id[:8],
		Broker:        "Test Broker",
		CreatedAt:     time.Now().UTC(),
	}}
}

// WithAccountNumber sets a custom account number.
func (b *AccountBuilder) WithAccountNumber(number string) *AccountBuilder {
	b.account.AccountNumber = number
	return b
}

// Build inserts the account and returns it.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()
	if err := repository.NewAccountRepository(db).InsertAccount(context.Background(), &b.account); err != nil {
		t.Fatalf("Failed to insert test account: %v", err)
	}
	return b.account
}

// OwnerBuilder provides a fluent interface for creating test owners.
type OwnerBuilder struct {
	owner model.Owner
}

// NewOwner creates an OwnerBuilder with sensible defaults.
func NewOwner() *OwnerBuilder {
	return &OwnerBuilder{owner: model.Owner{
		ID:        MakeID(),
		Name:      "Test Owner",
		CreatedAt: time.Now().UTC(),
	}}
}

// WithName sets a custom name.
func (b *OwnerBuilder) WithName(name string) *OwnerBuilder {
	b.owner.Name = name
	return b
}

// Build inserts the owner and returns it.
func (b *OwnerBuilder) Build(t *testing.T, db *sql.DB) model.Owner {
	t.Helper()
	if err := repository.NewOwnerRepository(db).InsertOwner(context.Background(), &b.owner); err != nil {
		t.Fatalf("Failed to insert test owner: %v", err)
	}
	return b.owner
}

// GoalBuilder provides a fluent interface for creating test goals.
type GoalBuilder struct {
	goal model.Goal
}

// NewGoal creates a GoalBuilder with sensible defaults.
func NewGoal() *GoalBuilder {
	return &GoalBuilder{goal: model.Goal{
		ID:        MakeID(),
		Name:      "Test Goal",
		CreatedAt: time.Now().UTC(),
	}}
}

// WithName sets a custom name.
func (b *GoalBuilder) WithName(name string) *GoalBuilder {
	b.goal.Name = name
	return b
}

// Build inserts the goal and returns it.
func (b *GoalBuilder) Build(t *testing.T, db *sql.DB) model.Goal {
	t.Helper()
	if err := repository.NewGoalRepository(db).InsertGoal(context.Background(), &b.goal); err != nil {
		t.Fatalf("Failed to insert test goal: %v", err)
	}
	return b.goal
}

// TradeBuilder provides a fluent interface for creating test trades.
//
// Example usage:
//
//	trade := testutil.NewTrade(stock.ID, account.ID).
//	    Sell().
//	    WithDate("2024-03-01").
//	    WithQuantity(50).
//	    WithPrice("123.45").
//	    Build(t, db)
type TradeBuilder struct {
	trade model.Trade
}

// NewTrade creates a TradeBuilder for a buy with sensible defaults.
func NewTrade(stockID, accountID string) *TradeBuilder {
	id := MakeID()
	return &TradeBuilder{trade: model.Trade{
		ID:        id,
		StockID:   stockID,
		AccountID: accountID,
		TradeType: model.TradeTypeBuy,
		TradeDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Quantity:  100,
		Price:     decimal.RequireFromString("100"),
		TradeID:   "T-" + id[:8],
		CreatedAt: time.Now().UTC(),
	}}
}

// Sell marks the trade as a sell.
func (b *TradeBuilder) Sell() *TradeBuilder {
	b.trade.TradeType = model.TradeTypeSell
	return b
}

// WithDate sets the trade date from a YYYY-MM-DD string.
func (b *TradeBuilder) WithDate(date string) *TradeBuilder {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	b.trade.TradeDate = parsed.UTC()
	return b
}

// WithQuantity sets the quantity.
func (b *TradeBuilder) WithQuantity(quantity int64) *TradeBuilder {
	b.trade.Quantity = quantity
	return b
}

// WithPrice sets the price from a decimal string.
func (b *TradeBuilder) WithPrice(price string) *TradeBuilder {
	b.trade.Price = decimal.RequireFromString(price)
	return b
}

// WithTradeID sets the broker trade ID.
func (b *TradeBuilder) WithTradeID(tradeID string) *TradeBuilder {
	b.trade.TradeID = tradeID
	return b
}

// Build inserts the trade and returns it.
func (b *TradeBuilder) Build(t *testing.T, db *sql.DB) model.Trade {
	t.Helper()
	if err := repository.NewTradeRepository(db).InsertTrade(context.Background(), &b.trade); err != nil {
		t.Fatalf("Failed to insert test trade: %v", err)
	}
	return b.trade
}
