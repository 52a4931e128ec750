// Package fifo implements First-In-First-Out lot matching for a single
// stock/account pair.
//
// The engine maintains an ordered queue of open purchase lots and matches
// disposals against the oldest lots first, producing one realized-disposal
// record per (partially) consumed lot. It holds no cross-pair state and no
// reference to storage: callers rebuild an engine from the full trade history
// on each use, so its output is always a pure function of the trade log.
package fifo

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
)

// LongTermThresholdDays is the holding-period cutoff for long-term
// classification: a disposal is LTCG iff it was held strictly more than this
// many days. Domain constant, not configurable per call.
const LongTermThresholdDays = 365

// Lot is an open purchase tranche in the FIFO queue. RemainingQty only ever
// decreases, and only through disposal matching; a lot whose remaining
// quantity reaches zero is evicted from the queue.
type Lot struct {
	TradeDate     time.Time
	TradeDatetime *time.Time
	Quantity      int64
	Price         decimal.Decimal
	RemainingQty  int64
	TradeID       string
}

// Value returns the total value of the remaining units in the lot.
func (l Lot) Value() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.RemainingQty))
}

// MatchedLot is a realized disposal: the pairing of (part of) a sell with
// (part of) one buy lot. Immutable once produced.
type MatchedLot struct {
	EntryDate   time.Time
	ExitDate    time.Time
	Quantity    int64
	BuyPrice    decimal.Decimal
	SellPrice   decimal.Decimal
	BuyValue    decimal.Decimal
	SellValue   decimal.Decimal
	Profit      decimal.Decimal
	HoldingDays int
	TaxTerm     string
	BuyTradeID  string
	SellTradeID string
}

// Summary is a snapshot of the engine's aggregate state.
type Summary struct {
	TotalBought       int64
	TotalSold         int64
	AvailableQuantity int64
	AverageBuyPrice   *decimal.Decimal
	OpenLots          int
	MatchedLots       int
	TotalRealizedPnL  decimal.Decimal
}

// Engine matches disposals against purchase lots FIFO for one stock/account
// pair. The queue is a slice with a moving head index so that head eviction
// and tail append are both O(1).
type Engine struct {
	lots    []Lot
	head    int
	matched []MatchedLot

	totalBought int64
	totalSold   int64

	// skipped counts sells that exceeded available holdings during replay.
	// They indicate incomplete history (or an unadjusted split), not a fatal
	// condition.
	skipped int
}

// New creates an empty engine.
func New() *Engine {
	return &Engine{}
}

// RecordPurchase appends a new lot to the tail of the queue and returns it.
func (e *Engine) RecordPurchase(tradeDate time.Time, tradeDatetime *time.Time, quantity int64, price decimal.Decimal, tradeID string) Lot {
	lot := Lot{
		TradeDate:     tradeDate,
		TradeDatetime: tradeDatetime,
		Quantity:      quantity,
		Price:         price,
		RemainingQty:  quantity,
		TradeID:       tradeID,
	}
	e.lots = append(e.lots, lot)
	e.totalBought += quantity
	return lot
}

// RecordDisposal matches a sell against the oldest open lots. It returns one
// MatchedLot per lot consumed, in queue order. If quantity exceeds the total
// remaining quantity across all lots, it fails with
// apperrors.ErrInsufficientHoldings and the queue is left untouched.
func (e *Engine) RecordDisposal(tradeDate time.Time, _ *time.Time, quantity int64, price decimal.Decimal, tradeID string) ([]MatchedLot, error) {
	available := e.AvailableQuantity()
	if quantity > available {
		return nil, fmt.Errorf("disposing %d of %d available: %w", quantity, available, apperrors.ErrInsufficientHoldings)
	}

	var matched []MatchedLot
	remaining := quantity

	for remaining > 0 && e.head < len(e.lots) {
		lot := &e.lots[e.head]
		matchedQty := min(remaining, lot.RemainingQty)
		qty := decimal.NewFromInt(matchedQty)

		buyValue := lot.Price.Mul(qty)
		sellValue := price.Mul(qty)
		holdingDays := int(tradeDate.Sub(lot.TradeDate).Hours() / 24)

		taxTerm := model.TaxTermShort
		if holdingDays > LongTermThresholdDays {
			taxTerm = model.TaxTermLong
		}

		m := MatchedLot{
			EntryDate:   lot.TradeDate,
			ExitDate:    tradeDate,
			Quantity:    matchedQty,
			BuyPrice:    lot.Price,
			SellPrice:   price,
			BuyValue:    buyValue,
			SellValue:   sellValue,
			Profit:      sellValue.Sub(buyValue),
			HoldingDays: holdingDays,
			TaxTerm:     taxTerm,
			BuyTradeID:  lot.TradeID,
			SellTradeID: tradeID,
		}
		matched = append(matched, m)
		e.matched = append(e.matched, m)

		lot.RemainingQty -= matchedQty
		remaining -= matchedQty

		if lot.RemainingQty == 0 {
			e.head++
		}
	}

	e.totalSold += quantity
	return matched, nil
}

// AvailableQuantity returns the sum of remaining quantities across open lots.
func (e *Engine) AvailableQuantity() int64 {
	var total int64
	for _, lot := range e.lots[e.head:] {
		total += lot.RemainingQty
	}
	return total
}

// WeightedAveragePrice returns the remaining-quantity-weighted average buy
// price of the open lots. The second return is false when no units are held.
func (e *Engine) WeightedAveragePrice() (decimal.Decimal, bool) {
	var totalQty int64
	totalValue := decimal.Zero

	for _, lot := range e.lots[e.head:] {
		if lot.RemainingQty > 0 {
			totalQty += lot.RemainingQty
			totalValue = totalValue.Add(lot.Value())
		}
	}

	if totalQty == 0 {
		return decimal.Zero, false
	}
	return totalValue.Div(decimal.NewFromInt(totalQty)), true
}

// Lots returns the open lots in FIFO order. The returned slice is a copy;
// mutating it does not affect the engine.
func (e *Engine) Lots() []Lot {
	open := make([]Lot, 0, len(e.lots)-e.head)
	for _, lot := range e.lots[e.head:] {
		if lot.RemainingQty > 0 {
			open = append(open, lot)
		}
	}
	return open
}

// Matched returns every realized disposal produced so far, in match order.
func (e *Engine) Matched() []MatchedLot {
	out := make([]MatchedLot, len(e.matched))
	copy(out, e.matched)
	return out
}

// SkippedSells reports how many sells were dropped during replay because they
// exceeded the holdings known at that point. Non-zero means the trade history
// is incomplete or a structural change has not been adjusted for.
func (e *Engine) SkippedSells() int {
	return e.skipped
}

// Summary returns aggregate engine state.
func (e *Engine) Summary() Summary {
	s := Summary{
		TotalBought:       e.totalBought,
		TotalSold:         e.totalSold,
		AvailableQuantity: e.AvailableQuantity(),
		OpenLots:          len(e.Lots()),
		MatchedLots:       len(e.matched),
		TotalRealizedPnL:  decimal.Zero,
	}
	if avg, ok := e.WeightedAveragePrice(); ok {
		s.AverageBuyPrice = &avg
	}
	for _, m := range e.matched {
		s.TotalRealizedPnL = s.TotalRealizedPnL.Add(m.Profit)
	}
	return s
}

// FromTrades builds an engine by replaying trades in FIFO order: ascending
// trade datetime with missing datetimes ordered before timestamped trades on
// the same date, then ascending trade date. Sells that exceed the holdings
// known at their point in the replay are skipped and counted, not fatal.
func FromTrades(trades []model.Trade) *Engine {
	sorted := make([]model.Trade, len(trades))
	copy(sorted, trades)
	SortTrades(sorted)

	engine := New()
	for _, t := range sorted {
		switch t.TradeType {
		case model.TradeTypeBuy:
			engine.RecordPurchase(t.TradeDate, t.TradeDatetime, t.Quantity, t.Price, t.TradeID)
		case model.TradeTypeSell:
			if _, err := engine.RecordDisposal(t.TradeDate, t.TradeDatetime, t.Quantity, t.Price, t.TradeID); err != nil {
				engine.skipped++
			}
		}
	}
	return engine
}

// SortTrades orders trades for FIFO replay: by date, then trades without a
// datetime before trades with one, then by datetime. The sort is stable so
// equal trades keep their input order.
func SortTrades(trades []model.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		a, b := trades[i], trades[j]
		if !a.TradeDate.Equal(b.TradeDate) {
			return a.TradeDate.Before(b.TradeDate)
		}
		switch {
		case a.TradeDatetime == nil && b.TradeDatetime == nil:
			return false
		case a.TradeDatetime == nil:
			return true
		case b.TradeDatetime == nil:
			return false
		default:
			return a.TradeDatetime.Before(*b.TradeDatetime)
		}
	})
}
