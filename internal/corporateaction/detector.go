// Package corporateaction detects undocumented structural changes (splits and
// bonus issues) in a stock's trade history.
//
// Detection is heuristic and proposal-only: nothing here mutates lots or
// trades. A caller that accepts a proposal re-derives holdings with the
// adjustment folded in.
package corporateaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/fifo"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
)

// Confidence grades how closely an observed pattern matches a nominal ratio.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// CommonRatios are the split ratios worth testing against. Anything outside
// this table is indistinguishable from ordinary price movement.
var CommonRatios = []int64{2, 3, 4, 5, 10, 20, 25, 50, 100}

// ratioBands maps each common ratio to the accepted price-ratio interval.
// Bands widen with ratio magnitude to absorb market drift between the split
// date and the next observed trade.
var ratioBands = map[int64][2]float64{
	2:   {1.7, 2.4},
	3:   {2.5, 3.6},
	4:   {3.4, 4.8},
	5:   {4.2, 6.0},
	10:  {8.5, 12.0},
	20:  {17.0, 24.0},
	25:  {21.0, 30.0},
	50:  {42.0, 60.0},
	100: {85.0, 120.0},
}

// Proposal is a detected structural change awaiting caller acceptance.
type Proposal struct {
	StockID    string
	ActionType model.ActionType
	RatioFrom  int64
	RatioTo    int64
	OldPrice   *decimal.Decimal
	NewPrice   *decimal.Decimal
	RecordDate *time.Time
	Confidence Confidence

	// Trade anchors, when price-pattern detection located the change point.
	PreSplitTradeID  string
	PostSplitTradeID string
}

// DetectSplitFromPrices scans consecutive buy trades for a price drop that
// matches a common split ratio. The first band hit wins. Returns nil when no
// pattern is found; absence of a proposal is not an error.
func DetectSplitFromPrices(trades []model.Trade) *Proposal {
	buys := sortedBuys(trades)
	if len(buys) < 2 {
		return nil
	}

	for i := 1; i < len(buys); i++ {
		prev, curr := buys[i-1], buys[i]
		if !curr.Price.IsPositive() {
			continue
		}

		priceRatio := prev.Price.InexactFloat64() / curr.Price.InexactFloat64()

		for _, ratio := range CommonRatios {
			band := ratioBands[ratio]
			if priceRatio < band[0] || priceRatio > band[1] {
				continue
			}

			confidence := ConfidenceMedium
			if abs(priceRatio-float64(ratio)) < 0.5 {
				confidence = ConfidenceHigh
			}

			oldPrice := prev.Price
			newPrice := curr.Price
			recordDate := curr.TradeDate
			return &Proposal{
				StockID:          curr.StockID,
				ActionType:       model.ActionSplit,
				RatioFrom:        1,
				RatioTo:          ratio,
				OldPrice:         &oldPrice,
				NewPrice:         &newPrice,
				RecordDate:       &recordDate,
				Confidence:       confidence,
				PreSplitTradeID:  prev.TradeID,
				PostSplitTradeID: curr.TradeID,
			}
		}
	}

	return nil
}

// DetectSplitFromDisposalMismatch fires when total sold quantity exceeds
// total bought quantity, which is physically impossible unless a split
// multiplied the holdings. It searches the common ratio table for a ratio r
// with totalBought*r within 10% of totalSold, then scans consecutive buys for
// a price drop near r (within 20%) to anchor the record date.
func DetectSplitFromDisposalMismatch(trades []model.Trade) *Proposal {
	var totalBought, totalSold int64
	var stockID string
	for _, t := range trades {
		stockID = t.StockID
		switch t.TradeType {
		case model.TradeTypeBuy:
			totalBought += t.Quantity
		case model.TradeTypeSell:
			totalSold += t.Quantity
		}
	}

	if totalSold <= totalBought || totalBought == 0 {
		return nil
	}

	for _, ratio := range CommonRatios {
		expected := float64(totalBought * ratio)
		if abs(expected-float64(totalSold)) > float64(totalSold)*0.1 {
			continue
		}

		proposal := &Proposal{
			StockID:    stockID,
			ActionType: model.ActionSplit,
			RatioFrom:  1,
			RatioTo:    ratio,
			Confidence: ConfidenceMedium,
		}

		// Anchor the record date on the price drop, when one is visible.
		buys := sortedBuys(trades)
		for i := 1; i < len(buys); i++ {
			prev, curr := buys[i-1], buys[i]
			if !curr.Price.IsPositive() {
				continue
			}
			priceRatio := prev.Price.InexactFloat64() / curr.Price.InexactFloat64()
			if priceRatio >= 0.8*float64(ratio) && priceRatio <= 1.2*float64(ratio) {
				oldPrice := prev.Price
				newPrice := curr.Price
				recordDate := curr.TradeDate
				proposal.OldPrice = &oldPrice
				proposal.NewPrice = &newPrice
				proposal.RecordDate = &recordDate
				proposal.PreSplitTradeID = prev.TradeID
				proposal.PostSplitTradeID = curr.TradeID
				break
			}
		}

		return proposal
	}

	return nil
}

// Detect runs price-pattern detection first, falling back to disposal
// mismatch detection.
func Detect(trades []model.Trade) *Proposal {
	if p := DetectSplitFromPrices(trades); p != nil {
		return p
	}
	return DetectSplitFromDisposalMismatch(trades)
}

// AdjustForActions scales a purchase's quantity and price for every action
// whose record date falls after the buy date. Quantity is multiplied and
// price divided by the same factor, so total value is unchanged. Actions
// without a record date cannot be positioned in history and are ignored.
func AdjustForActions(quantity int64, buyPrice decimal.Decimal, buyDate time.Time, actions []model.CorporateAction) (int64, decimal.Decimal) {
	adjustedQty := quantity
	adjustedPrice := buyPrice

	for _, action := range actions {
		if action.RecordDate == nil || !buyDate.Before(*action.RecordDate) {
			continue
		}
		m := action.QuantityMultiplier()
		adjustedQty = decimal.NewFromInt(adjustedQty).Mul(m).IntPart()
		adjustedPrice = adjustedPrice.Div(m)
	}

	return adjustedQty, adjustedPrice
}

// AdjustTrades returns a copy of trades with pre-record-date buys scaled for
// the given actions. Sells are left alone: they are already expressed in
// post-change quantities. The result is what a fifo replay should consume
// once a caller accepts the actions.
func AdjustTrades(trades []model.Trade, actions []model.CorporateAction) []model.Trade {
	adjusted := make([]model.Trade, len(trades))
	copy(adjusted, trades)

	for i := range adjusted {
		if adjusted[i].TradeType != model.TradeTypeBuy {
			continue
		}
		qty, price := AdjustForActions(adjusted[i].Quantity, adjusted[i].Price, adjusted[i].TradeDate, actions)
		adjusted[i].Quantity = qty
		adjusted[i].Price = price
	}

	return adjusted
}

func sortedBuys(trades []model.Trade) []model.Trade {
	buys := make([]model.Trade, 0, len(trades))
	for _, t := range trades {
		if t.TradeType == model.TradeTypeBuy {
			buys = append(buys, t)
		}
	}
	fifo.SortTrades(buys)
	return buys
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
