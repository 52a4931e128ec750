// Package reconcile cross-validates the local trade log against an externally
// reported disposal record set (a broker tax P&L export).
//
// Reconciliation never mutates anything and mismatches are data, not errors:
// every outcome is captured in the result as a matched pair, a typed
// discrepancy, or a missing-history note. When a mismatch pattern is
// consistent with a split or bonus issue, a corporate action proposal is
// attached for the caller to persist.
package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/corporateaction"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
)

// DiscrepancyType is the closed set of mismatch classifications.
type DiscrepancyType string

const (
	DiscrepancyQuantityMismatch DiscrepancyType = "quantity_mismatch"
	DiscrepancyPriceMismatch    DiscrepancyType = "price_mismatch"
	DiscrepancyMissingTrade     DiscrepancyType = "missing_trade"
	DiscrepancyCorporateAction  DiscrepancyType = "corporate_action"
)

// Severity grades a discrepancy for display purposes.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// valueTolerance is the relative tolerance for deciding two money values are
// the same. actionTolerance is the looser bound used when testing whether a
// mismatch is value-preserving (split/bonus).
var (
	valueTolerance  = decimal.RequireFromString("0.01")
	actionTolerance = decimal.RequireFromString("0.02")
)

// bonusRatios is the canonical bonus table: announced ratio from:to and the
// resulting share multiplier.
var bonusRatios = []struct {
	from, to   int64
	multiplier float64
}{
	{1, 1, 2.0},
	{2, 1, 1.5},
	{1, 2, 3.0},
	{1, 3, 4.0},
}

// DisposalEntry is one row of the external disposal report.
type DisposalEntry struct {
	Symbol        string
	ISIN          string
	EntryDate     time.Time
	ExitDate      time.Time
	Quantity      int64
	BuyValue      decimal.Decimal
	SellValue     decimal.Decimal
	FinancialYear string
}

// Match pairs a report entry with the buy trade that funded it.
type Match struct {
	Symbol      string          `json:"symbol"`
	ISIN        string          `json:"isin,omitempty"`
	EntryDate   time.Time       `json:"entryDate"`
	BuyTradeID  string          `json:"buyTradeId"`
	Quantity    int64           `json:"quantity"`
	BuyValue    decimal.Decimal `json:"buyValue"`
}

// Discrepancy is a mismatch between the trade log and the report.
type Discrepancy struct {
	Symbol         string                    `json:"symbol"`
	ISIN           string                    `json:"isin,omitempty"`
	Type           DiscrepancyType           `json:"type"`
	Severity       Severity                  `json:"severity"`
	Message        string                    `json:"message"`
	Trade          *model.Trade              `json:"trade,omitempty"`
	Entry          DisposalEntry             `json:"entry"`
	DetectedAction *corporateaction.Proposal `json:"detectedAction,omitempty"`
}

// MissingHistory notes a report entry that predates the trade log entirely.
// Informational: the data gap is in our history, not in the report.
type MissingHistory struct {
	Symbol    string          `json:"symbol"`
	ISIN      string          `json:"isin,omitempty"`
	EntryDate time.Time       `json:"entryDate"`
	Quantity  int64           `json:"quantity"`
	BuyValue  decimal.Decimal `json:"buyValue"`
	Message   string          `json:"message"`
}

// Summary holds per-run counts.
type Summary struct {
	TotalEntries     int     `json:"totalEntries"`
	Matched          int     `json:"matched"`
	Discrepancies    int     `json:"discrepancies"`
	CorporateActions int     `json:"corporateActions"`
	MissingHistory   int     `json:"missingHistory"`
	MatchRate        float64 `json:"matchRate"`
}

// Result is the full outcome of one reconciliation run.
type Result struct {
	Matched          []Match                    `json:"matched"`
	Discrepancies    []Discrepancy              `json:"discrepancies"`
	CorporateActions []corporateaction.Proposal `json:"corporateActions"`
	MissingHistory   []MissingHistory           `json:"missingHistory"`
	Summary          Summary                    `json:"summary"`
}

// Reconciler indexes the trade log for repeated lookups.
type Reconciler struct {
	trades        []model.Trade
	tradesByISIN  map[string][]model.Trade
	tradesBySym   map[string][]model.Trade
	earliestTrade time.Time
}

// New builds a reconciler over the full trade log. Trades are indexed by ISIN
// (stable across sources) with ticker symbol as fallback; the ISIN and symbol
// for each trade are resolved by the caller into the Trade's stock fields via
// the symbols map (trade stock ID -> stock).
func New(trades []model.Trade, stocks map[string]model.Stock) *Reconciler {
	r := &Reconciler{
		trades:       trades,
		tradesByISIN: make(map[string][]model.Trade),
		tradesBySym:  make(map[string][]model.Trade),
	}

	for _, t := range trades {
		stock, ok := stocks[t.StockID]
		if ok {
			if stock.ISIN != "" {
				r.tradesByISIN[stock.ISIN] = append(r.tradesByISIN[stock.ISIN], t)
			}
			if stock.Symbol != "" {
				r.tradesBySym[stock.Symbol] = append(r.tradesBySym[stock.Symbol], t)
			}
		}
		if r.earliestTrade.IsZero() || t.TradeDate.Before(r.earliestTrade) {
			r.earliestTrade = t.TradeDate
		}
	}

	return r
}

// Reconcile matches every report entry (optionally filtered to one financial
// year) against the trade log.
func (r *Reconciler) Reconcile(entries []DisposalEntry, yearFilter string) Result {
	result := Result{}

	filtered := entries
	if yearFilter != "" {
		filtered = nil
		for _, e := range entries {
			if e.FinancialYear == yearFilter {
				filtered = append(filtered, e)
			}
		}
	}

	for _, entry := range filtered {
		if !r.earliestTrade.IsZero() && entry.EntryDate.Before(r.earliestTrade) {
			result.MissingHistory = append(result.MissingHistory, MissingHistory{
				Symbol:    entry.Symbol,
				ISIN:      entry.ISIN,
				EntryDate: entry.EntryDate,
				Quantity:  entry.Quantity,
				BuyValue:  entry.BuyValue,
				Message: fmt.Sprintf("entry date %s precedes earliest trade %s",
					entry.EntryDate.Format("2006-01-02"), r.earliestTrade.Format("2006-01-02")),
			})
			continue
		}

		trade := r.findMatchingBuy(entry)
		if trade == nil {
			result.Discrepancies = append(result.Discrepancies, Discrepancy{
				Symbol:   entry.Symbol,
				ISIN:     entry.ISIN,
				Type:     DiscrepancyMissingTrade,
				Severity: SeverityWarning,
				Entry:    entry,
				Message:  fmt.Sprintf("no matching buy trade for %s bought on %s", entry.Symbol, entry.EntryDate.Format("2006-01-02")),
			})
			continue
		}

		if trade.Quantity == entry.Quantity && valuesMatch(trade.Value(), entry.BuyValue, valueTolerance) {
			result.Matched = append(result.Matched, Match{
				Symbol:     entry.Symbol,
				ISIN:       entry.ISIN,
				EntryDate:  entry.EntryDate,
				BuyTradeID: trade.TradeID,
				Quantity:   entry.Quantity,
				BuyValue:   entry.BuyValue,
			})
			continue
		}

		if proposal := detectSplit(*trade, entry); proposal != nil {
			result.CorporateActions = append(result.CorporateActions, *proposal)
			result.Discrepancies = append(result.Discrepancies, Discrepancy{
				Symbol:         entry.Symbol,
				ISIN:           entry.ISIN,
				Type:           DiscrepancyCorporateAction,
				Severity:       SeverityInfo,
				Trade:          trade,
				Entry:          entry,
				DetectedAction: proposal,
				Message:        fmt.Sprintf("stock split detected: %d:%d", proposal.RatioFrom, proposal.RatioTo),
			})
			continue
		}

		if proposal := detectBonus(*trade, entry); proposal != nil {
			result.CorporateActions = append(result.CorporateActions, *proposal)
			result.Discrepancies = append(result.Discrepancies, Discrepancy{
				Symbol:         entry.Symbol,
				ISIN:           entry.ISIN,
				Type:           DiscrepancyCorporateAction,
				Severity:       SeverityInfo,
				Trade:          trade,
				Entry:          entry,
				DetectedAction: proposal,
				Message:        fmt.Sprintf("bonus issue detected: %d:%d", proposal.RatioTo, proposal.RatioFrom),
			})
			continue
		}

		kind := DiscrepancyPriceMismatch
		if trade.Quantity != entry.Quantity {
			kind = DiscrepancyQuantityMismatch
		}
		result.Discrepancies = append(result.Discrepancies, Discrepancy{
			Symbol:   entry.Symbol,
			ISIN:     entry.ISIN,
			Type:     kind,
			Severity: SeverityWarning,
			Trade:    trade,
			Entry:    entry,
			Message:  fmt.Sprintf("quantity or price mismatch for %s", entry.Symbol),
		})
	}

	matchRate := 0.0
	if len(filtered) > 0 {
		matchRate = float64(len(result.Matched)) / float64(len(filtered)) * 100
	}
	result.Summary = Summary{
		TotalEntries:     len(filtered),
		Matched:          len(result.Matched),
		Discrepancies:    len(result.Discrepancies),
		CorporateActions: len(result.CorporateActions),
		MissingHistory:   len(result.MissingHistory),
		MatchRate:        matchRate,
	}

	return result
}

// tradesFor returns the trade list for an entry, preferring the ISIN index.
func (r *Reconciler) tradesFor(entry DisposalEntry) []model.Trade {
	if entry.ISIN != "" {
		if trades, ok := r.tradesByISIN[entry.ISIN]; ok {
			return trades
		}
	}
	return r.tradesBySym[entry.Symbol]
}

// findMatchingBuy locates the buy trade that funded a report entry: exact
// entry-date match first, then within one day to absorb settlement-date
// differences. The buy value must match within tolerance, either exactly or
// in split-adjusted form (the corporate-action checks run later on the same
// candidate).
func (r *Reconciler) findMatchingBuy(entry DisposalEntry) *model.Trade {
	var buys []model.Trade
	for _, t := range r.tradesFor(entry) {
		if t.TradeType == model.TradeTypeBuy {
			buys = append(buys, t)
		}
	}

	for i := range buys {
		if buys[i].TradeDate.Equal(entry.EntryDate) && candidateValueMatch(buys[i], entry) {
			return &buys[i]
		}
	}
	for i := range buys {
		diff := buys[i].TradeDate.Sub(entry.EntryDate)
		if diff < 0 {
			diff = -diff
		}
		if diff <= 24*time.Hour && candidateValueMatch(buys[i], entry) {
			return &buys[i]
		}
	}
	return nil
}

// candidateValueMatch accepts a buy whose total value matches the report's
// buy value within the corporate-action tolerance, so that split/bonus
// mismatches still find their funding trade.
func candidateValueMatch(trade model.Trade, entry DisposalEntry) bool {
	return valuesMatch(trade.Value(), entry.BuyValue, actionTolerance)
}

// detectSplit recognizes a value-preserving quantity multiplication: total
// values agree within 2%, the quantity ratio sits within 0.01 of a common
// split ratio, and the implied post-split price is within 2% of
// oldPrice/ratio.
func detectSplit(trade model.Trade, entry DisposalEntry) *corporateaction.Proposal {
	if trade.Quantity == 0 || entry.Quantity == 0 {
		return nil
	}
	if !valuesMatch(trade.Value(), entry.BuyValue, actionTolerance) {
		return nil
	}

	qtyRatio := float64(entry.Quantity) / float64(trade.Quantity)
	entryPrice := entry.BuyValue.Div(decimal.NewFromInt(entry.Quantity))

	for _, ratio := range corporateaction.CommonRatios {
		if absF(qtyRatio-float64(ratio)) >= 0.01 {
			continue
		}
		expectedPrice := trade.Price.Div(decimal.NewFromInt(ratio))
		priceDrift := entryPrice.Sub(expectedPrice).Abs().Div(trade.Price)
		if priceDrift.GreaterThan(actionTolerance) {
			continue
		}

		confidence := corporateaction.ConfidenceMedium
		if absF(qtyRatio-float64(ratio)) < 0.001 {
			confidence = corporateaction.ConfidenceHigh
		}
		oldPrice := trade.Price
		return &corporateaction.Proposal{
			StockID:    trade.StockID,
			ActionType: model.ActionSplit,
			RatioFrom:  1,
			RatioTo:    ratio,
			OldPrice:   &oldPrice,
			NewPrice:   &entryPrice,
			Confidence: confidence,
		}
	}

	return nil
}

// detectBonus recognizes a value-preserving quantity increase matching the
// canonical bonus table.
func detectBonus(trade model.Trade, entry DisposalEntry) *corporateaction.Proposal {
	if trade.Quantity == 0 || entry.Quantity <= trade.Quantity {
		return nil
	}
	if !valuesMatch(trade.Value(), entry.BuyValue, actionTolerance) {
		return nil
	}

	qtyRatio := float64(entry.Quantity) / float64(trade.Quantity)
	for _, b := range bonusRatios {
		if absF(qtyRatio-b.multiplier) >= 0.01 {
			continue
		}
		oldPrice := trade.Price
		newPrice := entry.BuyValue.Div(decimal.NewFromInt(entry.Quantity))
		return &corporateaction.Proposal{
			StockID:    trade.StockID,
			ActionType: model.ActionBonus,
			RatioFrom:  b.from,
			RatioTo:    b.to,
			OldPrice:   &oldPrice,
			NewPrice:   &newPrice,
			Confidence: corporateaction.ConfidenceMedium,
		}
	}

	return nil
}

// valuesMatch reports whether two values agree within a relative tolerance.
func valuesMatch(a, b, tolerance decimal.Decimal) bool {
	if a.IsZero() && b.IsZero() {
		return true
	}
	if a.IsZero() || b.IsZero() {
		return false
	}
	larger := decimal.Max(a.Abs(), b.Abs())
	return a.Sub(b).Abs().Div(larger).LessThanOrEqual(tolerance)
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
