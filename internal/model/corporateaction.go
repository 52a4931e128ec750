package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActionType is the closed set of structural change kinds.
type ActionType string

const (
	ActionSplit    ActionType = "split"
	ActionBonus    ActionType = "bonus"
	ActionMerger   ActionType = "merger"
	ActionDemerger ActionType = "demerger"
)

// Valid reports whether the action type is one of the known kinds.
func (a ActionType) Valid() bool {
	switch a {
	case ActionSplit, ActionBonus, ActionMerger, ActionDemerger:
		return true
	}
	return false
}

// CorporateAction represents a structural change to a stock's quantity/price
// history, such as a split or bonus issue. Automatically detected actions are
// created unapplied; applying is a one-way transition and the effect on
// derived holdings is a caller decision (holdings are re-derived with the
// adjustment folded in, stored allocations are untouched).
type CorporateAction struct {
	ID                    string           `json:"id"`
	StockID               string           `json:"stockId"`
	ActionType            ActionType       `json:"actionType"`
	RecordDate            *time.Time       `json:"recordDate,omitempty"`
	RatioFrom             int64            `json:"ratioFrom"`
	RatioTo               int64            `json:"ratioTo"`
	OldPrice              *decimal.Decimal `json:"oldPrice,omitempty"`
	NewPrice              *decimal.Decimal `json:"newPrice,omitempty"`
	DetectedAutomatically bool             `json:"detectedAutomatically"`
	Applied               bool             `json:"applied"`
	Notes                 string           `json:"notes,omitempty"`
	CreatedAt             time.Time        `json:"createdAt,omitempty"`
}

// QuantityMultiplier returns the factor applied to pre-record-date quantities.
// Splits multiply by to/from; bonus issues add the bonus shares, multiplying
// by (from+to)/from. Prices divide by the same factor so total value is
// preserved.
func (c CorporateAction) QuantityMultiplier() decimal.Decimal {
	from := decimal.NewFromInt(c.RatioFrom)
	to := decimal.NewFromInt(c.RatioTo)
	if c.ActionType == ActionBonus {
		return from.Add(to).Div(from)
	}
	return to.Div(from)
}
