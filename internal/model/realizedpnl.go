package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tax term classification of a disposal by holding period.
const (
	TaxTermShort = "STCG"
	TaxTermLong  = "LTCG"
)

// Provenance of a realized P&L row.
const (
	PnLSourceImported   = "imported"
	PnLSourceCalculated = "calculated"
)

// RealizedPnL is a disposal record: either imported from a broker tax P&L
// report, or a persisted snapshot of a lot-engine match. Imported rows are the
// reconciliation engine's reference data; calculated rows are a derivable
// cache and can be rebuilt from the trade log at any time.
type RealizedPnL struct {
	ID            string          `json:"id"`
	StockID       string          `json:"stockId"`
	AccountID     string          `json:"accountId"`
	EntryDate     time.Time       `json:"entryDate"`
	ExitDate      time.Time       `json:"exitDate"`
	Quantity      int64           `json:"quantity"`
	BuyValue      decimal.Decimal `json:"buyValue"`
	SellValue     decimal.Decimal `json:"sellValue"`
	Profit        decimal.Decimal `json:"profit"`
	HoldingDays   int             `json:"holdingDays"`
	TaxTerm       string          `json:"taxTerm"`
	FinancialYear string          `json:"financialYear"`
	Source        string          `json:"source"`
	CreatedAt     time.Time       `json:"createdAt,omitempty"`
}

// FinancialYear returns the Indian financial year label (April 1 to March 31)
// for a date, e.g. "2024-2025".
func FinancialYear(date time.Time) string {
	year := date.Year()
	if date.Month() >= time.April {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}
