package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
)

// RealizedPnLRepository provides data access methods for the realized_pnl
// table. Imported rows come from broker tax reports and feed reconciliation;
// calculated rows are persisted lot-engine matches.
type RealizedPnLRepository struct {
	db *sql.DB
}

// NewRealizedPnLRepository creates a new RealizedPnLRepository with the provided database connection.
func NewRealizedPnLRepository(db *sql.DB) *RealizedPnLRepository {
	return &RealizedPnLRepository{db: db}
}

const realizedPnLColumns = `id, stock_id, account_id, entry_date, exit_date, quantity,
	buy_value, sell_value, profit, holding_days, tax_term, financial_year, source, created_at`

// InsertEntry stores a realized P&L row.
func (r *RealizedPnLRepository) InsertEntry(ctx context.Context, p *model.RealizedPnL) error {
	query := `
		INSERT INTO realized_pnl (` + realizedPnLColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.StockID,
		p.AccountID,
		p.EntryDate.Format(DateFormat),
		p.ExitDate.Format(DateFormat),
		p.Quantity,
		decimalArg(p.BuyValue),
		decimalArg(p.SellValue),
		decimalArg(p.Profit),
		p.HoldingDays,
		p.TaxTerm,
		p.FinancialYear,
		p.Source,
		p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert realized pnl: %w", err)
	}
	return nil
}

// GetImportedEntries retrieves broker-reported disposals, optionally filtered
// by financial year. These are the reference side of a reconciliation run.
func (r *RealizedPnLRepository) GetImportedEntries(financialYear string) ([]model.RealizedPnL, error) {
	query := `SELECT ` + realizedPnLColumns + ` FROM realized_pnl WHERE source = ?`
	args := []any{model.PnLSourceImported}
	if financialYear != "" {
		query += ` AND financial_year = ?`
		args = append(args, financialYear)
	}
	query += ` ORDER BY exit_date ASC`
	return r.queryEntries(query, args...)
}

// GetEntries retrieves realized P&L rows filtered by financial year, stock,
// and source. Empty filters are skipped.
func (r *RealizedPnLRepository) GetEntries(financialYear, stockID, source string) ([]model.RealizedPnL, error) {
	query := `SELECT ` + realizedPnLColumns + ` FROM realized_pnl WHERE 1=1`
	var args []any
	if financialYear != "" {
		query += ` AND financial_year = ?`
		args = append(args, financialYear)
	}
	if stockID != "" {
		query += ` AND stock_id = ?`
		args = append(args, stockID)
	}
	if source != "" {
		query += ` AND source = ?`
		args = append(args, source)
	}
	query += ` ORDER BY exit_date ASC`
	return r.queryEntries(query, args...)
}

// DeleteCalculatedEntries clears persisted lot-engine matches so they can be
// rebuilt from the trade log.
func (r *RealizedPnLRepository) DeleteCalculatedEntries(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM realized_pnl WHERE source = ?`, model.PnLSourceCalculated)
	if err != nil {
		return fmt.Errorf("failed to delete calculated pnl: %w", err)
	}
	return nil
}

func (r *RealizedPnLRepository) queryEntries(query string, args ...any) ([]model.RealizedPnL, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query realized_pnl table: %w", err)
	}
	defer rows.Close()

	var entries []model.RealizedPnL
	for rows.Next() {
		p, err := scanRealizedPnL(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan realized pnl: %w", err)
		}
		entries = append(entries, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating realized_pnl table: %w", err)
	}
	return entries, nil
}

func scanRealizedPnL(row rowScanner) (model.RealizedPnL, error) {
	var p model.RealizedPnL
	var entryStr, exitStr, buyStr, sellStr, profitStr, createdStr string

	err := row.Scan(
		&p.ID,
		&p.StockID,
		&p.AccountID,
		&entryStr,
		&exitStr,
		&p.Quantity,
		&buyStr,
		&sellStr,
		&profitStr,
		&p.HoldingDays,
		&p.TaxTerm,
		&p.FinancialYear,
		&p.Source,
		&createdStr,
	)
	if err != nil {
		return model.RealizedPnL{}, err
	}

	if p.EntryDate, err = ParseTime(entryStr); err != nil {
		return model.RealizedPnL{}, err
	}
	if p.ExitDate, err = ParseTime(exitStr); err != nil {
		return model.RealizedPnL{}, err
	}
	if p.BuyValue, err = parseDecimal(buyStr); err != nil {
		return model.RealizedPnL{}, err
	}
	if p.SellValue, err = parseDecimal(sellStr); err != nil {
		return model.RealizedPnL{}, err
	}
	if p.Profit, err = parseDecimal(profitStr); err != nil {
		return model.RealizedPnL{}, err
	}
	if p.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.RealizedPnL{}, err
	}
	return p, nil
}
