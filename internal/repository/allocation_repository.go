package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
)

// AllocationRepository provides data access methods for the allocation table.
// Allocations are the only durable, caller-owned entity in the ownership
// ledger; everything else is derived from trades on demand.
type AllocationRepository struct {
	db *sql.DB
}

// NewAllocationRepository creates a new AllocationRepository with the provided database connection.
func NewAllocationRepository(db *sql.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

const allocationColumns = `id, stock_id, account_id, owner_id, goal_id, quantity,
	buy_price, buy_date, created_at, updated_at`

// InsertAllocation stores a new allocation.
func (r *AllocationRepository) InsertAllocation(ctx context.Context, a *model.Allocation) error {
	query := `
		INSERT INTO allocation (` + allocationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.StockID,
		a.AccountID,
		a.OwnerID,
		a.GoalID,
		a.Quantity,
		decimalArg(a.BuyPrice),
		a.BuyDate.Format(DateFormat),
		a.CreatedAt.Format(time.RFC3339),
		a.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert allocation: %w", err)
	}
	return nil
}

// UpdateAllocation persists changed owner, goal, and quantity fields.
// BuyPrice and BuyDate are deliberately not updatable: they are frozen at
// creation time.
func (r *AllocationRepository) UpdateAllocation(ctx context.Context, a *model.Allocation) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE allocation
		SET owner_id = ?, goal_id = ?, quantity = ?, updated_at = ?
		WHERE id = ?`,
		a.OwnerID, a.GoalID, a.Quantity, time.Now().UTC().Format(time.RFC3339), a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update allocation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update allocation: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrAllocationNotFound
	}
	return nil
}

// DeleteAllocation removes an allocation, returning its units to the
// unassigned pool.
func (r *AllocationRepository) DeleteAllocation(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM allocation WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete allocation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete allocation: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrAllocationNotFound
	}
	return nil
}

// GetAllocation retrieves a single allocation by its ID.
func (r *AllocationRepository) GetAllocation(id string) (model.Allocation, error) {
	row := r.db.QueryRow(`SELECT `+allocationColumns+` FROM allocation WHERE id = ?`, id)
	a, err := scanAllocation(row)
	if err == sql.ErrNoRows {
		return model.Allocation{}, apperrors.ErrAllocationNotFound
	}
	if err != nil {
		return model.Allocation{}, fmt.Errorf("failed to get allocation: %w", err)
	}
	return a, nil
}

// GetAllocationsForPair retrieves allocations for one stock/account pair
// ordered by buy date ascending (oldest first), the order the sync
// reduction walks.
func (r *AllocationRepository) GetAllocationsForPair(stockID, accountID string) ([]model.Allocation, error) {
	query := `
		SELECT ` + allocationColumns + `
		FROM allocation
		WHERE stock_id = ? AND account_id = ?
		ORDER BY buy_date ASC, created_at ASC
	`
	return r.queryAllocations(query, stockID, accountID)
}

// ListAllocations retrieves allocations, optionally filtered by owner or goal.
func (r *AllocationRepository) ListAllocations(ownerID, goalID string) ([]model.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM allocation WHERE 1=1`
	var args []any
	if ownerID != "" {
		query += ` AND owner_id = ?`
		args = append(args, ownerID)
	}
	if goalID != "" {
		query += ` AND goal_id = ?`
		args = append(args, goalID)
	}
	query += ` ORDER BY buy_date ASC`
	return r.queryAllocations(query, args...)
}

// SumQuantityForPair returns the total allocated quantity for a stock/account
// pair.
func (r *AllocationRepository) SumQuantityForPair(stockID, accountID string) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRow(`
		SELECT SUM(quantity) FROM allocation WHERE stock_id = ? AND account_id = ?`,
		stockID, accountID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum allocations: %w", err)
	}
	return total.Int64, nil
}

func (r *AllocationRepository) queryAllocations(query string, args ...any) ([]model.Allocation, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation table: %w", err)
	}
	defer rows.Close()

	var allocations []model.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		allocations = append(allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation table: %w", err)
	}
	return allocations, nil
}

func scanAllocation(row rowScanner) (model.Allocation, error) {
	var a model.Allocation
	var priceStr, dateStr, createdStr, updatedStr string

	err := row.Scan(
		&a.ID,
		&a.StockID,
		&a.AccountID,
		&a.OwnerID,
		&a.GoalID,
		&a.Quantity,
		&priceStr,
		&dateStr,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return model.Allocation{}, err
	}

	if a.BuyPrice, err = parseDecimal(priceStr); err != nil {
		return model.Allocation{}, err
	}
	if a.BuyDate, err = ParseTime(dateStr); err != nil {
		return model.Allocation{}, err
	}
	if a.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.Allocation{}, err
	}
	if a.UpdatedAt, err = ParseTime(updatedStr); err != nil {
		return model.Allocation{}, err
	}
	return a, nil
}
