package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
)

// CorporateActionRepository provides data access methods for the
// corporate_action table.
type CorporateActionRepository struct {
	db *sql.DB
}

// NewCorporateActionRepository creates a new CorporateActionRepository with the provided database connection.
func NewCorporateActionRepository(db *sql.DB) *CorporateActionRepository {
	return &CorporateActionRepository{db: db}
}

const corporateActionColumns = `id, stock_id, action_type, record_date, ratio_from, ratio_to,
	old_price, new_price, detected_automatically, applied, notes, created_at`

// InsertAction stores a corporate action. Saving an action that already
// exists for the same stock, type, and ratio is a no-op that returns the
// existing record, so repeated detection runs do not pile up duplicates.
func (r *CorporateActionRepository) InsertAction(ctx context.Context, a *model.CorporateAction) (model.CorporateAction, error) {
	existing, err := r.findExisting(ctx, a.StockID, a.ActionType, a.RatioFrom, a.RatioTo)
	if err == nil {
		return existing, nil
	}
	if err != apperrors.ErrCorporateActionNotFound {
		return model.CorporateAction{}, err
	}

	query := `
		INSERT INTO corporate_action (` + corporateActionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		a.ID,
		a.StockID,
		a.ActionType,
		optionalTime(a.RecordDate, DateFormat),
		a.RatioFrom,
		a.RatioTo,
		optionalDecimal(a.OldPrice),
		optionalDecimal(a.NewPrice),
		a.DetectedAutomatically,
		a.Applied,
		nullString(a.Notes),
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return model.CorporateAction{}, fmt.Errorf("failed to insert corporate action: %w", err)
	}
	return *a, nil
}

func (r *CorporateActionRepository) findExisting(ctx context.Context, stockID string, actionType model.ActionType, ratioFrom, ratioTo int64) (model.CorporateAction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+corporateActionColumns+`
		FROM corporate_action
		WHERE stock_id = ? AND action_type = ? AND ratio_from = ? AND ratio_to = ?`,
		stockID, actionType, ratioFrom, ratioTo,
	)
	a, err := scanCorporateAction(row)
	if err == sql.ErrNoRows {
		return model.CorporateAction{}, apperrors.ErrCorporateActionNotFound
	}
	if err != nil {
		return model.CorporateAction{}, fmt.Errorf("failed to look up corporate action: %w", err)
	}
	return a, nil
}

// GetAction retrieves a corporate action by its ID.
func (r *CorporateActionRepository) GetAction(id string) (model.CorporateAction, error) {
	row := r.db.QueryRow(`SELECT `+corporateActionColumns+` FROM corporate_action WHERE id = ?`, id)
	a, err := scanCorporateAction(row)
	if err == sql.ErrNoRows {
		return model.CorporateAction{}, apperrors.ErrCorporateActionNotFound
	}
	if err != nil {
		return model.CorporateAction{}, fmt.Errorf("failed to get corporate action: %w", err)
	}
	return a, nil
}

// GetActionsForStock retrieves all corporate actions for a stock, oldest
// record date first so adjustments compose in chronological order.
func (r *CorporateActionRepository) GetActionsForStock(stockID string) ([]model.CorporateAction, error) {
	return r.queryActions(`
		SELECT `+corporateActionColumns+`
		FROM corporate_action
		WHERE stock_id = ?
		ORDER BY record_date ASC, created_at ASC`, stockID)
}

// GetAppliedActionsForStock retrieves only actions that have been confirmed.
func (r *CorporateActionRepository) GetAppliedActionsForStock(stockID string) ([]model.CorporateAction, error) {
	return r.queryActions(`
		SELECT `+corporateActionColumns+`
		FROM corporate_action
		WHERE stock_id = ? AND applied = TRUE
		ORDER BY record_date ASC, created_at ASC`, stockID)
}

// ListActions retrieves every corporate action, unapplied proposals first.
func (r *CorporateActionRepository) ListActions() ([]model.CorporateAction, error) {
	return r.queryActions(`
		SELECT ` + corporateActionColumns + `
		FROM corporate_action
		ORDER BY applied ASC, created_at DESC`)
}

// MarkApplied flips a proposal to applied. Applying is a one-way transition;
// re-applying an already applied action is rejected.
func (r *CorporateActionRepository) MarkApplied(ctx context.Context, id string) error {
	a, err := r.GetAction(id)
	if err != nil {
		return err
	}
	if a.Applied {
		return fmt.Errorf("corporate action %s: %w", id, apperrors.ErrActionAlreadyApplied)
	}

	_, err = r.db.ExecContext(ctx, `UPDATE corporate_action SET applied = TRUE WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark corporate action applied: %w", err)
	}
	return nil
}

// DeleteAction removes a corporate action, typically a rejected proposal.
func (r *CorporateActionRepository) DeleteAction(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM corporate_action WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete corporate action: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete corporate action: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrCorporateActionNotFound
	}
	return nil
}

func (r *CorporateActionRepository) queryActions(query string, args ...any) ([]model.CorporateAction, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query corporate_action table: %w", err)
	}
	defer rows.Close()

	var actions []model.CorporateAction
	for rows.Next() {
		a, err := scanCorporateAction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan corporate action: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating corporate_action table: %w", err)
	}
	return actions, nil
}

func scanCorporateAction(row rowScanner) (model.CorporateAction, error) {
	var a model.CorporateAction
	var recordDate, oldPrice, newPrice, notes sql.NullString
	var createdStr string

	err := row.Scan(
		&a.ID,
		&a.StockID,
		&a.ActionType,
		&recordDate,
		&a.RatioFrom,
		&a.RatioTo,
		&oldPrice,
		&newPrice,
		&a.DetectedAutomatically,
		&a.Applied,
		&notes,
		&createdStr,
	)
	if err != nil {
		return model.CorporateAction{}, err
	}

	if a.RecordDate, err = nullTime(recordDate); err != nil {
		return model.CorporateAction{}, err
	}
	if a.OldPrice, err = nullDecimal(oldPrice); err != nil {
		return model.CorporateAction{}, err
	}
	if a.NewPrice, err = nullDecimal(newPrice); err != nil {
		return model.CorporateAction{}, err
	}
	a.Notes = notes.String
	if a.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.CorporateAction{}, err
	}
	return a, nil
}
