package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
)

// OwnerRepository provides data access methods for the owner table.
type OwnerRepository struct {
	db *sql.DB
}

// NewOwnerRepository creates a new OwnerRepository with the provided database connection.
func NewOwnerRepository(db *sql.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

// InsertOwner stores a new owner.
func (r *OwnerRepository) InsertOwner(ctx context.Context, o *model.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owner (id, name, is_default, created_at)
		VALUES (?, ?, ?, ?)`,
		o.ID, o.Name, o.IsDefault, o.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner: %w", err)
	}
	return nil
}

// GetOwner retrieves an owner by its ID.
func (r *OwnerRepository) GetOwner(id string) (model.Owner, error) {
	var o model.Owner
	var createdStr string
	err := r.db.QueryRow(`
		SELECT id, name, is_default, created_at FROM owner WHERE id = ?`, id,
	).Scan(&o.ID, &o.Name, &o.IsDefault, &createdStr)
	if err == sql.ErrNoRows {
		return model.Owner{}, apperrors.ErrOwnerNotFound
	}
	if err != nil {
		return model.Owner{}, fmt.Errorf("failed to get owner: %w", err)
	}
	if o.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.Owner{}, err
	}
	return o, nil
}

// OwnerExists reports whether an owner with the given ID exists.
func (r *OwnerRepository) OwnerExists(id string) (bool, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM owner WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check owner existence: %w", err)
	}
	return count > 0, nil
}

// GetDefaultOwner retrieves the owner flagged as default.
func (r *OwnerRepository) GetDefaultOwner() (model.Owner, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM owner WHERE is_default = TRUE LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return model.Owner{}, apperrors.ErrOwnerNotFound
	}
	if err != nil {
		return model.Owner{}, fmt.Errorf("failed to get default owner: %w", err)
	}
	return r.GetOwner(id)
}

// ListOwners retrieves every owner ordered by name.
func (r *OwnerRepository) ListOwners() ([]model.Owner, error) {
	rows, err := r.db.Query(`SELECT id, name, is_default, created_at FROM owner ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query owner table: %w", err)
	}
	defer rows.Close()

	var owners []model.Owner
	for rows.Next() {
		var o model.Owner
		var createdStr string
		if err := rows.Scan(&o.ID, &o.Name, &o.IsDefault, &createdStr); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		if o.CreatedAt, err = ParseTime(createdStr); err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

// GoalRepository provides data access methods for the goal table.
type GoalRepository struct {
	db *sql.DB
}

// NewGoalRepository creates a new GoalRepository with the provided database connection.
func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// InsertGoal stores a new goal.
func (r *GoalRepository) InsertGoal(ctx context.Context, g *model.Goal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goal (id, name, target_amount, is_default, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.Name, optionalDecimal(g.TargetAmount), g.IsDefault, g.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	return nil
}

// GetGoal retrieves a goal by its ID.
func (r *GoalRepository) GetGoal(id string) (model.Goal, error) {
	var g model.Goal
	var target sql.NullString
	var createdStr string
	err := r.db.QueryRow(`
		SELECT id, name, target_amount, is_default, created_at FROM goal WHERE id = ?`, id,
	).Scan(&g.ID, &g.Name, &target, &g.IsDefault, &createdStr)
	if err == sql.ErrNoRows {
		return model.Goal{}, apperrors.ErrGoalNotFound
	}
	if err != nil {
		return model.Goal{}, fmt.Errorf("failed to get goal: %w", err)
	}
	if g.TargetAmount, err = nullDecimal(target); err != nil {
		return model.Goal{}, err
	}
	if g.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.Goal{}, err
	}
	return g, nil
}

// GoalExists reports whether a goal with the given ID exists.
func (r *GoalRepository) GoalExists(id string) (bool, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM goal WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check goal existence: %w", err)
	}
	return count > 0, nil
}

// GetDefaultGoal retrieves the goal flagged as default.
func (r *GoalRepository) GetDefaultGoal() (model.Goal, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM goal WHERE is_default = TRUE LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return model.Goal{}, apperrors.ErrGoalNotFound
	}
	if err != nil {
		return model.Goal{}, fmt.Errorf("failed to get default goal: %w", err)
	}
	return r.GetGoal(id)
}

// ListGoals retrieves every goal ordered by name.
func (r *GoalRepository) ListGoals() ([]model.Goal, error) {
	rows, err := r.db.Query(`SELECT id, name, target_amount, is_default, created_at FROM goal ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query goal table: %w", err)
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		var g model.Goal
		var target sql.NullString
		var createdStr string
		if err := rows.Scan(&g.ID, &g.Name, &target, &g.IsDefault, &createdStr); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		if g.TargetAmount, err = nullDecimal(target); err != nil {
			return nil, err
		}
		if g.CreatedAt, err = ParseTime(createdStr); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}
