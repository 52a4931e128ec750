// Package validation provides input validation helpers shared by the API layer.
package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
)

// ValidateUUID checks that a string is a well-formed UUID.
func ValidateUUID(id string) error {
	if id == "" {
		return apperrors.ErrEmptyID
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid UUID %q: %w", id, err)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, apperrors.ErrInvalidDate)
	}
	return t.UTC(), nil
}

// ParseDatetime parses an optional RFC3339 or space-separated datetime string.
// Empty input returns nil.
func ParseDatetime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", s, apperrors.ErrInvalidDate)
}

// ValidateFinancialYear checks the "2024-2025" label format: two consecutive
// years joined by a hyphen.
func ValidateFinancialYear(fy string) error {
	var start, end int
	if _, err := fmt.Sscanf(fy, "%d-%d", &start, &end); err != nil || end != start+1 {
		return fmt.Errorf("financial year %q: %w", fy, apperrors.ErrInvalidDate)
	}
	return nil
}
