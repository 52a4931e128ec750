package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is how DATE columns are stored.
const DateFormat = "2006-01-02"

// ParseTime parses a date string in "2006-01-02", RFC3339, or SQLite datetime
// format. Kept local to the repository layer to avoid cross-layer imports.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range []string{DateFormat, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date %q", str)
}

// parseDecimal converts a NUMERIC column scanned as string.
func parseDecimal(str string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse decimal %q: %w", str, err)
	}
	return d, nil
}

// nullDecimal converts an optional NUMERIC column.
func nullDecimal(str sql.NullString) (*decimal.Decimal, error) {
	if !str.Valid {
		return nil, nil
	}
	d, err := parseDecimal(str.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// nullTime converts an optional DATE/DATETIME column.
func nullTime(str sql.NullString) (*time.Time, error) {
	if !str.Valid || str.String == "" {
		return nil, nil
	}
	t, err := ParseTime(str.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// decimalArg renders a decimal for a NUMERIC parameter.
func decimalArg(d decimal.Decimal) string {
	return d.String()
}

// optional renders a nullable parameter.
func optionalTime(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return t.Format(layout)
}

func optionalDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
