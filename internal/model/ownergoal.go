package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Owner represents a person units can be allocated to. Exactly one owner is
// flagged as the default; unallocated units notionally belong to it.
type Owner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Goal represents an investment goal units can be allocated towards.
type Goal struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	TargetAmount *decimal.Decimal `json:"targetAmount,omitempty"`
	IsDefault    bool             `json:"isDefault"`
	CreatedAt    time.Time        `json:"createdAt,omitempty"`
}
