package model

import "time"

// Stock represents a tradeable security (equity or ETF).
// ISIN is the stable cross-source identifier; Symbol is the human-readable
// ticker used as a fallback when reconciling external reports.
type Stock struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	ISIN      string    `json:"isin,omitempty"`
	Exchange  string    `json:"exchange,omitempty"`
	Sector    string    `json:"sector,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Account represents a brokerage account holding trades.
type Account struct {
	ID            string    `json:"id"`
	AccountNumber string    `json:"accountNumber"`
	Broker        string    `json:"broker,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}
