package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
)

// PriceRepository provides data access methods for the price_cache table.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// UpsertPrice stores or refreshes the cached price for a stock.
func (r *PriceRepository) UpsertPrice(ctx context.Context, p *model.PriceCache) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO price_cache (stock_id, current_price, previous_close, change_percent, currency, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (stock_id) DO UPDATE SET
			current_price = excluded.current_price,
			previous_close = excluded.previous_close,
			change_percent = excluded.change_percent,
			currency = excluded.currency,
			fetched_at = excluded.fetched_at`,
		p.StockID,
		decimalArg(p.CurrentPrice),
		optionalDecimal(p.PreviousClose),
		optionalDecimal(p.ChangePercent),
		nullString(p.Currency),
		p.FetchedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price: %w", err)
	}
	return nil
}

// GetPrice retrieves the cached price for one stock.
func (r *PriceRepository) GetPrice(stockID string) (model.PriceCache, error) {
	row := r.db.QueryRow(`
		SELECT stock_id, current_price, previous_close, change_percent, currency, fetched_at
		FROM price_cache WHERE stock_id = ?`, stockID)
	p, err := scanPrice(row)
	if err == sql.ErrNoRows {
		return model.PriceCache{}, apperrors.ErrPriceUnavailable
	}
	if err != nil {
		return model.PriceCache{}, fmt.Errorf("failed to get price: %w", err)
	}
	return p, nil
}

// GetPrices retrieves every cached price keyed by stock ID.
func (r *PriceRepository) GetPrices() (map[string]model.PriceCache, error) {
	rows, err := r.db.Query(`
		SELECT stock_id, current_price, previous_close, change_percent, currency, fetched_at
		FROM price_cache`)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_cache table: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]model.PriceCache)
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices[p.StockID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_cache table: %w", err)
	}
	return prices, nil
}

func scanPrice(row rowScanner) (model.PriceCache, error) {
	var p model.PriceCache
	var priceStr, fetchedStr string
	var prevClose, changePct, currency sql.NullString

	err := row.Scan(&p.StockID, &priceStr, &prevClose, &changePct, &currency, &fetchedStr)
	if err != nil {
		return model.PriceCache{}, err
	}

	if p.CurrentPrice, err = parseDecimal(priceStr); err != nil {
		return model.PriceCache{}, err
	}
	if p.PreviousClose, err = nullDecimal(prevClose); err != nil {
		return model.PriceCache{}, err
	}
	if p.ChangePercent, err = nullDecimal(changePct); err != nil {
		return model.PriceCache{}, err
	}
	p.Currency = currency.String
	if p.FetchedAt, err = ParseTime(fetchedStr); err != nil {
		return model.PriceCache{}, err
	}
	return p, nil
}
