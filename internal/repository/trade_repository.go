package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
)

// TradeRepository provides data access methods for the trade table.
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository creates a new TradeRepository with the provided database connection.
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

const tradeColumns = `id, stock_id, account_id, trade_type, trade_date, trade_datetime,
	quantity, price, trade_id, order_id, exchange, created_at`

// InsertTrade stores a new trade. A trade with the same broker trade ID for
// the same account is rejected with apperrors.ErrDuplicateTrade.
func (r *TradeRepository) InsertTrade(ctx context.Context, t *model.Trade) error {
	exists, err := r.Exists(ctx, t.AccountID, t.TradeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("trade %s in account %s: %w", t.TradeID, t.AccountID, apperrors.ErrDuplicateTrade)
	}

	query := `
		INSERT INTO trade (` + tradeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		t.ID,
		t.StockID,
		t.AccountID,
		t.TradeType,
		t.TradeDate.Format(DateFormat),
		optionalTime(t.TradeDatetime, time.RFC3339),
		t.Quantity,
		decimalArg(t.Price),
		t.TradeID,
		nullString(t.OrderID),
		nullString(t.Exchange),
		t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

// Exists reports whether a trade with the given broker trade ID already
// exists for the account.
func (r *TradeRepository) Exists(ctx context.Context, accountID, tradeID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trade WHERE account_id = ? AND trade_id = ?`,
		accountID, tradeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check trade existence: %w", err)
	}
	return count > 0, nil
}

// GetTradesForPair retrieves all trades for one stock/account pair in FIFO
// replay order: ascending date, missing datetimes before timestamped trades.
func (r *TradeRepository) GetTradesForPair(stockID, accountID string) ([]model.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trade
		WHERE stock_id = ? AND account_id = ?
		ORDER BY trade_date ASC, trade_datetime IS NOT NULL, trade_datetime ASC
	`
	return r.queryTrades(query, stockID, accountID)
}

// GetAllTrades retrieves every trade ordered by date.
func (r *TradeRepository) GetAllTrades() ([]model.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trade
		ORDER BY trade_date ASC, trade_datetime IS NOT NULL, trade_datetime ASC
	`
	return r.queryTrades(query)
}

// GetTrade retrieves a single trade by its internal ID.
func (r *TradeRepository) GetTrade(id string) (model.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trade WHERE id = ?`

	row := r.db.QueryRow(query, id)
	t, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return model.Trade{}, apperrors.ErrTradeNotFound
	}
	if err != nil {
		return model.Trade{}, fmt.Errorf("failed to get trade: %w", err)
	}
	return t, nil
}

// DeleteTrade removes a trade by its internal ID.
func (r *TradeRepository) DeleteTrade(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trade WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrTradeNotFound
	}
	return nil
}

// TradedPair identifies a stock/account combination with at least one trade.
type TradedPair struct {
	StockID   string
	AccountID string
}

// GetTradedPairs returns every distinct stock/account combination present in
// the trade table. Used to fan out holdings computation.
func (r *TradeRepository) GetTradedPairs(accountID string) ([]TradedPair, error) {
	query := `SELECT DISTINCT stock_id, account_id FROM trade`
	args := []any{}
	if accountID != "" {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query traded pairs: %w", err)
	}
	defer rows.Close()

	var pairs []TradedPair
	for rows.Next() {
		var p TradedPair
		if err := rows.Scan(&p.StockID, &p.AccountID); err != nil {
			return nil, fmt.Errorf("failed to scan traded pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating traded pairs: %w", err)
	}
	return pairs, nil
}

// GetEarliestTradeDate returns the date of the first trade on record, or the
// zero time when no trades exist.
func (r *TradeRepository) GetEarliestTradeDate() (time.Time, error) {
	var dateStr sql.NullString
	err := r.db.QueryRow(`SELECT MIN(trade_date) FROM trade`).Scan(&dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query earliest trade: %w", err)
	}
	if !dateStr.Valid {
		return time.Time{}, nil
	}
	return ParseTime(dateStr.String)
}

func (r *TradeRepository) queryTrades(query string, args ...any) ([]model.Trade, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade table: %w", err)
	}
	defer rows.Close()

	var trades []model.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade table: %w", err)
	}
	return trades, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (model.Trade, error) {
	var t model.Trade
	var dateStr, priceStr, createdStr string
	var datetimeStr, orderID, exchange sql.NullString

	err := row.Scan(
		&t.ID,
		&t.StockID,
		&t.AccountID,
		&t.TradeType,
		&dateStr,
		&datetimeStr,
		&t.Quantity,
		&priceStr,
		&t.TradeID,
		&orderID,
		&exchange,
		&createdStr,
	)
	if err != nil {
		return model.Trade{}, err
	}

	if t.TradeDate, err = ParseTime(dateStr); err != nil {
		return model.Trade{}, err
	}
	if t.TradeDatetime, err = nullTime(datetimeStr); err != nil {
		return model.Trade{}, err
	}
	if t.Price, err = parseDecimal(priceStr); err != nil {
		return model.Trade{}, err
	}
	if t.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.Trade{}, err
	}
	t.OrderID = orderID.String
	t.Exchange = exchange.String

	return t, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
