package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
)

// StockRepository provides data access methods for the stock table.
type StockRepository struct {
	db *sql.DB
}

// NewStockRepository creates a new StockRepository with the provided database connection.
func NewStockRepository(db *sql.DB) *StockRepository {
	return &StockRepository{db: db}
}

// InsertStock stores a new stock.
func (r *StockRepository) InsertStock(ctx context.Context, s *model.Stock) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock (id, symbol, name, isin, exchange, sector, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Symbol, s.Name, nullString(s.ISIN), nullString(s.Exchange), nullString(s.Sector),
		s.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert stock: %w", err)
	}
	return nil
}

// GetStock retrieves a stock by its ID.
func (r *StockRepository) GetStock(id string) (model.Stock, error) {
	row := r.db.QueryRow(`
		SELECT id, symbol, name, isin, exchange, sector, created_at
		FROM stock WHERE id = ?`, id)
	return r.scanStock(row)
}

// GetStockBySymbol retrieves a stock by its ticker symbol.
func (r *StockRepository) GetStockBySymbol(symbol string) (model.Stock, error) {
	row := r.db.QueryRow(`
		SELECT id, symbol, name, isin, exchange, sector, created_at
		FROM stock WHERE symbol = ?`, symbol)
	return r.scanStock(row)
}

// GetStocks retrieves every stock keyed by ID.
func (r *StockRepository) GetStocks() (map[string]model.Stock, error) {
	rows, err := r.db.Query(`
		SELECT id, symbol, name, isin, exchange, sector, created_at
		FROM stock ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock table: %w", err)
	}
	defer rows.Close()

	stocks := make(map[string]model.Stock)
	for rows.Next() {
		s, err := r.scanStock(rows)
		if err != nil {
			return nil, err
		}
		stocks[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock table: %w", err)
	}
	return stocks, nil
}

// ListStocks retrieves every stock ordered by symbol.
func (r *StockRepository) ListStocks() ([]model.Stock, error) {
	stocks, err := r.GetStocks()
	if err != nil {
		return nil, err
	}
	out := make([]model.Stock, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, s)
	}
	return out, nil
}

func (r *StockRepository) scanStock(row rowScanner) (model.Stock, error) {
	var s model.Stock
	var isin, exchange, sector sql.NullString
	var createdStr string

	err := row.Scan(&s.ID, &s.Symbol, &s.Name, &isin, &exchange, &sector, &createdStr)
	if err == sql.ErrNoRows {
		return model.Stock{}, apperrors.ErrStockNotFound
	}
	if err != nil {
		return model.Stock{}, fmt.Errorf("failed to scan stock: %w", err)
	}

	s.ISIN = isin.String
	s.Exchange = exchange.String
	s.Sector = sector.String
	if s.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.Stock{}, err
	}
	return s, nil
}

// AccountRepository provides data access methods for the account table.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// InsertAccount stores a new account.
func (r *AccountRepository) InsertAccount(ctx context.Context, a *model.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO account (id, account_number, broker, description, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.AccountNumber, nullString(a.Broker), nullString(a.Description),
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by its ID.
func (r *AccountRepository) GetAccount(id string) (model.Account, error) {
	row := r.db.QueryRow(`
		SELECT id, account_number, broker, description, created_at
		FROM account WHERE id = ?`, id)
	return r.scanAccount(row)
}

// GetAccounts retrieves every account keyed by ID.
func (r *AccountRepository) GetAccounts() (map[string]model.Account, error) {
	rows, err := r.db.Query(`
		SELECT id, account_number, broker, description, created_at
		FROM account ORDER BY account_number ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query account table: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]model.Account)
	for rows.Next() {
		a, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account table: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) scanAccount(row rowScanner) (model.Account, error) {
	var a model.Account
	var broker, description sql.NullString
	var createdStr string

	err := row.Scan(&a.ID, &a.AccountNumber, &broker, &description, &createdStr)
	if err == sql.ErrNoRows {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to scan account: %w", err)
	}

	a.Broker = broker.String
	a.Description = description.String
	if a.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.Account{}, err
	}
	return a, nil
}
