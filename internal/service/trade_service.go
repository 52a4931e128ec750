package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
)

// TradeService handles trade ingestion and lookup. Trades are immutable once
// imported; correcting a mistake means deleting and re-importing.
type TradeService struct {
	tradeRepo   *repository.TradeRepository
	stockRepo   *repository.StockRepository
	accountRepo *repository.AccountRepository
	log         zerolog.Logger
}

// NewTradeService creates a new TradeService with the provided repository dependencies.
func NewTradeService(
	tradeRepo *repository.TradeRepository,
	stockRepo *repository.StockRepository,
	accountRepo *repository.AccountRepository,
	log zerolog.Logger,
) *TradeService {
	return &TradeService{
		tradeRepo:   tradeRepo,
		stockRepo:   stockRepo,
		accountRepo: accountRepo,
		log:         log.With().Str("component", "trade_service").Logger(),
	}
}

// NewTradeInput carries the fields of a trade to be recorded.
type NewTradeInput struct {
	StockID       string
	AccountID     string
	TradeType     string
	TradeDate     time.Time
	TradeDatetime *time.Time
	Quantity      int64
	Price         decimal.Decimal
	TradeID       string
	OrderID       string
	Exchange      string
}

// ImportSummary reports the outcome of a bulk trade import.
type ImportSummary struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// CreateTrade validates and stores a single trade.
func (s *TradeService) CreateTrade(ctx context.Context, input NewTradeInput) (model.Trade, error) {
	if err := s.validateInput(input); err != nil {
		return model.Trade{}, err
	}
	if _, err := s.stockRepo.GetStock(input.StockID); err != nil {
		return model.Trade{}, err
	}
	if _, err := s.accountRepo.GetAccount(input.AccountID); err != nil {
		return model.Trade{}, err
	}

	trade := model.Trade{
		ID:            uuid.New().String(),
		StockID:       input.StockID,
		AccountID:     input.AccountID,
		TradeType:     input.TradeType,
		TradeDate:     input.TradeDate,
		TradeDatetime: input.TradeDatetime,
		Quantity:      input.Quantity,
		Price:         input.Price,
		TradeID:       input.TradeID,
		OrderID:       input.OrderID,
		Exchange:      input.Exchange,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.tradeRepo.InsertTrade(ctx, &trade); err != nil {
		return model.Trade{}, err
	}
	return trade, nil
}

// ImportTrades bulk-loads a tradebook export. Duplicates (same account and
// broker trade ID) are skipped, invalid rows are counted as failed, and
// neither aborts the rest of the import.
func (s *TradeService) ImportTrades(ctx context.Context, inputs []NewTradeInput) (ImportSummary, error) {
	var summary ImportSummary
	for _, input := range inputs {
		_, err := s.CreateTrade(ctx, input)
		switch {
		case err == nil:
			summary.Imported++
		case errors.Is(err, apperrors.ErrDuplicateTrade):
			summary.Skipped++
		default:
			summary.Failed++
			s.log.Warn().Err(err).
				Str("trade_id", input.TradeID).
				Msg("trade import row rejected")
		}
	}
	s.log.Info().
		Int("imported", summary.Imported).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("trade import finished")
	return summary, nil
}

// GetTrades retrieves trades with display names resolved, optionally filtered
// by stock and account.
func (s *TradeService) GetTrades(stockID, accountID string) ([]model.TradeResponse, error) {
	var trades []model.Trade
	var err error
	if stockID != "" && accountID != "" {
		trades, err = s.tradeRepo.GetTradesForPair(stockID, accountID)
	} else {
		trades, err = s.tradeRepo.GetAllTrades()
	}
	if err != nil {
		return nil, err
	}

	stocks, err := s.stockRepo.GetStocks()
	if err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.GetAccounts()
	if err != nil {
		return nil, err
	}

	responses := make([]model.TradeResponse, 0, len(trades))
	for _, t := range trades {
		if accountID != "" && t.AccountID != accountID {
			continue
		}
		if stockID != "" && t.StockID != stockID {
			continue
		}
		r := model.TradeResponse{Trade: t}
		if stock, ok := stocks[t.StockID]; ok {
			r.Symbol = stock.Symbol
			r.StockName = stock.Name
		}
		if account, ok := accounts[t.AccountID]; ok {
			r.AccountNumber = account.AccountNumber
		}
		responses = append(responses, r)
	}
	return responses, nil
}

// DeleteTrade removes a trade from the log.
func (s *TradeService) DeleteTrade(ctx context.Context, id string) error {
	return s.tradeRepo.DeleteTrade(ctx, id)
}

func (s *TradeService) validateInput(input NewTradeInput) error {
	if input.StockID == "" || input.AccountID == "" || input.TradeID == "" {
		return apperrors.ErrEmptyID
	}
	if input.TradeType != model.TradeTypeBuy && input.TradeType != model.TradeTypeSell {
		return apperrors.ErrInvalidTradeType
	}
	if input.TradeDate.IsZero() {
		return apperrors.ErrInvalidDate
	}
	if input.Quantity <= 0 {
		return apperrors.ErrInvalidQuantity
	}
	if !input.Price.IsPositive() {
		return apperrors.ErrInvalidPrice
	}
	return nil
}
