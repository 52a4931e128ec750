package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/corporateaction"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
)

// CorporateActionService manages split and bonus records: automatic detection
// from trade history, manual entry, and the one-way applied transition.
type CorporateActionService struct {
	actionRepo *repository.CorporateActionRepository
	tradeRepo  *repository.TradeRepository
	stockRepo  *repository.StockRepository
	log        zerolog.Logger
}

// NewCorporateActionService creates a new CorporateActionService with the provided repository dependencies.
func NewCorporateActionService(
	actionRepo *repository.CorporateActionRepository,
	tradeRepo *repository.TradeRepository,
	stockRepo *repository.StockRepository,
	log zerolog.Logger,
) *CorporateActionService {
	return &CorporateActionService{
		actionRepo: actionRepo,
		tradeRepo:  tradeRepo,
		stockRepo:  stockRepo,
		log:        log.With().Str("component", "corporate_action_service").Logger(),
	}
}

// DetectForStock runs split detection over a stock's full trade history
// across all accounts and persists any proposal. Detection is idempotent:
// re-running with the same history returns the already saved record.
// Returns nil when no pattern is found.
func (s *CorporateActionService) DetectForStock(ctx context.Context, stockID string) (*model.CorporateAction, error) {
	if _, err := s.stockRepo.GetStock(stockID); err != nil {
		return nil, err
	}

	trades, err := s.tradeRepo.GetAllTrades()
	if err != nil {
		return nil, err
	}
	var stockTrades []model.Trade
	for _, t := range trades {
		if t.StockID == stockID {
			stockTrades = append(stockTrades, t)
		}
	}

	proposal := corporateaction.Detect(stockTrades)
	if proposal == nil {
		return nil, nil
	}

	saved, err := s.SaveProposal(ctx, *proposal)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// SaveProposal persists a detected proposal as an unapplied corporate action.
// A proposal matching an existing record (same stock, type, ratio) returns
// that record unchanged.
func (s *CorporateActionService) SaveProposal(ctx context.Context, p corporateaction.Proposal) (model.CorporateAction, error) {
	action := model.CorporateAction{
		ID:                    uuid.New().String(),
		StockID:               p.StockID,
		ActionType:            p.ActionType,
		RecordDate:            p.RecordDate,
		RatioFrom:             p.RatioFrom,
		RatioTo:               p.RatioTo,
		OldPrice:              p.OldPrice,
		NewPrice:              p.NewPrice,
		DetectedAutomatically: true,
		Notes:                 fmt.Sprintf("auto-detected, confidence %s", p.Confidence),
		CreatedAt:             time.Now().UTC(),
	}
	return s.actionRepo.InsertAction(ctx, &action)
}

// ManualActionInput carries the fields of a manually entered corporate action.
type ManualActionInput struct {
	StockID    string
	ActionType model.ActionType
	RecordDate *time.Time
	RatioFrom  int64
	RatioTo    int64
	OldPrice   *decimal.Decimal
	NewPrice   *decimal.Decimal
	Notes      string
}

// CreateAction records a corporate action entered by hand, for example a
// split announced by the exchange that detection has no price evidence for.
func (s *CorporateActionService) CreateAction(ctx context.Context, input ManualActionInput) (model.CorporateAction, error) {
	if _, err := s.stockRepo.GetStock(input.StockID); err != nil {
		return model.CorporateAction{}, err
	}
	if !input.ActionType.Valid() {
		return model.CorporateAction{}, fmt.Errorf("action type %q: %w", input.ActionType, apperrors.ErrInvalidTradeType)
	}
	if input.RatioFrom <= 0 || input.RatioTo <= 0 {
		return model.CorporateAction{}, apperrors.ErrInvalidQuantity
	}

	action := model.CorporateAction{
		ID:                    uuid.New().String(),
		StockID:               input.StockID,
		ActionType:            input.ActionType,
		RecordDate:            input.RecordDate,
		RatioFrom:             input.RatioFrom,
		RatioTo:               input.RatioTo,
		OldPrice:              input.OldPrice,
		NewPrice:              input.NewPrice,
		DetectedAutomatically: false,
		Notes:                 input.Notes,
		CreatedAt:             time.Now().UTC(),
	}
	return s.actionRepo.InsertAction(ctx, &action)
}

// ApplyAction confirms a proposal. Applied actions are folded into every
// subsequent holdings replay; applying twice fails with
// apperrors.ErrActionAlreadyApplied. Stored allocations are untouched, their
// buy prices stay frozen at pre-action values.
func (s *CorporateActionService) ApplyAction(ctx context.Context, id string) (model.CorporateAction, error) {
	if err := s.actionRepo.MarkApplied(ctx, id); err != nil {
		return model.CorporateAction{}, err
	}
	action, err := s.actionRepo.GetAction(id)
	if err != nil {
		return model.CorporateAction{}, err
	}
	s.log.Info().
		Str("action_id", id).
		Str("stock_id", action.StockID).
		Str("type", string(action.ActionType)).
		Int64("ratio_from", action.RatioFrom).
		Int64("ratio_to", action.RatioTo).
		Msg("corporate action applied")
	return action, nil
}

// DeleteAction removes a rejected proposal.
func (s *CorporateActionService) DeleteAction(ctx context.Context, id string) error {
	return s.actionRepo.DeleteAction(ctx, id)
}

// GetActions retrieves corporate actions, optionally for one stock.
func (s *CorporateActionService) GetActions(stockID string) ([]model.CorporateAction, error) {
	if stockID != "" {
		return s.actionRepo.GetActionsForStock(stockID)
	}
	return s.actionRepo.ListActions()
}
