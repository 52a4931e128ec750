package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
)

// RealizedPnLService manages disposal records: querying imported and
// calculated rows and rebuilding the calculated set from the trade log.
type RealizedPnLService struct {
	pnlRepo   *repository.RealizedPnLRepository
	tradeRepo *repository.TradeRepository
	holdings  *HoldingsService
	log       zerolog.Logger
}

// NewRealizedPnLService creates a new RealizedPnLService with the provided dependencies.
func NewRealizedPnLService(
	pnlRepo *repository.RealizedPnLRepository,
	tradeRepo *repository.TradeRepository,
	holdings *HoldingsService,
	log zerolog.Logger,
) *RealizedPnLService {
	return &RealizedPnLService{
		pnlRepo:   pnlRepo,
		tradeRepo: tradeRepo,
		holdings:  holdings,
		log:       log.With().Str("component", "pnl_service").Logger(),
	}
}

// GetEntries retrieves realized P&L rows filtered by financial year, stock,
// and source.
func (s *RealizedPnLService) GetEntries(financialYear, stockID, source string) ([]model.RealizedPnL, error) {
	return s.pnlRepo.GetEntries(financialYear, stockID, source)
}

// TaxSummary aggregates realized profit by tax term for one financial year.
type TaxSummary struct {
	FinancialYear string          `json:"financialYear"`
	ShortTermPnL  decimal.Decimal `json:"shortTermPnl"`
	LongTermPnL   decimal.Decimal `json:"longTermPnl"`
	TotalPnL      decimal.Decimal `json:"totalPnl"`
	Disposals     int             `json:"disposals"`
}

// GetTaxSummary rolls calculated disposals up into STCG/LTCG totals for a
// financial year.
func (s *RealizedPnLService) GetTaxSummary(financialYear string) (TaxSummary, error) {
	entries, err := s.pnlRepo.GetEntries(financialYear, "", model.PnLSourceCalculated)
	if err != nil {
		return TaxSummary{}, err
	}

	summary := TaxSummary{
		FinancialYear: financialYear,
		ShortTermPnL:  decimal.Zero,
		LongTermPnL:   decimal.Zero,
		TotalPnL:      decimal.Zero,
	}
	for _, e := range entries {
		summary.Disposals++
		summary.TotalPnL = summary.TotalPnL.Add(e.Profit)
		if e.TaxTerm == model.TaxTermLong {
			summary.LongTermPnL = summary.LongTermPnL.Add(e.Profit)
		} else {
			summary.ShortTermPnL = summary.ShortTermPnL.Add(e.Profit)
		}
	}
	return summary, nil
}

// Rebuild discards all calculated disposal rows and regenerates them by
// replaying every traded pair through the lot engine. Imported rows are
// untouched. Safe to run any time: calculated rows are a derivable cache.
func (s *RealizedPnLService) Rebuild(ctx context.Context) (int, error) {
	if err := s.pnlRepo.DeleteCalculatedEntries(ctx); err != nil {
		return 0, err
	}

	pairs, err := s.tradeRepo.GetTradedPairs("")
	if err != nil {
		return 0, err
	}

	inserted := 0
	now := time.Now().UTC()
	for _, pair := range pairs {
		engine, err := s.holdings.ReplayPair(pair.StockID, pair.AccountID)
		if err != nil {
			return inserted, err
		}
		for _, m := range engine.Matched() {
			entry := model.RealizedPnL{
				ID:            uuid.New().String(),
				StockID:       pair.StockID,
				AccountID:     pair.AccountID,
				EntryDate:     m.EntryDate,
				ExitDate:      m.ExitDate,
				Quantity:      m.Quantity,
				BuyValue:      m.BuyValue.Round(2),
				SellValue:     m.SellValue.Round(2),
				Profit:        m.Profit.Round(2),
				HoldingDays:   m.HoldingDays,
				TaxTerm:       m.TaxTerm,
				FinancialYear: model.FinancialYear(m.ExitDate),
				Source:        model.PnLSourceCalculated,
				CreatedAt:     now,
			}
			if err := s.pnlRepo.InsertEntry(ctx, &entry); err != nil {
				return inserted, err
			}
			inserted++
		}
	}

	s.log.Info().Int("disposals", inserted).Msg("calculated pnl rebuilt")
	return inserted, nil
}
