package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/reconcile"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/repository"
)

// ReconciliationService cross-checks the trade log against imported broker
// P&L entries and persists any corporate action proposals the run surfaces.
type ReconciliationService struct {
	tradeRepo  *repository.TradeRepository
	stockRepo  *repository.StockRepository
	pnlRepo    *repository.RealizedPnLRepository
	actions    *CorporateActionService
	log        zerolog.Logger
}

// NewReconciliationService creates a new ReconciliationService with the provided dependencies.
func NewReconciliationService(
	tradeRepo *repository.TradeRepository,
	stockRepo *repository.StockRepository,
	pnlRepo *repository.RealizedPnLRepository,
	actions *CorporateActionService,
	log zerolog.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		tradeRepo: tradeRepo,
		stockRepo: stockRepo,
		pnlRepo:   pnlRepo,
		actions:   actions,
		log:       log.With().Str("component", "reconciliation_service").Logger(),
	}
}

// Run reconciles imported P&L entries against the trade log, optionally
// restricted to one financial year. Detected corporate action proposals are
// saved (idempotently) so they show up for review; the run itself mutates
// nothing else.
func (s *ReconciliationService) Run(ctx context.Context, financialYear string) (reconcile.Result, error) {
	trades, err := s.tradeRepo.GetAllTrades()
	if err != nil {
		return reconcile.Result{}, err
	}
	stocks, err := s.stockRepo.GetStocks()
	if err != nil {
		return reconcile.Result{}, err
	}
	imported, err := s.pnlRepo.GetImportedEntries(financialYear)
	if err != nil {
		return reconcile.Result{}, err
	}

	entries := make([]reconcile.DisposalEntry, 0, len(imported))
	for _, p := range imported {
		entry := reconcile.DisposalEntry{
			EntryDate:     p.EntryDate,
			ExitDate:      p.ExitDate,
			Quantity:      p.Quantity,
			BuyValue:      p.BuyValue,
			SellValue:     p.SellValue,
			FinancialYear: p.FinancialYear,
		}
		if stock, ok := stocks[p.StockID]; ok {
			entry.Symbol = stock.Symbol
			entry.ISIN = stock.ISIN
		}
		entries = append(entries, entry)
	}

	result := reconcile.New(trades, stocks).Reconcile(entries, financialYear)

	for _, proposal := range result.CorporateActions {
		if _, err := s.actions.SaveProposal(ctx, proposal); err != nil {
			return reconcile.Result{}, err
		}
	}

	s.log.Info().
		Str("financial_year", financialYear).
		Int("entries", result.Summary.TotalEntries).
		Int("matched", result.Summary.Matched).
		Int("discrepancies", result.Summary.Discrepancies).
		Float64("match_rate", result.Summary.MatchRate).
		Msg("reconciliation finished")

	return result, nil
}

// ImportEntries bulk-loads broker-reported disposal rows, the reference data
// for reconciliation runs.
func (s *ReconciliationService) ImportEntries(ctx context.Context, entries []model.RealizedPnL) (int, error) {
	imported := 0
	for i := range entries {
		entries[i].Source = model.PnLSourceImported
		if entries[i].FinancialYear == "" {
			entries[i].FinancialYear = model.FinancialYear(entries[i].ExitDate)
		}
		if err := s.pnlRepo.InsertEntry(ctx, &entries[i]); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
