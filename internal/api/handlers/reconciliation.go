package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/api/request"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/service"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/validation"
)

// ReconciliationHandler handles reconciliation and realized P&L HTTP requests
type ReconciliationHandler struct {
	reconciliationService *service.ReconciliationService
	pnlService            *service.RealizedPnLService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(
	reconciliationService *service.ReconciliationService,
	pnlService *service.RealizedPnLService,
) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationService: reconciliationService,
		pnlService:            pnlService,
	}
}

// Run handles POST /api/reconciliation/run
func (h *ReconciliationHandler) Run(w http.ResponseWriter, r *http.Request) {
	financialYear := r.URL.Query().Get("financialYear")
	if financialYear != "" {
		if err := validation.ValidateFinancialYear(financialYear); err != nil {
			respondError(w, "invalid financial year", err)
			return
		}
	}

	result, err := h.reconciliationService.Run(r.Context(), financialYear)
	if err != nil {
		respondError(w, "failed to run reconciliation", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ImportPnL handles POST /api/pnl/import
func (h *ReconciliationHandler) ImportPnL(w http.ResponseWriter, r *http.Request) {
	var req request.ImportPnLRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body", "detail": err.Error()})
		return
	}

	entries := make([]model.RealizedPnL, 0, len(req.Entries))
	for _, e := range req.Entries {
		entryDate, err := validation.ParseDate(e.EntryDate)
		if err != nil {
			respondError(w, "invalid entry date", err)
			return
		}
		exitDate, err := validation.ParseDate(e.ExitDate)
		if err != nil {
			respondError(w, "invalid exit date", err)
			return
		}

		buyValue := decimal.NewFromFloat(e.BuyValue)
		sellValue := decimal.NewFromFloat(e.SellValue)
		holdingDays := int(exitDate.Sub(entryDate).Hours() / 24)
		taxTerm := model.TaxTermShort
		if holdingDays > 365 {
			taxTerm = model.TaxTermLong
		}

		entries = append(entries, model.RealizedPnL{
			ID:            uuid.New().String(),
			StockID:       e.StockID,
			AccountID:     e.AccountID,
			EntryDate:     entryDate,
			ExitDate:      exitDate,
			Quantity:      e.Quantity,
			BuyValue:      buyValue,
			SellValue:     sellValue,
			Profit:        sellValue.Sub(buyValue),
			HoldingDays:   holdingDays,
			TaxTerm:       taxTerm,
			FinancialYear: e.FinancialYear,
			CreatedAt:     time.Now().UTC(),
		})
	}

	imported, err := h.reconciliationService.ImportEntries(r.Context(), entries)
	if err != nil {
		respondError(w, "failed to import pnl entries", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

// PnL handles GET /api/pnl
func (h *ReconciliationHandler) PnL(w http.ResponseWriter, r *http.Request) {
	entries, err := h.pnlService.GetEntries(
		r.URL.Query().Get("financialYear"),
		r.URL.Query().Get("stockId"),
		r.URL.Query().Get("source"),
	)
	if err != nil {
		respondError(w, "failed to retrieve pnl entries", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// TaxSummary handles GET /api/pnl/summary
func (h *ReconciliationHandler) TaxSummary(w http.ResponseWriter, r *http.Request) {
	financialYear := r.URL.Query().Get("financialYear")
	if financialYear == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "financialYear is required"})
		return
	}
	if err := validation.ValidateFinancialYear(financialYear); err != nil {
		respondError(w, "invalid financial year", err)
		return
	}

	summary, err := h.pnlService.GetTaxSummary(financialYear)
	if err != nil {
		respondError(w, "failed to compute tax summary", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Rebuild handles POST /api/pnl/rebuild
func (h *ReconciliationHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	disposals, err := h.pnlService.Rebuild(r.Context())
	if err != nil {
		respondError(w, "failed to rebuild calculated pnl", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"disposals": disposals})
}
