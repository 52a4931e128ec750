package handlers

import (
	"net/http"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/service"
)

// HoldingsHandler handles holdings-related HTTP requests
type HoldingsHandler struct {
	holdingsService *service.HoldingsService
}

// NewHoldingsHandler creates a new HoldingsHandler
func NewHoldingsHandler(holdingsService *service.HoldingsService) *HoldingsHandler {
	return &HoldingsHandler{holdingsService: holdingsService}
}

// Holdings handles GET /api/holdings
func (h *HoldingsHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.holdingsService.GetHoldings(r.Context(), r.URL.Query().Get("accountId"))
	if err != nil {
		respondError(w, "failed to compute holdings", err)
		return
	}
	respondJSON(w, http.StatusOK, holdings)
}

// Summary handles GET /api/holdings/summary
func (h *HoldingsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.holdingsService.GetSummary(r.Context(), r.URL.Query().Get("accountId"))
	if err != nil {
		respondError(w, "failed to compute holdings summary", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
