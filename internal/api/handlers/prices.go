package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/service"
)

// PriceHandler handles price cache HTTP requests
type PriceHandler struct {
	priceService *service.PriceService
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(priceService *service.PriceService) *PriceHandler {
	return &PriceHandler{priceService: priceService}
}

// Refresh handles POST /api/prices/refresh
func (h *PriceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshed, err := h.priceService.RefreshAll(r.Context())
	if err != nil {
		respondError(w, "failed to refresh prices", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"refreshed": refreshed})
}

// Price handles GET /api/prices/{uuid}, where uuid is the stock ID.
func (h *PriceHandler) Price(w http.ResponseWriter, r *http.Request) {
	price, err := h.priceService.GetPrice(chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, "failed to retrieve price", err)
		return
	}
	respondJSON(w, http.StatusOK, price)
}
