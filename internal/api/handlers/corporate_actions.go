package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/api/request"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/model"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/service"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/validation"
)

// CorporateActionHandler handles corporate action HTTP requests
type CorporateActionHandler struct {
	actionService *service.CorporateActionService
}

// NewCorporateActionHandler creates a new CorporateActionHandler
func NewCorporateActionHandler(actionService *service.CorporateActionService) *CorporateActionHandler {
	return &CorporateActionHandler{actionService: actionService}
}

// Detect handles POST /api/corporate-actions/detect/{uuid}, where uuid is the
// stock ID. Responds 200 with the saved proposal or 204 when nothing is found.
func (h *CorporateActionHandler) Detect(w http.ResponseWriter, r *http.Request) {
	action, err := h.actionService.DetectForStock(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, "failed to run detection", err)
		return
	}
	if action == nil {
		respondJSON(w, http.StatusNoContent, nil)
		return
	}
	respondJSON(w, http.StatusOK, action)
}

// CreateAction handles POST /api/corporate-actions
func (h *CorporateActionHandler) CreateAction(w http.ResponseWriter, r *http.Request) {
	var req request.CreateCorporateActionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body", "detail": err.Error()})
		return
	}

	input := service.ManualActionInput{
		StockID:    req.StockID,
		ActionType: model.ActionType(req.ActionType),
		RatioFrom:  req.RatioFrom,
		RatioTo:    req.RatioTo,
		Notes:      req.Notes,
	}
	if req.RecordDate != "" {
		recordDate, err := validation.ParseDate(req.RecordDate)
		if err != nil {
			respondError(w, "invalid record date", err)
			return
		}
		input.RecordDate = &recordDate
	}
	if req.OldPrice != nil {
		old := decimal.NewFromFloat(*req.OldPrice)
		input.OldPrice = &old
	}
	if req.NewPrice != nil {
		newPrice := decimal.NewFromFloat(*req.NewPrice)
		input.NewPrice = &newPrice
	}

	action, err := h.actionService.CreateAction(r.Context(), input)
	if err != nil {
		respondError(w, "failed to create corporate action", err)
		return
	}
	respondJSON(w, http.StatusCreated, action)
}

// Apply handles POST /api/corporate-actions/{uuid}/apply
func (h *CorporateActionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	action, err := h.actionService.ApplyAction(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondError(w, "failed to apply corporate action", err)
		return
	}
	respondJSON(w, http.StatusOK, action)
}

// DeleteAction handles DELETE /api/corporate-actions/{uuid}
func (h *CorporateActionHandler) DeleteAction(w http.ResponseWriter, r *http.Request) {
	if err := h.actionService.DeleteAction(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondError(w, "failed to delete corporate action", err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Actions handles GET /api/corporate-actions
func (h *CorporateActionHandler) Actions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.actionService.GetActions(r.URL.Query().Get("stockId"))
	if err != nil {
		respondError(w, "failed to retrieve corporate actions", err)
		return
	}
	respondJSON(w, http.StatusOK, actions)
}
