package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/api/request"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/service"
)

// AllocationHandler handles allocation-related HTTP requests
type AllocationHandler struct {
	allocationService *service.AllocationService
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler(allocationService *service.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService}
}

// CreateAllocation handles POST /api/allocations
func (h *AllocationHandler) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAllocationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body", "detail": err.Error()})
		return
	}

	allocation, err := h.allocationService.CreateAllocation(r.Context(), service.NewAllocationInput{
		StockID:   req.StockID,
		AccountID: req.AccountID,
		OwnerID:   req.OwnerID,
		GoalID:    req.GoalID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondError(w, "failed to create allocation", err)
		return
	}
	respondJSON(w, http.StatusCreated, allocation)
}

// UpdateAllocation handles PUT /api/allocations/{uuid}
func (h *AllocationHandler) UpdateAllocation(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateAllocationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body", "detail": err.Error()})
		return
	}

	allocation, err := h.allocationService.UpdateAllocation(r.Context(), chi.URLParam(r, "uuid"), service.UpdateAllocationInput{
		StockID:   req.StockID,
		AccountID: req.AccountID,
		OwnerID:   req.OwnerID,
		GoalID:    req.GoalID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondError(w, "failed to update allocation", err)
		return
	}
	respondJSON(w, http.StatusOK, allocation)
}

// DeleteAllocation handles DELETE /api/allocations/{uuid}
func (h *AllocationHandler) DeleteAllocation(w http.ResponseWriter, r *http.Request) {
	if err := h.allocationService.DeleteAllocation(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondError(w, "failed to delete allocation", err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Allocations handles GET /api/allocations
func (h *AllocationHandler) Allocations(w http.ResponseWriter, r *http.Request) {
	allocations, err := h.allocationService.GetAllocations(
		r.URL.Query().Get("ownerId"),
		r.URL.Query().Get("goalId"),
	)
	if err != nil {
		respondError(w, "failed to retrieve allocations", err)
		return
	}
	respondJSON(w, http.StatusOK, allocations)
}

// AvailableUnitsResponse reports the unassigned unit pool for a pair.
type AvailableUnitsResponse struct {
	StockID   string `json:"stockId"`
	AccountID string `json:"accountId"`
	Available int64  `json:"available"`
}

// Available handles GET /api/allocations/available
func (h *AllocationHandler) Available(w http.ResponseWriter, r *http.Request) {
	stockID := r.URL.Query().Get("stockId")
	accountID := r.URL.Query().Get("accountId")
	if stockID == "" || accountID == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "stockId and accountId are required"})
		return
	}

	available, err := h.allocationService.AvailableUnits(stockID, accountID)
	if err != nil {
		respondError(w, "failed to compute available units", err)
		return
	}
	respondJSON(w, http.StatusOK, AvailableUnitsResponse{
		StockID:   stockID,
		AccountID: accountID,
		Available: available,
	})
}

// Reallocate handles POST /api/allocations/reallocate
func (h *AllocationHandler) Reallocate(w http.ResponseWriter, r *http.Request) {
	var req request.ReallocateAllocationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if req.StockID == "" || req.AccountID == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "stockId and accountId are required"})
		return
	}

	allocation, err := h.allocationService.ReallocateToDefault(r.Context(), req.StockID, req.AccountID, req.Quantity)
	if err != nil {
		respondError(w, "failed to reallocate to default", err)
		return
	}
	respondJSON(w, http.StatusCreated, allocation)
}

// Sync handles POST /api/allocations/sync
func (h *AllocationHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req request.SyncAllocationsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body", "detail": err.Error()})
		return
	}

	if req.StockID != "" && req.AccountID != "" {
		result, err := h.allocationService.SyncPair(r.Context(), req.StockID, req.AccountID)
		if err != nil {
			respondError(w, "failed to sync allocations", err)
			return
		}
		respondJSON(w, http.StatusOK, result)
		return
	}

	result, err := h.allocationService.SyncAll(r.Context())
	if err != nil {
		respondError(w, "failed to sync allocations", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
