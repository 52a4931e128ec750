package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/apperrors"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response, mapping domain errors to HTTP status
// codes. Unknown errors become 500 with the message hidden behind a generic
// label and the detail in the body.
func respondError(w http.ResponseWriter, message string, err error) {
	respondJSON(w, statusForError(err), map[string]string{
		"error":  message,
		"detail": err.Error(),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrStockNotFound),
		errors.Is(err, apperrors.ErrAccountNotFound),
		errors.Is(err, apperrors.ErrOwnerNotFound),
		errors.Is(err, apperrors.ErrGoalNotFound),
		errors.Is(err, apperrors.ErrTradeNotFound),
		errors.Is(err, apperrors.ErrAllocationNotFound),
		errors.Is(err, apperrors.ErrCorporateActionNotFound),
		errors.Is(err, apperrors.ErrPriceUnavailable):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicateTrade),
		errors.Is(err, apperrors.ErrActionAlreadyApplied):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInsufficientHoldings),
		errors.Is(err, apperrors.ErrInsufficientUnits),
		errors.Is(err, apperrors.ErrInvalidOwner),
		errors.Is(err, apperrors.ErrInvalidGoal),
		errors.Is(err, apperrors.ErrAllocationMismatch),
		errors.Is(err, apperrors.ErrInvalidQuantity),
		errors.Is(err, apperrors.ErrInvalidPrice),
		errors.Is(err, apperrors.ErrInvalidTradeType),
		errors.Is(err, apperrors.ErrInvalidDate),
		errors.Is(err, apperrors.ErrEmptyID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON parses a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
