package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/api/response"
	"github.com/nkhandelwal/Stock-Lot-Tracker-Backend/internal/validation"
)

// ValidateUUIDMiddleware validates that the {uuid} URL parameter is present
// and well formed, returning 400 before the handler runs otherwise.
//
// Example usage in router:
//
//	r.Route("/{uuid}", func(r chi.Router) {
//	    r.Use(middleware.ValidateUUIDMiddleware)
//	    r.Get("/", handler.GetTrade)
//	})
func ValidateUUIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "uuid")

		if id == "" {
			response.RespondError(w, http.StatusBadRequest, "valid UUID is required", "")
			return
		}

		if err := validation.ValidateUUID(id); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid UUID format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
