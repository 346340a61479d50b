// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/storefront/internal/apperr"
	"github.com/fairyhunter13/storefront/internal/obs"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type stockError struct {
	jsonError
	ProductID int64 `json:"productId"`
	Requested int   `json:"requested"`
	Available int   `json:"available"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, jsonError{Error: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the service error taxonomy onto HTTP responses. Anything
// outside the taxonomy is logged and reported as an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve  *apperr.ValidationError
		ae  *apperr.AuthenticationError
		fe  *apperr.AuthorizationError
		nf  *apperr.NotFoundError
		ise *apperr.InsufficientStockError
		ce  *apperr.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		WriteJSONError(w, http.StatusBadRequest, "validation_error", ve.Error())
	case errors.As(err, &ae):
		WriteJSONError(w, http.StatusUnauthorized, "unauthorized", ae.Reason)
	case errors.As(err, &fe):
		obs.Logger.Infow("forbidden", "reason", fe.Reason, "request_id", RequestIDFromContext(r.Context()))
		WriteJSONError(w, http.StatusForbidden, "forbidden", "")
	case errors.As(err, &nf):
		WriteJSONError(w, http.StatusNotFound, "not_found", nf.Error())
	case errors.As(err, &ise):
		writeJSON(w, http.StatusConflict, stockError{
			jsonError: jsonError{Error: "insufficient_stock", Details: ise.Error()},
			ProductID: ise.ProductID,
			Requested: ise.Requested,
			Available: ise.Available,
		})
	case errors.As(err, &ce):
		WriteJSONError(w, http.StatusConflict, "conflict", ce.Message)
	default:
		obs.Logger.Errorw("internal_error", "error", err, "path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()))
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
