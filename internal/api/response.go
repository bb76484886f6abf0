package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jvolk/stockroom/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// domainError maps typed domain errors to HTTP responses. Anything
// unrecognized is a storage or programming failure and becomes a 500
// with the detail kept out of the response body.
func domainError(w http.ResponseWriter, err error) {
	var (
		validation *model.ValidationError
		stock      *model.InsufficientStockError
		transition *model.IllegalTransitionError
	)
	switch {
	case errors.As(err, &validation):
		jsonError(w, http.StatusBadRequest, validation.Error())
	case errors.Is(err, model.ErrDeliveryIncomplete):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrDuplicate):
		jsonError(w, http.StatusConflict, "already exists")
	case errors.As(err, &stock):
		jsonError(w, http.StatusConflict, stock.Error())
	case errors.As(err, &transition):
		jsonError(w, http.StatusConflict, transition.Error())
	default:
		slog.Error("request failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
