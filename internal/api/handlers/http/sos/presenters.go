package sos

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"helphop/internal/domain"
	"helphop/pkg/e"
)

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	l := h.log(r)

	l.Error("handler error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)

	switch {
	case errors.Is(err, e.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "incident not found"})
	case errors.Is(err, e.ErrTerminalState):
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": "incident is in a terminal state"})
	case errors.Is(err, e.ErrMissingUserID):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user_id"})
	case errors.Is(err, e.ErrInvalidCoordinates):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid location"})
	case errors.Is(err, e.ErrInvalidInput):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input"})
	default:
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// formatKm keeps the wire format of the distance stable at two decimals.
func formatKm(km float64) string {
	return strconv.FormatFloat(km, 'f', 2, 64)
}

func emptyIfNil(incidents []*domain.Incident) []*domain.Incident {
	if incidents == nil {
		return []*domain.Incident{}
	}
	return incidents
}
