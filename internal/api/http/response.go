package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/robopoint/salesops-manager/internal/entity"
	"github.com/robopoint/salesops-manager/internal/store"
)

type errResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("write response", slog.String("err", err.Error()))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidRange):
		writeJSON(w, http.StatusBadRequest, errResponse{Status: "Invalid request.", Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errResponse{Status: "Resource not found."})
	default:
		slog.Default().ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, errResponse{Status: http.StatusText(http.StatusInternalServerError)})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errResponse{Status: "Invalid request.", Error: msg})
}
