package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/supplier-cli/internal/store"
)

// envelope is the uniform response shape expected by the dashboard.
type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func respond(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		zap.L().Error("httpapi: encode response", zap.Error(err))
	}
}

func respondData(w http.ResponseWriter, status int, data any) {
	respond(w, status, envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string, data any) {
	respond(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string, errs ...string) {
	respond(w, status, envelope{Success: false, Message: message, Errors: errs})
}

// respondStoreError maps store errors to 404/500.
func respondStoreError(w http.ResponseWriter, err error, notFoundMessage string) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, notFoundMessage)
		return
	}
	zap.L().Error("httpapi: store error", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal server error")
}
