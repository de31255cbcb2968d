package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"grocerynana/internal/models"
	"grocerynana/internal/storage"
)

// Handlers contains the HTTP handlers for the GroceryNana API
type Handlers struct {
	storage storage.Storage
}

// HandlerOption configures optional Handlers dependencies.
type HandlerOption func(*Handlers)

// WithStorage sets the database pool used by the health check.
func WithStorage(s storage.Storage) HandlerOption {
	return func(h *Handlers) {
		h.storage = s
	}
}

// NewHandlers creates a new handlers instance
func NewHandlers(opts ...HandlerOption) *Handlers {
	h := &Handlers{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hello returns the static greeting.
// GET /
func (h *Handlers) Hello(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, models.NewHelloResponse())
}

// HealthCheck runs the liveness query against the pool.
// GET /api/health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		slog.Error("Health check failed", "error", "no database configured")
		h.writeJSONResponse(w, http.StatusInternalServerError, models.NewUnhealthyResponse())
		return
	}

	if err := h.storage.Ping(r.Context()); err != nil {
		slog.Error("Health check failed",
			"driver", h.storage.Driver(),
			"error", err)
		h.writeJSONResponse(w, http.StatusInternalServerError, models.NewUnhealthyResponse())
		return
	}

	h.writeJSONResponse(w, http.StatusOK, models.NewHealthyResponse())
}

// writeJSONResponse writes data as compact JSON with no trailing newline.
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, data)
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("Error encoding JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		slog.Debug("Error writing response", "error", err)
	}
}

// writeErrorResponse writes an error response
func writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	writeJSON(w, statusCode, models.NewErrorResponse(message, errorCode))
}
