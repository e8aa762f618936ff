package handlers

import (
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler provides health check endpoint
type HealthHandler struct {
	logger  *slog.Logger
	version string
	events  func() bool
}

// NewHealthHandler creates a new health handler. eventsConnected reports
// whether order events reach the broker; nil means events are disabled.
func NewHealthHandler(logger *slog.Logger, version string, eventsConnected func() bool) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		version: version,
		events:  eventsConnected,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Events    string    `json:"events"`
}

// ServeHTTP handles health check requests. The service stays healthy when
// the broker is down; events are best effort.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	events := "disabled"
	if h.events != nil {
		events = "disconnected"
		if h.events() {
			events = "connected"
		}
	}

	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Events:    events,
	}, h.logger)
}
