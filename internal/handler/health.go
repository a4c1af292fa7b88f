package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/msomdec/gallery-admin/internal/domain"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports liveness and whether the settings database answers.
type HealthHandler struct {
	db domain.Database
}

// NewHealthHandler creates a new HealthHandler. A nil db only reports liveness.
func NewHealthHandler(db domain.Database) *HealthHandler {
	return &HealthHandler{db: db}
}

// HandleHealthz responds with {"status":"ok"}, or 503 when the database is unreachable.
// GET /healthz
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			slog.Error("health check", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
