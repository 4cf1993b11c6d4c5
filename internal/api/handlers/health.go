package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/billflow/backend/internal/intelligence"
	"github.com/wonny/billflow/backend/pkg/database"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports service health; db is nil for file/url sources
type HealthHandler struct {
	service *intelligence.Service
	db      *database.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(svc *intelligence.Service, db *database.DB) *HealthHandler {
	return &HealthHandler{service: svc, db: db}
}

// HealthResponse is the /health body
type HealthResponse struct {
	Status     string                 `json:"status"`
	Service    string                 `json:"service"`
	SnapshotID string                 `json:"snapshot_id"`
	Source     string                 `json:"source,omitempty"`
	Contracts  int                    `json:"contracts"`
	LoadedAt   time.Time              `json:"loaded_at"`
	Database   *database.HealthStatus `json:"database,omitempty"`
}

// Health returns server health status
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Snapshot()
	resp := HealthResponse{
		Status:     "ok",
		Service:    "billflow-api",
		SnapshotID: snap.ID,
		Source:     snap.Source,
		Contracts:  len(snap.Portfolio),
		LoadedAt:   snap.LoadedAt,
	}

	status := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		dbStatus, err := h.db.HealthCheck(ctx)
		resp.Database = dbStatus
		if err != nil {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, status, resp)
}
