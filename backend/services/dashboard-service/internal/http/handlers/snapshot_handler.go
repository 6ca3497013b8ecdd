package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"brewdash/backend/services/dashboard-service/internal/models"
)

type snapshotResponse struct {
	HydrometerID   string                 `json:"hydrometerId"`
	StartDate      string                 `json:"startDate"`
	GeneratedAt    time.Time              `json:"generatedAt"`
	TokenExpiresAt *time.Time             `json:"tokenExpiresAt,omitempty"`
	Samples        int                    `json:"samples"`
	Displayable    int                    `json:"displayable"`
	Series         models.TelemetrySeries `json:"series"`
}

// SnapshotHandler exposes the current seed without its access token.
type SnapshotHandler struct {
	snapshots SnapshotSource
	logger    *zap.Logger
}

// NewSnapshotHandler returns handler.
func NewSnapshotHandler(snapshots SnapshotSource, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots, logger: logger}
}

// Get handles GET /api/snapshot.
func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Current(r.Context())
	if err != nil {
		h.logger.Error("snapshot unavailable", zap.Error(err))
		writeError(w, http.StatusInternalServerError, models.ErrorKindSeedLoad, err.Error())
		return
	}

	resp := snapshotResponse{
		HydrometerID: snap.HydrometerID,
		StartDate:    snap.StartDate,
		GeneratedAt:  snap.GeneratedAt,
		Samples:      len(snap.Series),
		Displayable:  len(snap.Series.Filter()),
		Series:       snap.Series,
	}
	if !snap.TokenExpiresAt.IsZero() {
		exp := snap.TokenExpiresAt
		resp.TokenExpiresAt = &exp
	}
	writeJSON(w, http.StatusOK, resp)
}
