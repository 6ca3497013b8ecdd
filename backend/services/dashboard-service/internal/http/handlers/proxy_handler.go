package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"brewdash/backend/services/dashboard-service/internal/models"
	"brewdash/backend/services/dashboard-service/internal/proxy"
)

// Forwarder relays one range query upstream.
type Forwarder interface {
	Forward(ctx context.Context, q proxy.Query) proxy.Result
}

// ProxyHandler serves the telemetry range endpoint.
type ProxyHandler struct {
	relay  Forwarder
	logger *zap.Logger
}

// NewProxyHandler returns handler.
func NewProxyHandler(relay Forwarder, logger *zap.Logger) *ProxyHandler {
	return &ProxyHandler{relay: relay, logger: logger}
}

// GetTelemetryByRange handles GET /api/getTelemetryByRange.
func (h *ProxyHandler) GetTelemetryByRange(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := proxy.Query{
		HydrometerID: values.Get("hydrometerId"),
		StartDate:    values.Get("startDate"),
		EndDate:      values.Get("endDate"),
		Token:        values.Get("token"),
	}
	if err := q.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, models.ErrorKindBadRequest, err.Error())
		return
	}

	res := h.relay.Forward(r.Context(), q)
	writeRaw(w, res.Status, res.Body)
}
