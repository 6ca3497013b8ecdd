package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"brewdash/backend/services/dashboard-service/internal/clients"
	"brewdash/backend/services/dashboard-service/internal/models"
)

// Upstream issues the raw telemetry query.
type Upstream interface {
	TelemetryRaw(ctx context.Context, token, hydrometerID, startDate, endDate string) (int, []byte, error)
}

// Query is the client supplied part of a relayed request.
type Query struct {
	HydrometerID string
	StartDate    string
	EndDate      string
	Token        string
}

// Validate reports the first missing parameter.
func (q Query) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"hydrometerId", q.HydrometerID},
		{"startDate", q.StartDate},
		{"endDate", q.EndDate},
		{"token", q.Token},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}
	return nil
}

// Result is what the endpoint writes back: a status and a JSON body.
type Result struct {
	Status int
	Body   []byte
}

// Relay forwards one range query upstream. It does not retry, cache or throttle.
type Relay struct {
	upstream Upstream
	logger   *zap.Logger
}

// NewRelay returns a relay.
func NewRelay(upstream Upstream, logger *zap.Logger) *Relay {
	return &Relay{upstream: upstream, logger: logger}
}

// Forward relays q. A 2xx telemetry array passes through verbatim, 429 becomes the
// rate limit advisory, anything else is an upstream failure.
func (r *Relay) Forward(ctx context.Context, q Query) Result {
	status, body, err := r.upstream.TelemetryRaw(ctx, q.Token, q.HydrometerID, q.StartDate, q.EndDate)
	if err != nil {
		r.logger.Error("telemetry relay failed", zap.String("hydrometer_id", q.HydrometerID), zap.Error(err))
		return failure(err.Error())
	}

	r.logger.Debug("telemetry relay response", zap.String("hydrometer_id", q.HydrometerID), zap.Int("status", status))

	switch {
	case status == http.StatusTooManyRequests:
		r.logger.Warn("upstream rate limited", zap.String("hydrometer_id", q.HydrometerID))
		return encode(http.StatusTooManyRequests, models.RateLimitBody{Message: models.RateLimitMessage})
	case status < 200 || status > 299:
		r.logger.Error("upstream telemetry status", zap.String("hydrometer_id", q.HydrometerID), zap.Int("status", status))
		return failure(fmt.Sprintf("upstream responded with status %d", status))
	}

	if _, err := clients.DecodeSeries(body); err != nil {
		r.logger.Error("upstream telemetry body", zap.String("hydrometer_id", q.HydrometerID), zap.Error(err))
		return failure(err.Error())
	}
	return Result{Status: http.StatusOK, Body: body}
}

func failure(detail string) Result {
	return encode(http.StatusInternalServerError, models.ErrorBody{Kind: models.ErrorKindUpstreamFailure, Detail: detail})
}

func encode(status int, payload interface{}) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Status: http.StatusInternalServerError, Body: []byte(`{"kind":"internal_error","detail":"encode response"}`)}
	}
	return Result{Status: status, Body: body}
}
