package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"brewdash/backend/services/dashboard-service/internal/clients"
	"brewdash/backend/services/dashboard-service/internal/models"
	"brewdash/backend/services/dashboard-service/internal/proxy"
	"brewdash/backend/services/dashboard-service/internal/reconcile"
)

// Fetcher runs one range fetch and reports its outcome.
type Fetcher interface {
	Fetch(ctx context.Context, req reconcile.FetchRequest) reconcile.Outcome
}

// Forwarder is the proxy endpoint's relay.
type Forwarder interface {
	Forward(ctx context.Context, q proxy.Query) proxy.Result
}

// RelayFetcher goes through the same relay the HTTP proxy endpoint uses and reads
// its response the way a browser client would.
type RelayFetcher struct {
	relay Forwarder
}

// NewRelayFetcher returns a fetcher over relay.
func NewRelayFetcher(relay Forwarder) *RelayFetcher {
	return &RelayFetcher{relay: relay}
}

// Fetch maps relay responses to outcomes: 200 array -> Success, 429 -> RateLimited,
// anything else -> Failed.
func (f *RelayFetcher) Fetch(ctx context.Context, req reconcile.FetchRequest) reconcile.Outcome {
	res := f.relay.Forward(ctx, proxy.Query{
		HydrometerID: req.HydrometerID,
		StartDate:    models.FormatTimestamp(req.Range.Start),
		EndDate:      models.FormatTimestamp(req.Range.End),
		Token:        req.Token,
	})

	switch res.Status {
	case http.StatusOK:
		series, err := clients.DecodeSeries(res.Body)
		if err != nil {
			return reconcile.Failed(err)
		}
		return reconcile.Success(series)
	case http.StatusTooManyRequests:
		var body models.RateLimitBody
		_ = json.Unmarshal(res.Body, &body)
		return reconcile.RateLimited(body.Message)
	default:
		var body models.ErrorBody
		if err := json.Unmarshal(res.Body, &body); err != nil || body.Detail == "" {
			body.Detail = fmt.Sprintf("status %d", res.Status)
		}
		return reconcile.Failed(fmt.Errorf("%w: %s", models.ErrUpstream, body.Detail))
	}
}
