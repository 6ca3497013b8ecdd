package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewdash/backend/services/dashboard-service/internal/models"
	"brewdash/backend/services/dashboard-service/internal/proxy"
	"brewdash/backend/services/dashboard-service/internal/reconcile"
)

type stubForwarder struct {
	result proxy.Result
	got    proxy.Query
}

func (s *stubForwarder) Forward(_ context.Context, q proxy.Query) proxy.Result {
	s.got = q
	return s.result
}

func fetchRequest() reconcile.FetchRequest {
	return reconcile.FetchRequest{
		Seq:          1,
		HydrometerID: "h1",
		Token:        "tok",
		Range:        models.DateRange{Start: t0, End: t0.Add(36 * time.Hour)},
	}
}

func TestRelayFetcherSuccess(t *testing.T) {
	fwd := &stubForwarder{result: proxy.Result{Status: http.StatusOK, Body: []byte(`[{"gravity":1010,"createdOn":"2023-03-01T10:00:00Z"}]`)}}

	outcome := NewRelayFetcher(fwd).Fetch(context.Background(), fetchRequest())

	require.Equal(t, reconcile.OutcomeSuccess, outcome.Kind)
	assert.Len(t, outcome.Series, 1)
	assert.Equal(t, proxy.Query{
		HydrometerID: "h1",
		StartDate:    "2023-03-01T10:00:00.000Z",
		EndDate:      "2023-03-02T22:00:00.000Z",
		Token:        "tok",
	}, fwd.got)
}

func TestRelayFetcherRateLimited(t *testing.T) {
	fwd := &stubForwarder{result: proxy.Result{Status: http.StatusTooManyRequests, Body: []byte(`{"message":"API limit reached, try again in 5 minutes"}`)}}

	outcome := NewRelayFetcher(fwd).Fetch(context.Background(), fetchRequest())

	assert.Equal(t, reconcile.OutcomeRateLimited, outcome.Kind)
	assert.Equal(t, models.RateLimitMessage, outcome.Message)
}

func TestRelayFetcherFailure(t *testing.T) {
	cases := map[string]proxy.Result{
		"structured": {Status: http.StatusInternalServerError, Body: []byte(`{"kind":"upstream_failure","detail":"dial tcp"}`)},
		"opaque":     {Status: http.StatusBadGateway, Body: []byte(`oops`)},
		"bad array":  {Status: http.StatusOK, Body: []byte(`{"message":"x"}`)},
	}
	for name, res := range cases {
		t.Run(name, func(t *testing.T) {
			outcome := NewRelayFetcher(&stubForwarder{result: res}).Fetch(context.Background(), fetchRequest())
			assert.Equal(t, reconcile.OutcomeError, outcome.Kind)
			assert.ErrorIs(t, outcome.Err, models.ErrUpstream)
		})
	}
}
