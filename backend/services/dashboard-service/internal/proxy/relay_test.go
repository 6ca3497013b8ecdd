package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"brewdash/backend/services/dashboard-service/internal/models"
)

type stubUpstream struct {
	status int
	body   string
	err    error
	calls  int
	got    Query
}

func (s *stubUpstream) TelemetryRaw(_ context.Context, token, hydrometerID, startDate, endDate string) (int, []byte, error) {
	s.calls++
	s.got = Query{HydrometerID: hydrometerID, StartDate: startDate, EndDate: endDate, Token: token}
	return s.status, []byte(s.body), s.err
}

var query = Query{HydrometerID: "h1", StartDate: "2023-03-01T00:00:00.000Z", EndDate: "2023-03-02T00:00:00.000Z", Token: "tok"}

func TestForwardRelaysBodyVerbatim(t *testing.T) {
	body := `[{"gravity":1050.5,"temperature":19,"createdOn":"2023-03-01T10:00:00+00:00","extra":"kept"}]`
	up := &stubUpstream{status: http.StatusOK, body: body}

	res := NewRelay(up, zap.NewNop()).Forward(context.Background(), query)

	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, body, string(res.Body))
	assert.Equal(t, query, up.got)
	assert.Equal(t, 1, up.calls)
}

func TestForwardRateLimited(t *testing.T) {
	up := &stubUpstream{status: http.StatusTooManyRequests, body: `Too Many Requests`}

	res := NewRelay(up, zap.NewNop()).Forward(context.Background(), query)

	require.Equal(t, http.StatusTooManyRequests, res.Status)
	var body models.RateLimitBody
	require.NoError(t, json.Unmarshal(res.Body, &body))
	assert.Equal(t, models.RateLimitMessage, body.Message)
	assert.Equal(t, 1, up.calls, "no retries")
}

func TestForwardFailures(t *testing.T) {
	cases := map[string]*stubUpstream{
		"network":   {err: errors.New("dial tcp: connection refused")},
		"status":    {status: http.StatusUnauthorized, body: `{"message":"nope"}`},
		"not json":  {status: http.StatusOK, body: `<html></html>`},
		"not array": {status: http.StatusOK, body: `{"message":"hi"}`},
	}
	for name, up := range cases {
		t.Run(name, func(t *testing.T) {
			res := NewRelay(up, zap.NewNop()).Forward(context.Background(), query)

			require.Equal(t, http.StatusInternalServerError, res.Status)
			var body models.ErrorBody
			require.NoError(t, json.Unmarshal(res.Body, &body))
			assert.Equal(t, models.ErrorKindUpstreamFailure, body.Kind)
			assert.NotEmpty(t, body.Detail)
		})
	}
}

func TestQueryValidate(t *testing.T) {
	assert.NoError(t, query.Validate())

	missing := query
	missing.Token = " "
	err := missing.Validate()
	require.Error(t, err)
	assert.Equal(t, "token is required", err.Error())

	assert.EqualError(t, Query{}.Validate(), "hydrometerId is required")
}
