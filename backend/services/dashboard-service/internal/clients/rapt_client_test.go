package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewdash/backend/services/dashboard-service/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *RaptClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRaptClient(RaptClientConfig{IdentityURL: srv.URL, APIURL: srv.URL + "/api"})
}

func TestTokenPasswordGrant(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, tokenPath, r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "rapt-user", r.PostForm.Get("client_id"))
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "brewer@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "s3cret", r.PostForm.Get("password"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc","expires_in":3600}`))
	})

	token, err := client.Token(context.Background(), Credentials{ClientID: "rapt-user", Username: "brewer@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestTokenFailures(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		target error
	}{
		"unauthorized": {status: http.StatusBadRequest, body: `{"error":"invalid_grant"}`, target: models.ErrUpstream},
		"rate limited": {status: http.StatusTooManyRequests, body: `{}`, target: models.ErrRateLimited},
		"no token":     {status: http.StatusOK, body: `{}`, target: models.ErrUpstream},
		"garbage":      {status: http.StatusOK, body: `<html>`, target: models.ErrUpstream},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.Token(context.Background(), Credentials{})
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestHydrometersSendsBearer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api"+hydrometersPath, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`[{"id":"d1","name":"Pill","activeProfileSession":{"hydrometerId":"h1","startDate":"2023-03-01T08:30:00+00:00"}}]`))
	})

	devices, err := client.Hydrometers(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	require.NotNil(t, devices[0].ActiveProfileSession)
	assert.Equal(t, "h1", devices[0].ActiveProfileSession.HydrometerID)
}

func TestTelemetryRawForwardsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api"+telemetryPath, r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "h1", q.Get("hydrometerId"))
		assert.Equal(t, "2023-03-01T00:00:00.000Z", q.Get("startDate"))
		assert.Equal(t, "2023-03-02T00:00:00.000Z", q.Get("endDate"))
		w.WriteHeader(http.StatusTooManyRequests)
	})

	status, _, err := client.TelemetryRaw(context.Background(), "tok", "h1", "2023-03-01T00:00:00.000Z", "2023-03-02T00:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, status)
}

func TestTelemetryMapsStatus(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`[{"gravity":1050,"createdOn":"2023-03-01T10:00:00Z"}]`))
	})

	series, err := client.Telemetry(context.Background(), "tok", "h1", "a", "b")
	require.NoError(t, err)
	assert.Len(t, series, 1)

	status.Store(http.StatusTooManyRequests)
	_, err = client.Telemetry(context.Background(), "tok", "h1", "a", "b")
	assert.ErrorIs(t, err, models.ErrRateLimited)

	status.Store(http.StatusBadGateway)
	_, err = client.Telemetry(context.Background(), "tok", "h1", "a", "b")
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestTelemetryNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewRaptClient(RaptClientConfig{IdentityURL: url, APIURL: url})
	_, _, err := client.TelemetryRaw(context.Background(), "tok", "h1", "a", "b")
	assert.ErrorIs(t, err, models.ErrUpstream)
}
