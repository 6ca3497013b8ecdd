package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"brewdash/backend/services/dashboard-service/internal/models"
)

const (
	tokenPath       = "/connect/token"
	hydrometersPath = "/Hydrometers/GetHydrometers"
	telemetryPath   = "/Hydrometers/GetTelemetry"
)

// Credentials are exchanged for a bearer token with the password grant.
type Credentials struct {
	ClientID string
	Username string
	Password string
}

// RaptClientConfig points the client at the identity and API hosts.
type RaptClientConfig struct {
	IdentityURL string
	APIURL      string
	Timeout     time.Duration
}

// RaptClient talks to the hydrometer cloud API.
type RaptClient struct {
	http        *resty.Client
	identityURL string
	apiURL      string
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// NewRaptClient builds a client sharing one resty instance for all calls.
func NewRaptClient(cfg RaptClientConfig) *RaptClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RaptClient{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		identityURL: strings.TrimRight(cfg.IdentityURL, "/"),
		apiURL:      strings.TrimRight(cfg.APIURL, "/"),
	}
}

// Token performs the password grant and returns the access token.
func (c *RaptClient) Token(ctx context.Context, creds Credentials) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":  creds.ClientID,
			"grant_type": "password",
			"username":   creds.Username,
			"password":   creds.Password,
		}).
		Post(c.identityURL + tokenPath)
	if err != nil {
		return "", fmt.Errorf("%w: token request: %v", models.ErrUpstream, err)
	}
	if err := statusError("token", resp); err != nil {
		return "", err
	}

	var result tokenResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", models.ErrUpstream, err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("%w: token response has no access_token", models.ErrUpstream)
	}
	return result.AccessToken, nil
}

// Hydrometers lists the devices of the account.
func (c *RaptClient) Hydrometers(ctx context.Context, token string) ([]models.Hydrometer, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get(c.apiURL + hydrometersPath)
	if err != nil {
		return nil, fmt.Errorf("%w: hydrometers request: %v", models.ErrUpstream, err)
	}
	if err := statusError("hydrometers", resp); err != nil {
		return nil, err
	}

	var devices []models.Hydrometer
	if err := json.Unmarshal(resp.Body(), &devices); err != nil {
		return nil, fmt.Errorf("%w: decode hydrometers: %v", models.ErrUpstream, err)
	}
	return devices, nil
}

// TelemetryRaw issues one telemetry query and returns the upstream status and body
// untouched. Timestamps are forwarded exactly as given.
func (c *RaptClient) TelemetryRaw(ctx context.Context, token, hydrometerID, startDate, endDate string) (int, []byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"hydrometerId": hydrometerID,
			"startDate":    startDate,
			"endDate":      endDate,
		}).
		Get(c.apiURL + telemetryPath)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: telemetry request: %v", models.ErrUpstream, err)
	}
	return resp.StatusCode(), resp.Body(), nil
}

// Telemetry is TelemetryRaw with status mapping and decoding.
func (c *RaptClient) Telemetry(ctx context.Context, token, hydrometerID, startDate, endDate string) (models.TelemetrySeries, error) {
	status, body, err := c.TelemetryRaw(ctx, token, hydrometerID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if status == http.StatusTooManyRequests {
		return nil, models.ErrRateLimited
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: telemetry status %d", models.ErrUpstream, status)
	}
	return DecodeSeries(body)
}

// DecodeSeries parses a telemetry array body.
func DecodeSeries(body []byte) (models.TelemetrySeries, error) {
	var series models.TelemetrySeries
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, fmt.Errorf("%w: decode telemetry: %v", models.ErrUpstream, err)
	}
	return series, nil
}

func statusError(call string, resp *resty.Response) error {
	switch code := resp.StatusCode(); {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", call, models.ErrRateLimited)
	case code < 200 || code > 299:
		return fmt.Errorf("%w: %s status %d", models.ErrUpstream, call, code)
	}
	return nil
}
