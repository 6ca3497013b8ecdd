package loader

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"brewdash/backend/services/dashboard-service/internal/clients"
	"brewdash/backend/services/dashboard-service/internal/models"
)

// Upstream is the subset of the cloud client the loader needs.
type Upstream interface {
	Token(ctx context.Context, creds clients.Credentials) (string, error)
	Hydrometers(ctx context.Context, token string) ([]models.Hydrometer, error)
	Telemetry(ctx context.Context, token, hydrometerID, startDate, endDate string) (models.TelemetrySeries, error)
}

// Loader produces the seed snapshot a dashboard page is generated from.
type Loader struct {
	upstream Upstream
	creds    clients.Credentials
	logger   *zap.Logger
	now      func() time.Time
}

// New returns a loader using the wall clock.
func New(upstream Upstream, creds clients.Credentials, logger *zap.Logger) *Loader {
	return &Loader{
		upstream: upstream,
		creds:    creds,
		logger:   logger,
		now:      time.Now,
	}
}

// Load runs token -> device list -> telemetry. Every failure is wrapped in ErrSeedLoad.
func (l *Loader) Load(ctx context.Context) (*models.Snapshot, error) {
	if l.creds.Password == "" {
		return nil, fmt.Errorf("%w: account secret is not configured", models.ErrSeedLoad)
	}

	token, err := l.upstream.Token(ctx, l.creds)
	if err != nil {
		return nil, fmt.Errorf("%w: token: %w", models.ErrSeedLoad, err)
	}

	devices, err := l.upstream.Hydrometers(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: hydrometers: %w", models.ErrSeedLoad, err)
	}
	if len(devices) == 0 || devices[0].ActiveProfileSession == nil {
		return nil, fmt.Errorf("%w: no hydrometer with an active session", models.ErrSeedLoad)
	}
	session := devices[0].ActiveProfileSession

	startDate, err := NormalizeStartDate(session.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrSeedLoad, err)
	}

	now := l.now()
	series, err := l.upstream.Telemetry(ctx, token, session.HydrometerID, startDate, models.FormatTimestamp(now))
	if err != nil {
		return nil, fmt.Errorf("%w: telemetry: %w", models.ErrSeedLoad, err)
	}

	snapshot := &models.Snapshot{
		AccessToken:    token,
		HydrometerID:   session.HydrometerID,
		StartDate:      startDate,
		Series:         series,
		GeneratedAt:    now.UTC(),
		TokenExpiresAt: TokenExpiry(token),
	}
	l.logger.Info("seed snapshot generated",
		zap.String("hydrometer_id", snapshot.HydrometerID),
		zap.String("start_date", startDate),
		zap.Int("samples", len(series)),
	)
	return snapshot, nil
}

var offsetSuffix = regexp.MustCompile(`[+-]\d{2}:\d{2}$`)

// NormalizeStartDate replaces a trailing UTC offset with Z, keeping the wall clock
// digits as they are. Session start dates are always reported at +00:00.
func NormalizeStartDate(raw string) (string, error) {
	normalized := raw
	if loc := offsetSuffix.FindStringIndex(raw); loc != nil {
		normalized = raw[:loc[0]] + "Z"
	}
	if _, err := time.Parse(time.RFC3339Nano, normalized); err != nil {
		return "", fmt.Errorf("invalid session start date %q: %w", raw, err)
	}
	return normalized, nil
}

// TokenExpiry reads the exp claim without verifying the signature; the token is only
// relayed, never trusted locally. Opaque tokens yield the zero time.
func TokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time.UTC()
}
