package models

import "time"

// ProfileSession is the fermentation session a hydrometer is currently recording.
type ProfileSession struct {
	ID           string `json:"id,omitempty"`
	HydrometerID string `json:"hydrometerId"`
	StartDate    string `json:"startDate"`
}

// Hydrometer mirrors an entry of the device list endpoint.
type Hydrometer struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	MacAddress           string          `json:"macAddress"`
	ActiveProfileSession *ProfileSession `json:"activeProfileSession"`
}

// Snapshot is the seed a dashboard page is generated from.
type Snapshot struct {
	AccessToken    string          `json:"accessToken"`
	HydrometerID   string          `json:"hydrometerId"`
	StartDate      string          `json:"startDate"`
	Series         TelemetrySeries `json:"series"`
	GeneratedAt    time.Time       `json:"generatedAt"`
	TokenExpiresAt time.Time       `json:"tokenExpiresAt,omitempty"`
}

// TokenExpired reports whether the upstream token is known to be expired at now.
func (s *Snapshot) TokenExpired(now time.Time) bool {
	return !s.TokenExpiresAt.IsZero() && !now.Before(s.TokenExpiresAt)
}
