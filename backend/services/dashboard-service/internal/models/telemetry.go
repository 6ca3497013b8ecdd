package models

import "time"

// GravitySentinel is the reading the hydrometer reports when it is disconnected or
// not floating; anything at or above it is not a real gravity value.
const GravitySentinel = 1140.0

// TelemetrySample is a single hydrometer reading as delivered by the cloud API.
type TelemetrySample struct {
	Temperature float64   `json:"temperature"`
	Gravity     float64   `json:"gravity"`
	Battery     float64   `json:"battery"`
	Version     string    `json:"version"`
	CreatedOn   time.Time `json:"createdOn"`
	MacAddress  string    `json:"macAddress"`
	RSSI        float64   `json:"rssi"`
}

// Valid reports whether the reading passes the gravity sentinel check.
func (s TelemetrySample) Valid() bool {
	return s.Gravity < GravitySentinel
}

// TelemetrySeries keeps upstream delivery order, which is not guaranteed to be chronological.
type TelemetrySeries []TelemetrySample

// Filter returns a new series holding only valid samples. The receiver is never modified.
func (s TelemetrySeries) Filter() TelemetrySeries {
	out := make(TelemetrySeries, 0, len(s))
	for _, sample := range s {
		if sample.Valid() {
			out = append(out, sample)
		}
	}
	return out
}

// Bounds returns the createdOn of the first and last delivered samples.
func (s TelemetrySeries) Bounds() (first, last time.Time, ok bool) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s[0].CreatedOn, s[len(s)-1].CreatedOn, true
}

// DateRange bounds a telemetry query. Zero times mean "not set".
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Complete reports whether both bounds are set.
func (r DateRange) Complete() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// TimestampLayout matches the millisecond UTC form browsers produce with Date.toJSON.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t the way range queries are sent upstream.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
