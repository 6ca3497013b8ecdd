package reconcile

import (
	"brewdash/backend/services/dashboard-service/internal/models"
)

// OutcomeKind tags a FetchOutcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeRateLimited
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the result of one range fetch. It is consumed once by Core.Resolve.
type Outcome struct {
	Kind    OutcomeKind
	Series  models.TelemetrySeries
	Message string
	Err     error
}

// Success wraps a fetched series, which may be empty.
func Success(series models.TelemetrySeries) Outcome {
	return Outcome{Kind: OutcomeSuccess, Series: series}
}

// RateLimited carries the advisory the upstream limit produced.
func RateLimited(message string) Outcome {
	return Outcome{Kind: OutcomeRateLimited, Message: message}
}

// Failed wraps a network, status or decoding failure.
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeError, Err: err}
}
