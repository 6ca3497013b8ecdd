package models

import "errors"

var (
	// ErrEmptySeed means the seed series has no samples, so no displayable range exists.
	ErrEmptySeed = errors.New("seed series is empty")
	// ErrSeedLoad wraps any failure of the initial data chain.
	ErrSeedLoad = errors.New("seed load failed")
	// ErrRateLimited is returned when the upstream API answers 429.
	ErrRateLimited = errors.New("upstream rate limited")
	// ErrUpstream covers network, status and decoding failures talking to the upstream API.
	ErrUpstream = errors.New("upstream failure")
)

// ErrorKind is the machine readable part of an HTTP error body.
type ErrorKind string

const (
	ErrorKindBadRequest      ErrorKind = "bad_request"
	ErrorKindUpstreamFailure ErrorKind = "upstream_failure"
	ErrorKindSeedLoad        ErrorKind = "seed_load_failure"
	ErrorKindInternal        ErrorKind = "internal_error"
)

// ErrorBody is the JSON shape of every error response the service writes.
type ErrorBody struct {
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"detail"`
}

// RateLimitBody is relayed to clients when the upstream API rate limits us.
type RateLimitBody struct {
	Message string `json:"message"`
}

// RateLimitMessage is the advisory shown to users on upstream 429.
const RateLimitMessage = "API limit reached, try again in 5 minutes"
