package domain

import "errors"

// Engine error taxonomy. Fetch-layer failures are recovered locally by the
// fallback chain; only total exhaustion surfaces as ErrDataUnavailable.
var (
	// ErrDataUnavailable means every fetch strategy was exhausted for a fund.
	// Callers treat it as "analysis impossible right now", not a fatal error.
	ErrDataUnavailable = errors.New("no historical data")

	// ErrInsufficientHistory means a series is too short for the requested
	// computation. Each computation tolerates this independently.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrMalformedPayload means an upstream response could not be parsed.
	// It fails a single strategy, never the whole fetch.
	ErrMalformedPayload = errors.New("malformed upstream payload")

	// ErrInvalidInput rejects non-positive cost basis or invested amounts
	ErrInvalidInput = errors.New("invalid input")
)
