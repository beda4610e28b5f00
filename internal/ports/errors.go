package ports

import (
	"errors"
	"fmt"
)

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Signal Engine Errors
	ErrInsufficientData = errors.New("not enough candles for the configured indicator periods")
	ErrMalformedCandle  = errors.New("malformed candle in input series")

	// Exchange Specific Errors
	ErrExchangeUnavailable  = errors.New("exchange API is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")

	// Writer Errors
	ErrWriteFailed    = errors.New("failed to write signal row")
	ErrDuplicateEntry = errors.New("signal already recorded")
	ErrQueryFailed    = errors.New("database query failed")
)

// InsufficientDataError describes a window shorter than the engine requirement.
func InsufficientDataError(required, available int) error {
	return fmt.Errorf("%w: need %d candles, have %d", ErrInsufficientData, required, available)
}
