package ports

import (
	"context"

	"candleSignals/internal/domain"
)

// SignalEngine turns a candle window into a signal result.
type SignalEngine interface {
	// RequiredDataPoints returns the minimum number of klines needed to produce a payload.
	RequiredDataPoints() int

	// Compute evaluates the window. asset and interval are labels only.
	// A malformed window is rejected with an error wrapping ErrMalformedCandle.
	Compute(ctx context.Context, klines []*domain.Kline, asset, interval string) (domain.Result, error)
}

// SignalWriter is a persistence collaborator that receives each produced row.
type SignalWriter interface {
	// Name identifies the writer in logs and metrics.
	Name() string
	// WriteSignal persists or delivers one row.
	WriteSignal(ctx context.Context, row domain.SignalRow) error
}

// SignalJournal is the writer whose rows decide what counts as already delivered.
// It is written after every other writer has succeeded.
type SignalJournal interface {
	SignalWriter

	// LastSignal returns the most recent record for the asset/interval pair.
	// Returns nil, nil if nothing was recorded yet.
	LastSignal(ctx context.Context, asset, interval string) (*domain.SignalRecord, error)
}
