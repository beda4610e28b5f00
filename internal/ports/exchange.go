package ports

import (
	"context"
	"time"

	"candleSignals/internal/domain"
)

// KlineSource is the fetch collaborator: it returns an ascending candle window.
type KlineSource interface {
	// GetKlines retrieves the most recent klines for the given symbol, oldest first.
	GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error)
}

// ExchangeClient defines the subset of exchange operations used by the bot.
type ExchangeClient interface {
	KlineSource

	// Ping checks the connectivity to the exchange API.
	Ping(ctx context.Context) error

	// GetServerTime retrieves the current server time from the exchange.
	GetServerTime(ctx context.Context) (time.Time, error)
}
