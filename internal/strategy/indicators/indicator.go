// Package indicators computes the technical indicators used by the signal engine.
// Every function is pure: it reads its inputs and allocates its outputs.
package indicators

import (
	"fmt"

	"candleSignals/internal/domain"
)

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
}

// Validate checks that the period is usable.
func (c IndicatorConfig) Validate() error {
	if c.Period <= 0 {
		return fmt.Errorf("indicator period must be positive, got %d", c.Period)
	}
	return nil
}

// Closes extracts closing prices in window order.
func Closes(klines []*domain.Kline) []float64 {
	out := make([]float64, len(klines))
	for i, k := range klines {
		out[i] = k.Close
	}
	return out
}
