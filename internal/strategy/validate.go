package strategy

import (
	"fmt"
	"math"
	"time"

	"candleSignals/internal/domain"
	"candleSignals/internal/ports"
)

// validateKlines rejects the whole window on the first malformed candle:
// nil entries, NaN/Inf or negative prices and volume, a close time not after
// its own open time, or open and close times that are not strictly ascending.
func validateKlines(klines []*domain.Kline) error {
	for i, k := range klines {
		if k == nil {
			return fmt.Errorf("candle %d is nil: %w", i, ports.ErrMalformedCandle)
		}
		fields := [...]struct {
			name  string
			value float64
		}{
			{"open", k.Open}, {"high", k.High}, {"low", k.Low}, {"close", k.Close}, {"volume", k.Volume},
		}
		for _, f := range fields {
			if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
				return fmt.Errorf("candle %d has invalid %s %v: %w", i, f.name, f.value, ports.ErrMalformedCandle)
			}
		}
		if !k.CloseTime.After(k.OpenTime) {
			return fmt.Errorf("candle %d close time %s is not after its open time %s: %w",
				i, stamp(k.CloseTime), stamp(k.OpenTime), ports.ErrMalformedCandle)
		}
		if i == 0 {
			continue
		}
		prev := klines[i-1]
		if !k.OpenTime.After(prev.OpenTime) {
			return fmt.Errorf("candle %d open time %s is not after %s: %w",
				i, stamp(k.OpenTime), stamp(prev.OpenTime), ports.ErrMalformedCandle)
		}
		if !k.CloseTime.After(prev.CloseTime) {
			return fmt.Errorf("candle %d close time %s is not after %s: %w",
				i, stamp(k.CloseTime), stamp(prev.CloseTime), ports.ErrMalformedCandle)
		}
	}
	return nil
}

func stamp(t time.Time) string {
	return t.UTC().Format(domain.TimestampLayout)
}
