package indicators

import (
	"fmt"
	"iter"
	"slices"
)

// SMA returns the simple average of the last period values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("SMA period must be positive, got %d", period)
	}
	if len(values) < period {
		return 0, fmt.Errorf("not enough data (%d) to calculate SMA for period %d", len(values), period)
	}

	total := 0.0
	for _, v := range values[len(values)-period:] {
		total += v
	}
	return total / float64(period), nil
}

// EMASeq yields the exponential moving average of values.
// The first element is the simple average of the first period values; each later
// element is value*k + previous*(1-k) with k = 2/(period+1). The sequence has
// len(values)-period+1 elements and is empty when there is not enough data.
// Ranging over it again recomputes from the start.
func EMASeq(values []float64, period int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if period <= 0 || len(values) < period {
			return
		}
		seed, _ := SMA(values[:period], period)
		ema := seed
		if !yield(ema) {
			return
		}

		k := 2.0 / float64(period+1)
		for _, v := range values[period:] {
			ema = v*k + ema*(1-k)
			if !yield(ema) {
				return
			}
		}
	}
}

// EMA collects EMASeq into a slice. Element j belongs to input index period-1+j.
func EMA(values []float64, period int) []float64 {
	return slices.Collect(EMASeq(values, period))
}

