package indicators

import (
	"iter"
	"slices"
)

// RSIConfig holds configuration for the RSI indicator
type RSIConfig struct {
	IndicatorConfig
	Overbought float64
	Oversold   float64
}

// IsOverbought checks if the RSI value is above the overbought threshold.
func (c RSIConfig) IsOverbought(value float64) bool {
	return value > c.Overbought
}

// IsOversold checks if the RSI value is below the oversold threshold.
func (c RSIConfig) IsOversold(value float64) bool {
	return value < c.Oversold
}

// RSISeq yields Wilder's RSI for values. The first element needs period deltas and
// belongs to input index period; the sequence has len(values)-period elements.
func RSISeq(values []float64, period int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if period <= 0 || len(values) <= period {
			return
		}

		var avgGain, avgLoss float64
		for i := 1; i <= period; i++ {
			gain, loss := split(values[i] - values[i-1])
			avgGain += gain
			avgLoss += loss
		}
		avgGain /= float64(period)
		avgLoss /= float64(period)
		if !yield(rsiValue(avgGain, avgLoss)) {
			return
		}

		p := float64(period)
		for i := period + 1; i < len(values); i++ {
			gain, loss := split(values[i] - values[i-1])
			avgGain = (avgGain*(p-1) + gain) / p
			avgLoss = (avgLoss*(p-1) + loss) / p
			if !yield(rsiValue(avgGain, avgLoss)) {
				return
			}
		}
	}
}

// RSI collects RSISeq into a slice.
func RSI(values []float64, period int) []float64 {
	return slices.Collect(RSISeq(values, period))
}

func split(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50 // flat window
		}
		return 100
	}
	rs := avgGain / avgLoss
	rsi := 100 - 100/(1+rs)
	if rsi > 100 {
		return 100
	}
	if rsi < 0 {
		return 0
	}
	return rsi
}
