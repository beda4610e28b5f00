package indicators

import "fmt"

// MACDConfig holds the three MACD periods.
type MACDConfig struct {
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
}

// Validate checks the periods.
func (c MACDConfig) Validate() error {
	if c.FastPeriod <= 0 || c.SlowPeriod <= 0 || c.SignalPeriod <= 0 {
		return fmt.Errorf("MACD periods must be positive")
	}
	if c.FastPeriod >= c.SlowPeriod {
		return fmt.Errorf("MACD fast period (%d) must be less than slow period (%d)", c.FastPeriod, c.SlowPeriod)
	}
	return nil
}

// MACDSeries is the aligned output of MACD.
//
// FastEMA, SlowEMA and Line share one alignment: element j belongs to input index
// SlowPeriod-1+j. Signal element k belongs to Line index SignalPeriod-1+k.
type MACDSeries struct {
	FastEMA []float64
	SlowEMA []float64
	Line    []float64
	Signal  []float64
}

// MACD computes the MACD line (fast EMA minus slow EMA, where both are defined)
// and its signal line (EMA of the MACD line with the same seeding rule).
func MACD(values []float64, cfg MACDConfig) (MACDSeries, error) {
	if err := cfg.Validate(); err != nil {
		return MACDSeries{}, err
	}
	if len(values) < cfg.SlowPeriod {
		return MACDSeries{}, nil
	}

	fast := EMA(values, cfg.FastPeriod)
	slow := EMA(values, cfg.SlowPeriod)

	// fast starts earlier; drop its head so both line up on the slow EMA.
	offset := cfg.SlowPeriod - cfg.FastPeriod
	fast = fast[offset:]

	line := make([]float64, len(slow))
	for j := range slow {
		line[j] = fast[j] - slow[j]
	}

	return MACDSeries{
		FastEMA: fast,
		SlowEMA: slow,
		Line:    line,
		Signal:  EMA(line, cfg.SignalPeriod),
	}, nil
}
