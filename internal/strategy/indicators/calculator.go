package indicators

import (
	"fmt"

	"candleSignals/internal/domain"
)

// Params holds the indicator periods used by the Calculator.
type Params struct {
	FastPeriod   int // e.g., 12
	SlowPeriod   int // e.g., 26
	SignalPeriod int // e.g., 9
	RSIPeriod    int // e.g., 14
}

// DefaultParams returns the conventional 12/26/9 MACD and 14 RSI periods.
func DefaultParams() Params {
	return Params{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9, RSIPeriod: 14}
}

// Validate checks that the periods are positive and fast < slow.
func (p Params) Validate() error {
	if err := p.macd().Validate(); err != nil {
		return err
	}
	if err := (IndicatorConfig{Period: p.RSIPeriod}).Validate(); err != nil {
		return fmt.Errorf("invalid RSI period: %w", err)
	}
	return nil
}

// FirstIndex is the candle index of the first snapshot: both EMAs need SlowPeriod
// closes and RSI needs RSIPeriod deltas.
func (p Params) FirstIndex() int {
	return max(p.SlowPeriod-1, p.RSIPeriod)
}

// MinCandles is the shortest window for which the calculator yields anything.
func (p Params) MinCandles() int {
	return max(p.SlowPeriod, p.RSIPeriod) + 1
}

func (p Params) macd() MACDConfig {
	return MACDConfig{FastPeriod: p.FastPeriod, SlowPeriod: p.SlowPeriod, SignalPeriod: p.SignalPeriod}
}

// Snapshot is the indicator value set at one candle index.
type Snapshot struct {
	Index      int
	EMAFast    float64
	EMASlow    float64
	MACD       float64
	MACDSignal float64
	// SignalReady is false until the signal line has SignalPeriod MACD inputs.
	SignalReady bool
	RSI         float64
}

// Calculator produces indicator snapshots from a candle window.
type Calculator struct {
	params Params
}

// NewCalculator creates a Calculator after validating p.
func NewCalculator(p Params) (*Calculator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{params: p}, nil
}

// Params returns the calculator's periods.
func (c *Calculator) Params() Params {
	return c.params
}

// Snapshots returns one snapshot per candle index starting at FirstIndex.
// A window shorter than MinCandles yields nil.
func (c *Calculator) Snapshots(klines []*domain.Kline) []Snapshot {
	return c.snapshots(Closes(klines))
}

// Last returns at most the final n snapshots.
func (c *Calculator) Last(klines []*domain.Kline, n int) []Snapshot {
	all := c.Snapshots(klines)
	if len(all) > n {
		return all[len(all)-n:]
	}
	return all
}

func (c *Calculator) snapshots(closes []float64) []Snapshot {
	p := c.params
	if len(closes) < p.MinCandles() {
		return nil
	}

	m, err := MACD(closes, p.macd())
	if err != nil {
		return nil
	}
	rsi := RSI(closes, p.RSIPeriod)

	first := p.FirstIndex()
	out := make([]Snapshot, 0, len(closes)-first)
	for i := first; i < len(closes); i++ {
		j := i - (p.SlowPeriod - 1)
		s := Snapshot{
			Index:   i,
			EMAFast: m.FastEMA[j],
			EMASlow: m.SlowEMA[j],
			MACD:    m.Line[j],
			RSI:     rsi[i-p.RSIPeriod],
		}
		if k := j - (p.SignalPeriod - 1); k >= 0 {
			s.MACDSignal = m.Signal[k]
			s.SignalReady = true
		}
		out = append(out, s)
	}
	return out
}
