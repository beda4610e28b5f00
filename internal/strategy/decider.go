package strategy

import (
	"fmt"

	"candleSignals/internal/domain"
	"candleSignals/internal/strategy/indicators"
)

// Reason strings reported by the decision rules.
const (
	ReasonEMACrossUp    = "EMA fast crossed above EMA slow"
	ReasonEMACrossDown  = "EMA fast crossed below EMA slow"
	ReasonMACDCrossUp   = "MACD crossed above signal line"
	ReasonMACDCrossDown = "MACD crossed below signal line"
)

// Decision is the verdict for one pair of consecutive snapshots.
type Decision struct {
	Signal     domain.Signal
	Reasons    []string
	Score      int // net vote, BUY +1 / SELL -1 per fired rule
	ClosePrice float64
}

// Fired reports whether any rule contributed a reason.
func (d Decision) Fired() bool {
	return len(d.Reasons) > 0
}

// Decider applies the EMA crossover, MACD crossover and RSI extremity rules in that order.
type Decider struct {
	rsi indicators.RSIConfig
}

// NewDecider creates a Decider with the given RSI thresholds.
func NewDecider(oversold, overbought float64) (*Decider, error) {
	if overbought <= oversold || overbought > 100 || oversold < 0 {
		return nil, fmt.Errorf("invalid RSI thresholds: oversold %.2f, overbought %.2f", oversold, overbought)
	}
	return &Decider{rsi: indicators.RSIConfig{Oversold: oversold, Overbought: overbought}}, nil
}

// Decide evaluates prev -> curr. A zero net vote yields SignalNone while still
// reporting whatever fired; no fired rule yields SignalNone with no reasons.
func (d *Decider) Decide(prev, curr indicators.Snapshot, closePrice float64) Decision {
	reasons := make([]string, 0, 3)
	score := 0

	switch {
	case prev.EMAFast <= prev.EMASlow && curr.EMAFast > curr.EMASlow:
		score++
		reasons = append(reasons, ReasonEMACrossUp)
	case prev.EMAFast >= prev.EMASlow && curr.EMAFast < curr.EMASlow:
		score--
		reasons = append(reasons, ReasonEMACrossDown)
	}

	if prev.SignalReady && curr.SignalReady {
		switch {
		case prev.MACD <= prev.MACDSignal && curr.MACD > curr.MACDSignal:
			score++
			reasons = append(reasons, ReasonMACDCrossUp)
		case prev.MACD >= prev.MACDSignal && curr.MACD < curr.MACDSignal:
			score--
			reasons = append(reasons, ReasonMACDCrossDown)
		}
	}

	switch {
	case d.rsi.IsOversold(curr.RSI):
		score++
		reasons = append(reasons, fmt.Sprintf("RSI oversold (<%g)", d.rsi.Oversold))
	case d.rsi.IsOverbought(curr.RSI):
		score--
		reasons = append(reasons, fmt.Sprintf("RSI overbought (>%g)", d.rsi.Overbought))
	}

	signal := domain.SignalNone
	if score > 0 {
		signal = domain.SignalBuy
	} else if score < 0 {
		signal = domain.SignalSell
	}

	return Decision{Signal: signal, Reasons: reasons, Score: score, ClosePrice: closePrice}
}
