package strategy

import (
	"context"
	"fmt"

	"candleSignals/internal/domain"
	"candleSignals/internal/ports"
	"candleSignals/internal/strategy/indicators"
)

// Config holds parameters for the signal engine.
type Config struct {
	FastPeriod    int     // e.g., 12
	SlowPeriod    int     // e.g., 26
	SignalPeriod  int     // e.g., 9
	RSIPeriod     int     // e.g., 14
	RSIOverbought float64 // e.g., 70.0
	RSIOversold   float64 // e.g., 30.0
}

// DefaultConfig returns EMA 12/26, MACD signal 9, RSI 14 with 30/70 thresholds.
func DefaultConfig() Config {
	p := indicators.DefaultParams()
	return Config{
		FastPeriod:    p.FastPeriod,
		SlowPeriod:    p.SlowPeriod,
		SignalPeriod:  p.SignalPeriod,
		RSIPeriod:     p.RSIPeriod,
		RSIOverbought: 70,
		RSIOversold:   30,
	}
}

func (c Config) params() indicators.Params {
	return indicators.Params{
		FastPeriod:   c.FastPeriod,
		SlowPeriod:   c.SlowPeriod,
		SignalPeriod: c.SignalPeriod,
		RSIPeriod:    c.RSIPeriod,
	}
}

var _ ports.SignalEngine = (*Engine)(nil)

// Engine turns a candle window into a signal result. It keeps no state between calls.
type Engine struct {
	cfg     Config
	calc    *indicators.Calculator
	decider *Decider
	logger  ports.Logger
}

// New creates a new Engine instance.
func New(cfg Config, logger ports.Logger) (*Engine, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for signal engine")
	}
	calc, err := indicators.NewCalculator(cfg.params())
	if err != nil {
		return nil, fmt.Errorf("invalid indicator periods: %w", err)
	}
	decider, err := NewDecider(cfg.RSIOversold, cfg.RSIOverbought)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, calc: calc, decider: decider, logger: logger}, nil
}

// RequiredDataPoints returns the minimum number of klines needed for two consecutive snapshots.
func (e *Engine) RequiredDataPoints() int {
	p := e.calc.Params()
	return max(p.MinCandles(), p.FirstIndex()+2)
}

// Compute validates the window, derives the last two snapshots, runs the decider
// and assembles the payload from the latest candle. asset and interval are
// copied into the payload and never influence the computation.
func (e *Engine) Compute(ctx context.Context, klines []*domain.Kline, asset, interval string) (domain.Result, error) {
	required := e.RequiredDataPoints()
	result := domain.Result{Required: required, Available: len(klines)}

	if len(klines) < required {
		e.logger.Debug(ctx, "Not enough kline data for signal evaluation",
			ports.Fields{"available": len(klines), "required": required})
		result.Outcome = domain.OutcomeInsufficientData
		return result, nil
	}

	if err := validateKlines(klines); err != nil {
		return result, err
	}

	snaps := e.calc.Last(klines, 2)
	if len(snaps) < 2 {
		result.Outcome = domain.OutcomeInsufficientData
		return result, nil
	}
	prev, curr := snaps[0], snaps[1]
	last := klines[len(klines)-1]

	decision := e.decider.Decide(prev, curr, last.Close)
	fields := ports.Fields{
		"asset":    asset,
		"interval": interval,
		"close":    last.Close,
		"emaFast":  curr.EMAFast,
		"emaSlow":  curr.EMASlow,
		"macd":     curr.MACD,
		"rsi":      curr.RSI,
		"score":    decision.Score,
	}
	if !decision.Fired() {
		e.logger.Debug(ctx, "No decision rule fired", fields)
		result.Outcome = domain.OutcomeNoSignal
		return result, nil
	}
	e.logger.Debug(ctx, "Decision rules fired", ports.MergeFields(fields, ports.Fields{"signal": decision.Signal, "reasons": decision.Reasons}))

	result.Outcome = domain.OutcomePayload
	result.Payload = &domain.Payload{
		Asset:           asset,
		Interval:        interval,
		ClosePrice:      last.Close,
		Signal:          decision.Signal,
		Reasons:         decision.Reasons,
		RSI:             curr.RSI,
		MACD:            curr.MACD,
		MACDSignal:      curr.MACDSignal,
		MACDSignalReady: curr.SignalReady,
		EMAFast:         curr.EMAFast,
		EMASlow:         curr.EMASlow,
		CandleCloseTime: last.CloseTime,
	}
	return result, nil
}
