package domain

import (
	"strings"
	"time"
)

// ReasonSeparator joins payload reasons into a single cell.
const ReasonSeparator = ", "

// TimestampLayout is the UTC layout used for the first cell of every written row.
const TimestampLayout = "2006-01-02 15:04:05"

// SignalColumns names the cells returned by SignalRow.Values, in order.
var SignalColumns = []string{
	"timestamp", "asset", "interval", "close_price", "signal", "reasons",
	"rsi", "macd", "macd_signal", "ema_fast", "ema_slow",
}

// Payload is the engine's only output for a run that produced a verdict.
type Payload struct {
	Asset           string
	Interval        string
	ClosePrice      float64
	Signal          Signal
	Reasons         []string
	RSI             float64
	MACD            float64
	MACDSignal      float64
	MACDSignalReady bool // false while the signal line has fewer than signal_period MACD inputs
	EMAFast         float64
	EMASlow         float64

	// CandleCloseTime is the close time of the candle the payload was computed on.
	// It is not part of the written row; the journal uses it to suppress duplicates.
	CandleCloseTime time.Time
}

// JoinedReasons returns the reasons as one comma-separated string.
func (p *Payload) JoinedReasons() string {
	return strings.Join(p.Reasons, ReasonSeparator)
}

// Result is returned by every engine evaluation. Payload is set only for OutcomePayload.
type Result struct {
	Outcome   Outcome
	Payload   *Payload
	Required  int // candles needed by the configured periods
	Available int // candles supplied
}

// HasPayload reports whether the result carries something to write.
func (r Result) HasPayload() bool {
	return r.Outcome == OutcomePayload && r.Payload != nil
}

// SignalRow is the flat record handed to the persistence collaborators.
type SignalRow struct {
	Timestamp time.Time
	Payload   Payload
}

// NewSignalRow stamps a payload with the invocation time. The reasons slice is copied.
func NewSignalRow(now time.Time, p *Payload) SignalRow {
	cp := *p
	cp.Reasons = append([]string(nil), p.Reasons...)
	return SignalRow{Timestamp: now.UTC(), Payload: cp}
}

// FormattedTimestamp renders the row timestamp in UTC.
func (r SignalRow) FormattedTimestamp() string {
	return r.Timestamp.UTC().Format(TimestampLayout)
}

// Values returns the row in output order:
// timestamp, asset, interval, close_price, signal, joined_reasons, rsi, macd, macd_signal, ema_fast, ema_slow.
// macd_signal is an empty string while the signal line is not yet defined.
func (r SignalRow) Values() []interface{} {
	p := r.Payload
	var macdSignal interface{} = ""
	if p.MACDSignalReady {
		macdSignal = p.MACDSignal
	}
	return []interface{}{
		r.FormattedTimestamp(),
		p.Asset,
		p.Interval,
		p.ClosePrice,
		string(p.Signal),
		p.JoinedReasons(),
		p.RSI,
		p.MACD,
		macdSignal,
		p.EMAFast,
		p.EMASlow,
	}
}

// SignalRecord is a row as stored in the local journal.
type SignalRecord struct {
	ID    int64
	RunID string
	Row   SignalRow
}
