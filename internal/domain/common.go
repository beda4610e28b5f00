package domain

// Signal is the directional verdict produced by the signal engine.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalNone Signal = "NONE"
)

// Outcome distinguishes the results of one engine evaluation.
type Outcome int

const (
	// OutcomeUnknown is the zero value, carried by results returned alongside an error.
	OutcomeUnknown Outcome = iota
	// OutcomePayload means a payload was produced and should be handed to the writers.
	OutcomePayload
	// OutcomeNoSignal means no decision rule fired; nothing is written.
	OutcomeNoSignal
	// OutcomeInsufficientData means the candle window was too short for the configured periods.
	OutcomeInsufficientData
)

// String returns the string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomePayload:
		return "payload"
	case OutcomeNoSignal:
		return "no_signal"
	case OutcomeInsufficientData:
		return "insufficient_data"
	default:
		return "unknown"
	}
}
