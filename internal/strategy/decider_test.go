package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candleSignals/internal/domain"
	"candleSignals/internal/strategy/indicators"
)

func neutral() indicators.Snapshot {
	return indicators.Snapshot{EMAFast: 10, EMASlow: 10.5, MACD: -1, MACDSignal: -0.5, SignalReady: true, RSI: 50}
}

func TestNewDecider(t *testing.T) {
	_, err := NewDecider(30, 70)
	assert.NoError(t, err)

	for _, th := range [][2]float64{{70, 30}, {50, 50}, {-1, 70}, {30, 101}} {
		_, err := NewDecider(th[0], th[1])
		assert.Error(t, err, "oversold=%v overbought=%v", th[0], th[1])
	}
}

func TestDecider_Decide(t *testing.T) {
	d, err := NewDecider(30, 70)
	require.NoError(t, err)

	tests := []struct {
		name        string
		prev        func(s *indicators.Snapshot)
		curr        func(s *indicators.Snapshot)
		wantSignal  domain.Signal
		wantReasons []string
		wantScore   int
	}{
		{
			name:        "nothing fires",
			wantSignal:  domain.SignalNone,
			wantReasons: []string{},
		},
		{
			name:        "EMA crossover up",
			prev:        func(s *indicators.Snapshot) { s.EMAFast, s.EMASlow = 9.9, 10 },
			curr:        func(s *indicators.Snapshot) { s.EMAFast, s.EMASlow = 10.2, 10 },
			wantSignal:  domain.SignalBuy,
			wantReasons: []string{"EMA fast crossed above EMA slow"},
			wantScore:   1,
		},
		{
			name:        "EMA crossover up from equality",
			prev:        func(s *indicators.Snapshot) { s.EMAFast, s.EMASlow = 10, 10 },
			curr:        func(s *indicators.Snapshot) { s.EMAFast, s.EMASlow = 10.1, 10 },
			wantSignal:  domain.SignalBuy,
			wantReasons: []string{ReasonEMACrossUp},
			wantScore:   1,
		},
		{
			name:        "EMA crossover down",
			prev:        func(s *indicators.Snapshot) { s.EMAFast, s.EMASlow = 10.2, 10 },
			curr:        func(s *indicators.Snapshot) { s.EMAFast, s.EMASlow = 9.8, 10 },
			wantSignal:  domain.SignalSell,
			wantReasons: []string{ReasonEMACrossDown},
			wantScore:   -1,
		},
		{
			name:        "MACD crossover up",
			prev:        func(s *indicators.Snapshot) { s.MACD, s.MACDSignal = -0.2, -0.1 },
			curr:        func(s *indicators.Snapshot) { s.MACD, s.MACDSignal = 0.1, -0.05 },
			wantSignal:  domain.SignalBuy,
			wantReasons: []string{"MACD crossed above signal line"},
			wantScore:   1,
		},
		{
			name:        "MACD crossover down",
			prev:        func(s *indicators.Snapshot) { s.MACD, s.MACDSignal = 0.3, 0.1 },
			curr:        func(s *indicators.Snapshot) { s.MACD, s.MACDSignal = 0.05, 0.1 },
			wantSignal:  domain.SignalSell,
			wantReasons: []string{ReasonMACDCrossDown},
			wantScore:   -1,
		},
		{
			name:        "MACD rule skipped while signal line undefined",
			prev:        func(s *indicators.Snapshot) { s.MACD, s.MACDSignal, s.SignalReady = -0.2, 0, false },
			curr:        func(s *indicators.Snapshot) { s.MACD, s.MACDSignal = 0.1, -0.05 },
			wantSignal:  domain.SignalNone,
			wantReasons: []string{},
		},
		{
			name:        "RSI oversold",
			curr:        func(s *indicators.Snapshot) { s.RSI = 25 },
			wantSignal:  domain.SignalBuy,
			wantReasons: []string{"RSI oversold (<30)"},
			wantScore:   1,
		},
		{
			name:        "RSI overbought",
			curr:        func(s *indicators.Snapshot) { s.RSI = 82 },
			wantSignal:  domain.SignalSell,
			wantReasons: []string{"RSI overbought (>70)"},
			wantScore:   -1,
		},
		{
			name:        "RSI at thresholds does not fire",
			curr:        func(s *indicators.Snapshot) { s.RSI = 70 },
			wantSignal:  domain.SignalNone,
			wantReasons: []string{},
		},
		{
			name: "all bullish in rule order",
			prev: func(s *indicators.Snapshot) {
				s.EMAFast, s.EMASlow, s.MACD, s.MACDSignal = 9, 10, -1, -0.5
			},
			curr: func(s *indicators.Snapshot) {
				s.EMAFast, s.EMASlow, s.MACD, s.MACDSignal, s.RSI = 11, 10, 0.5, 0.1, 20
			},
			wantSignal:  domain.SignalBuy,
			wantReasons: []string{ReasonEMACrossUp, ReasonMACDCrossUp, "RSI oversold (<30)"},
			wantScore:   3,
		},
		{
			name:        "net zero keeps reasons",
			prev:        func(s *indicators.Snapshot) { s.EMAFast, s.EMASlow = 9.9, 10 },
			curr:        func(s *indicators.Snapshot) { s.EMAFast, s.EMASlow, s.RSI = 10.2, 10, 75 },
			wantSignal:  domain.SignalNone,
			wantReasons: []string{ReasonEMACrossUp, "RSI overbought (>70)"},
			wantScore:   0,
		},
		{
			name: "two sells outvote one buy",
			prev: func(s *indicators.Snapshot) {
				s.EMAFast, s.EMASlow, s.MACD, s.MACDSignal = 10.5, 10, 0.4, 0.2
			},
			curr: func(s *indicators.Snapshot) {
				s.EMAFast, s.EMASlow, s.MACD, s.MACDSignal, s.RSI = 9.5, 10, 0.1, 0.2, 10
			},
			wantSignal:  domain.SignalSell,
			wantReasons: []string{ReasonEMACrossDown, ReasonMACDCrossDown, "RSI oversold (<30)"},
			wantScore:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, curr := neutral(), neutral()
			if tt.prev != nil {
				tt.prev(&prev)
			}
			if tt.curr != nil {
				tt.curr(&curr)
			}

			got := d.Decide(prev, curr, 123.45)
			assert.Equal(t, tt.wantSignal, got.Signal)
			assert.Equal(t, tt.wantReasons, got.Reasons)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, len(tt.wantReasons) > 0, got.Fired())
			assert.Equal(t, 123.45, got.ClosePrice)
		})
	}
}

func TestDecider_CustomThresholdReasons(t *testing.T) {
	d, err := NewDecider(20, 80)
	require.NoError(t, err)

	got := d.Decide(neutral(), indicators.Snapshot{EMAFast: 10, EMASlow: 10.5, SignalReady: true, MACD: -1, MACDSignal: -0.5, RSI: 85}, 1)
	assert.Equal(t, []string{"RSI overbought (>80)"}, got.Reasons)

	got = d.Decide(neutral(), indicators.Snapshot{EMAFast: 10, EMASlow: 10.5, SignalReady: true, MACD: -1, MACDSignal: -0.5, RSI: 25}, 1)
	assert.Empty(t, got.Reasons, "25 is not below a 20 threshold")
}
