package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	closes := []float64{100.0, 102.0, 101.0, 103.0, 104.0}

	tests := []struct {
		name          string
		period        int
		expectedValue float64
		expectError   bool
	}{
		{name: "sufficient data", period: 3, expectedValue: 102.666667}, // (101 + 103 + 104) / 3
		{name: "whole window", period: 5, expectedValue: 102.0},
		{name: "insufficient data", period: 6, expectError: true},
		{name: "zero period", period: 0, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := SMA(closes, tt.period)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expectedValue, value, 0.0001)
		})
	}
}

func TestEMA_SeededWithSMA(t *testing.T) {
	closes := []float64{100.0, 102.0, 101.0, 103.0, 104.0}

	// seed (100+102+101)/3 = 101, k = 0.5: 103 -> 102, 104 -> 103
	got := EMA(closes, 3)
	require.Len(t, got, 3)
	assert.InDelta(t, 101.0, got[0], 1e-9)
	assert.InDelta(t, 102.0, got[1], 1e-9)
	assert.InDelta(t, 103.0, got[2], 1e-9)
}

func TestEMA_Length(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = float64(i)
	}
	for _, period := range []int{1, 5, 12, 26, 40} {
		assert.Len(t, EMA(closes, period), len(closes)-period+1, "period %d", period)
	}
	assert.Empty(t, EMA(closes, 41))
	assert.Empty(t, EMA(closes, 0))
}

func TestEMASeq_Restartable(t *testing.T) {
	closes := []float64{5, 7, 6, 9, 11, 10, 12}
	seq := EMASeq(closes, 3)

	var first, second []float64
	for v := range seq {
		first = append(first, v)
	}
	for v := range seq {
		second = append(second, v)
	}
	assert.Equal(t, first, second)
}

func TestEMASeq_EarlyStop(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	count := 0
	for range EMASeq(closes, 2) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestEMA_ConstantSeriesConverges(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 42.5
	}
	for _, period := range []int{3, 12, 26, 50} {
		for _, v := range EMA(closes, period) {
			assert.InDelta(t, 42.5, v, 1e-9)
		}
	}
}

func TestEMA_FollowsRecurrence(t *testing.T) {
	closes := []float64{10, 11, 13, 12, 15, 14, 16, 18, 17}
	period := 4
	k := 2.0 / float64(period+1)

	got := EMA(closes, period)
	want := (10.0 + 11 + 13 + 12) / 4
	assert.InDelta(t, want, got[0], 1e-12)
	for j := 1; j < len(got); j++ {
		want = closes[period-1+j]*k + want*(1-k)
		assert.False(t, math.IsNaN(got[j]))
		assert.InDelta(t, want, got[j], 1e-12)
	}
}
