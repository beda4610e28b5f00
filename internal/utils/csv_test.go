package utils

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candleSignals/internal/domain"
)

func TestWriteAndReadKlines(t *testing.T) {
	open := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	klines := []*domain.Kline{
		{OpenTime: open, CloseTime: open.Add(time.Minute - time.Millisecond), Symbol: "BTCUSDT", Interval: "1m", Open: 61000.1, High: 61050, Low: 60990, Close: 61020.5, Volume: 12.5},
		{OpenTime: open.Add(time.Minute), CloseTime: open.Add(2*time.Minute - time.Millisecond), Symbol: "BTCUSDT", Interval: "1m", Open: 61020.5, High: 61100, Low: 61000, Close: 61080, Volume: 8.25},
	}

	path := filepath.Join(t.TempDir(), "data", "klines.csv")
	require.NoError(t, WriteKlinesToCSV(klines, path))

	got, err := ReadKlinesFromCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range klines {
		assert.True(t, klines[i].OpenTime.Equal(got[i].OpenTime))
		assert.True(t, klines[i].CloseTime.Equal(got[i].CloseTime))
		assert.Equal(t, klines[i].Close, got[i].Close)
		assert.Equal(t, klines[i].Volume, got[i].Volume)
		assert.Equal(t, "BTCUSDT", got[i].Symbol)
	}
}

func TestReadKlines_Errors(t *testing.T) {
	header := "open_time,close_time,symbol,interval,open,high,low,close,volume\n"
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"wrong header", "a,b,c,d,e,f,g,h,i\n", "unexpected header"},
		{"bad time", header + "yesterday,2024-03-01T12:00:59Z,BTCUSDT,1m,1,2,0.5,1.5,3\n", "line 2: open_time"},
		{"bad number", header + "2024-03-01T12:00:00Z,2024-03-01T12:00:59Z,BTCUSDT,1m,1,x,0.5,1.5,3\n", "line 2: high"},
		{"short record", header + "2024-03-01T12:00:00Z,2024-03-01T12:00:59Z\n", "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadKlines(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadKlines_Empty(t *testing.T) {
	got, err := ReadKlines(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}
