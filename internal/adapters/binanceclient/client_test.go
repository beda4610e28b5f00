package binanceclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candleSignals/internal/ports"
)

type mockLogger struct {
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...ports.Fields) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...ports.Fields)  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...ports.Fields)  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...ports.Fields) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

const klinesBody = `[
[1709294400000,"61000.10","61050.00","60990.00","61020.50","12.5",1709294459999,"762756.25",120,"6.1","372225.05","0"],
[1709294460000,"61020.50","61100.00","61000.00","61080.00","8.25",1709294519999,"503910.00",98,"4.0","244320.00","0"]
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *mockLogger) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := &mockLogger{}
	c, err := New(Config{BaseURL: srv.URL + "/", Timeout: time.Second, Logger: logger})
	require.NoError(t, err)
	return c, logger
}

func TestNew_RequiresLogger(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestTranslateBinanceKline(t *testing.T) {
	bk := &binance.Kline{
		OpenTime:  1709294400000,
		Open:      "61000.10",
		High:      "61050.00",
		Low:       "60990.00",
		Close:     "61020.50",
		Volume:    "12.5",
		CloseTime: 1709294459999,
	}

	k, err := translateBinanceKline(bk, "BTCUSDT", "1m")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", k.Symbol)
	assert.Equal(t, "1m", k.Interval)
	assert.Equal(t, 61000.10, k.Open)
	assert.Equal(t, 61050.0, k.High)
	assert.Equal(t, 60990.0, k.Low)
	assert.Equal(t, 61020.50, k.Close)
	assert.Equal(t, 12.5, k.Volume)
	assert.Equal(t, int64(1709294400000), k.OpenTime.UnixMilli())
	assert.Equal(t, int64(1709294459999), k.CloseTime.UnixMilli())

	_, err = translateBinanceKline(nil, "BTCUSDT", "1m")
	assert.Error(t, err)

	bk.Close = "not-a-number"
	_, err = translateBinanceKline(bk, "BTCUSDT", "1m")
	assert.Error(t, err)
}

func TestGetKlines(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(klinesBody))
	})

	klines, err := c.GetKlines(context.Background(), "BTCUSDT", "1m", 2)
	require.NoError(t, err)
	require.Len(t, klines, 2)
	assert.Contains(t, gotQuery, "symbol=BTCUSDT")
	assert.Contains(t, gotQuery, "interval=1m")
	assert.Contains(t, gotQuery, "limit=2")
	assert.Equal(t, 61080.0, klines[1].Close)
	assert.True(t, klines[0].OpenTime.Before(klines[1].OpenTime))
}

func TestGetKlines_InvalidLimit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	for _, limit := range []int{0, -1, 1001} {
		_, err := c.GetKlines(context.Background(), "BTCUSDT", "1m", limit)
		assert.ErrorIs(t, err, ports.ErrInvalidRequest)
	}
}

func TestGetKlines_APIErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"code":-1003,"msg":"Too many requests."}`, ports.ErrRateLimited},
		{"bad symbol", http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`, ports.ErrInvalidRequest},
		{"unavailable", http.StatusServiceUnavailable, `{"code":-1001,"msg":"Internal error; unable to process your request."}`, ports.ErrExchangeUnavailable},
		{"unmapped code", http.StatusBadRequest, `{"code":-9999,"msg":"odd"}`, ports.ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, logger := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.GetKlines(context.Background(), "BTCUSDT", "1m", 10)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.NotEmpty(t, logger.errorMsgs)
		})
	}
}

func TestGetKlines_ContextCanceled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(klinesBody))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetKlines(ctx, "BTCUSDT", "1m", 2)
	assert.ErrorIs(t, err, ports.ErrContextCanceled)
}

func TestPingAndServerTime(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/ping":
			_, _ = w.Write([]byte(`{}`))
		case "/api/v3/time":
			_, _ = w.Write([]byte(`{"serverTime":1709294400000}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	require.NoError(t, c.Ping(context.Background()))
	ts, err := c.GetServerTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1709294400000), ts.UnixMilli())
}
