package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"candleSignals/config"
	"candleSignals/internal/adapters/binanceclient"
	"candleSignals/internal/adapters/logger"
	"candleSignals/internal/domain"
	"candleSignals/internal/ports"
	"candleSignals/internal/utils"
)

func main() {
	since := flag.Duration("since", 0, "fetch every kline in this lookback window instead of the last CANDLES")
	out := flag.String("out", "", "output CSV path (default data/<asset>_<interval>_<date>.csv)")
	flag.Parse()

	cfg, err := config.LoadToolConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)
	ctx := context.Background()

	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:    cfg.APIKey,
		SecretKey: cfg.SecretKey,
		BaseURL:   cfg.BinanceBaseURL,
		Timeout:   cfg.FetchTimeout,
		Logger:    appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	end := time.Now().UTC()
	var klines []*domain.Kline
	if *since > 0 {
		klines, err = binanceClient.GetKlinesRange(ctx, cfg.Asset, cfg.Interval, end.Add(-*since), end)
	} else {
		klines, err = binanceClient.GetKlines(ctx, cfg.Asset, cfg.Interval, cfg.Candles)
	}
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching klines")
		log.Fatalf("Error fetching klines: %v", err)
	}
	appLogger.Info(ctx, "Fetched klines", ports.Fields{"count": len(klines)})

	filename := *out
	if filename == "" {
		filename = fmt.Sprintf("data/%s_%s_%s.csv", cfg.Asset, cfg.Interval, end.Format("20060102T1504"))
	}
	if err := utils.WriteKlinesToCSV(klines, filename); err != nil {
		appLogger.Error(ctx, err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved to", ports.Fields{"filename": filename})
}
