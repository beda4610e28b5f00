// Command signal_from_csv evaluates the signal engine once on a saved candle window
// and prints the row that would be written.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"candleSignals/config"
	"candleSignals/internal/adapters/csvsink"
	"candleSignals/internal/adapters/logger"
	"candleSignals/internal/domain"
	"candleSignals/internal/ports"
	"candleSignals/internal/strategy"
	"candleSignals/internal/utils"
)

func main() {
	in := flag.String("in", "", "kline CSV produced by fetch_klines")
	flag.Parse()
	if *in == "" {
		log.Fatal("usage: signal_from_csv -in <klines.csv>")
	}

	cfg, err := config.LoadToolConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.New(cfg.LogLevel)

	klines, err := utils.ReadKlinesFromCSV(*in)
	if err != nil {
		log.Fatalf("Error reading %s: %v", *in, err)
	}

	engine, err := strategy.New(cfg.StrategyConfig(), appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize signal engine: %v", err)
	}

	asset, interval := cfg.Asset, cfg.Interval
	if len(klines) > 0 {
		asset, interval = klines[0].Symbol, klines[0].Interval
	}

	res, err := engine.Compute(context.Background(), klines, asset, interval)
	if err != nil {
		log.Fatalf("Error computing signal: %v", err)
	}

	switch res.Outcome {
	case domain.OutcomeInsufficientData:
		fmt.Println(ports.InsufficientDataError(res.Required, res.Available))
	case domain.OutcomeNoSignal:
		fmt.Println("no signal")
	default:
		row := domain.NewSignalRow(time.Now(), res.Payload)
		fmt.Println(strings.Join(domain.SignalColumns, "\t"))
		fmt.Println(strings.Join(csvsink.Record(row), "\t"))
	}
}
