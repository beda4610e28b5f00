package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"time"

	"candleSignals/config"
	"candleSignals/internal/adapters/binanceclient"
	"candleSignals/internal/adapters/csvsink"
	"candleSignals/internal/adapters/logger"
	"candleSignals/internal/adapters/sheets"
	"candleSignals/internal/adapters/sqlite"
	"candleSignals/internal/adapters/telegram"
	"candleSignals/internal/app"
	"candleSignals/internal/metrics"
	"candleSignals/internal/ports"
	"candleSignals/internal/strategy"
)

func main() {
	ctx := context.Background()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info(ctx, "Logger initialized", ports.Fields{"level": cfg.LogLevel.String()})

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:    cfg.APIKey,
		SecretKey: cfg.SecretKey,
		BaseURL:   cfg.BinanceBaseURL,
		Timeout:   cfg.FetchTimeout,
		Logger:    appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	if serverTime, err := binanceClient.GetServerTime(ctx); err != nil {
		appLogger.Warn(ctx, "Binance server time unavailable, continuing", ports.Fields{"error": err.Error()})
	} else {
		appLogger.Info(ctx, "Binance reachable", ports.Fields{"clockSkew": time.Since(serverTime).String()})
	}

	// 4. Initialize Signal Engine
	engine, err := strategy.New(cfg.StrategyConfig(), appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize signal engine")
		log.Fatalf("FATAL: Failed to initialize signal engine: %v", err)
	}

	// 5. Initialize Writers
	var writers []ports.SignalWriter
	var opts []app.Option

	if cfg.SheetsEnabled {
		sheetsWriter, err := sheets.New(ctx, sheets.Config{
			SheetID:         cfg.SheetID,
			Range:           cfg.SheetRange,
			CredentialsFile: cfg.GoogleCredentialsFile,
			Logger:          appLogger,
		})
		if err != nil {
			appLogger.Error(ctx, err, "FATAL: Failed to initialize Sheets writer")
			log.Fatalf("FATAL: Failed to initialize Sheets writer: %v", err)
		}
		writers = append(writers, sheetsWriter)
	}

	if cfg.JournalEnabled {
		repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
		if err != nil {
			appLogger.Error(ctx, err, "FATAL: Failed to initialize signal journal")
			log.Fatalf("FATAL: Failed to initialize signal journal: %v", err)
		}
		defer func() {
			if err := repo.Close(); err != nil {
				appLogger.Error(ctx, err, "Error closing signal journal")
			}
		}()
		opts = append(opts, app.WithJournal(repo))
	}

	if cfg.SignalsCSVPath != "" {
		csvWriter, err := csvsink.New(cfg.SignalsCSVPath, appLogger)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize CSV writer: %v", err)
		}
		writers = append(writers, csvWriter)
	}

	if cfg.TelegramEnabled() {
		tgWriter, err := telegram.New(telegram.Config{
			Token:  cfg.TelegramToken,
			ChatID: cfg.TelegramChatID,
			Logger: appLogger,
		})
		if err != nil {
			appLogger.Error(ctx, err, "FATAL: Failed to initialize Telegram writer")
			log.Fatalf("FATAL: Failed to initialize Telegram writer: %v", err)
		}
		writers = append(writers, tgWriter)
	}

	// 6. Metrics
	m := metrics.NewMetrics()
	opts = append(opts, app.WithMetrics(m))
	if cfg.MetricsAddr != "" {
		srv := metrics.NewServer(cfg.MetricsAddr, m, appLogger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				appLogger.Error(ctx, err, "Error stopping metrics server")
			}
		}()
	}

	// 7. Initialize Application Service
	signalService, err := app.NewSignalService(cfg.AppConfig(), appLogger, binanceClient, engine, writers, opts...)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize signal service")
		log.Fatalf("FATAL: Failed to initialize signal service: %v", err)
	}

	// 8. Run
	if err := signalService.Start(ctx); err != nil {
		appLogger.Error(ctx, err, "Signal service exited with error")
		log.Fatalf("FATAL: Signal service exited with error: %v", err)
	}

	appLogger.Info(ctx, "Application finished gracefully.")
}
