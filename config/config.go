package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"candleSignals/internal/adapters/logger"
	"candleSignals/internal/app"
	"candleSignals/internal/strategy"
)

// maxCandles is the largest window the spot klines endpoint returns in one call.
const maxCandles = 1000

// Config holds all application configuration.
type Config struct {
	// Market window
	Asset    string
	Interval string
	Candles  int

	// Google Sheets
	SheetsEnabled         bool
	SheetID               string
	SheetRange            string
	GoogleCredentialsFile string

	// Binance API (keys are optional, klines are public)
	BinanceBaseURL string
	APIKey         string
	SecretKey      string

	// Strategy Parameters
	StrategyEMAFastPeriod    int     // e.g., 12
	StrategyEMASlowPeriod    int     // e.g., 26
	StrategyMACDSignalPeriod int     // e.g., 9
	StrategyRSIPeriod        int     // e.g., 14
	StrategyRSIOverbought    float64 // e.g., 70.0
	StrategyRSIOversold      float64 // e.g., 30.0

	// Scheduling and retries
	RunInterval   time.Duration // 0 runs once
	FetchTimeout  time.Duration
	RetryAttempts int
	RetryMinDelay time.Duration
	RetryMaxDelay time.Duration

	// Journal
	JournalEnabled bool
	DBPath         string

	// Optional writers
	SignalsCSVPath string
	TelegramToken  string
	TelegramChatID int64

	// Observability
	MetricsAddr string
	LogLevel    logger.LogLevel
}

// TelegramEnabled reports whether both Telegram settings are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// StrategyConfig returns the engine parameters.
func (c *Config) StrategyConfig() strategy.Config {
	return strategy.Config{
		FastPeriod:    c.StrategyEMAFastPeriod,
		SlowPeriod:    c.StrategyEMASlowPeriod,
		SignalPeriod:  c.StrategyMACDSignalPeriod,
		RSIPeriod:     c.StrategyRSIPeriod,
		RSIOverbought: c.StrategyRSIOverbought,
		RSIOversold:   c.StrategyRSIOversold,
	}
}

// AppConfig returns the orchestration settings.
func (c *Config) AppConfig() app.Config {
	return app.Config{
		Asset:         c.Asset,
		Interval:      c.Interval,
		CandleCount:   c.Candles,
		RunInterval:   c.RunInterval,
		FetchTimeout:  c.FetchTimeout,
		RetryAttempts: c.RetryAttempts,
		RetryMinDelay: c.RetryMinDelay,
		RetryMaxDelay: c.RetryMaxDelay,
	}
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	return load(true)
}

// LoadToolConfig loads the same configuration for the offline tools, which
// fetch or evaluate candles without writing signals. Writer settings are read
// but not validated.
func LoadToolConfig() (*Config, error) {
	return load(false)
}

func load(validateWriters bool) (*Config, error) {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string

	// Market window
	cfg.Asset = strings.ToUpper(strings.TrimSpace(getEnv("ASSET", "BTCUSDT")))
	cfg.Interval = getEnv("INTERVAL", "1m")

	cfg.Candles, err = getEnvAsIntRequired("CANDLES", 200)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CANDLES: %v", err))
	} else if cfg.Candles <= 0 || cfg.Candles > maxCandles {
		errs = append(errs, fmt.Sprintf("CANDLES must be between 1 and %d", maxCandles))
	}

	// Google Sheets
	cfg.SheetsEnabled = getEnvAsBool("SHEETS_ENABLED", true)
	cfg.SheetID = getEnv("SHEET_ID", "")
	cfg.SheetRange = getEnv("SHEET_RANGE", "Sheet1!A1")
	cfg.GoogleCredentialsFile = getEnv("GOOGLE_CREDENTIALS_FILE", "")
	if validateWriters && cfg.SheetsEnabled && cfg.SheetID == "" {
		errs = append(errs, "SHEET_ID must be set")
	}

	// Binance API
	cfg.BinanceBaseURL = getEnv("BINANCE_BASE_URL", "https://api.binance.com")
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")

	// Strategy Parameters (using defaults if not set)
	cfg.StrategyEMAFastPeriod = getEnvAsInt("STRATEGY_EMA_FAST_PERIOD", 12)
	cfg.StrategyEMASlowPeriod = getEnvAsInt("STRATEGY_EMA_SLOW_PERIOD", 26)
	cfg.StrategyMACDSignalPeriod = getEnvAsInt("STRATEGY_MACD_SIGNAL_PERIOD", 9)
	cfg.StrategyRSIPeriod = getEnvAsInt("STRATEGY_RSI_PERIOD", 14)
	cfg.StrategyRSIOverbought = getEnvAsFloat("STRATEGY_RSI_OVERBOUGHT", 70.0)
	cfg.StrategyRSIOversold = getEnvAsFloat("STRATEGY_RSI_OVERSOLD", 30.0)

	if cfg.StrategyEMAFastPeriod <= 0 || cfg.StrategyEMASlowPeriod <= 0 || cfg.StrategyMACDSignalPeriod <= 0 || cfg.StrategyRSIPeriod <= 0 {
		errs = append(errs, "strategy periods (EMA, MACD signal, RSI) must be positive")
	}
	if cfg.StrategyEMAFastPeriod >= cfg.StrategyEMASlowPeriod {
		errs = append(errs, "STRATEGY_EMA_FAST_PERIOD must be less than STRATEGY_EMA_SLOW_PERIOD")
	}
	if cfg.StrategyRSIOverbought <= cfg.StrategyRSIOversold || cfg.StrategyRSIOverbought > 100 || cfg.StrategyRSIOversold < 0 {
		errs = append(errs, "invalid RSI thresholds (Overbought must be > Oversold, between 0-100)")
	}

	// Scheduling and retries
	runIntervalSeconds, err := getEnvAsIntRequired("RUN_INTERVAL_SECONDS", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RUN_INTERVAL_SECONDS: %v", err))
	} else if runIntervalSeconds < 0 {
		errs = append(errs, "RUN_INTERVAL_SECONDS cannot be negative")
	}
	cfg.RunInterval = time.Duration(runIntervalSeconds) * time.Second

	fetchTimeoutSeconds := getEnvAsInt("FETCH_TIMEOUT_SECONDS", 10)
	if fetchTimeoutSeconds <= 0 {
		errs = append(errs, "FETCH_TIMEOUT_SECONDS must be positive")
	}
	cfg.FetchTimeout = time.Duration(fetchTimeoutSeconds) * time.Second

	cfg.RetryAttempts = getEnvAsInt("RETRY_ATTEMPTS", 3)
	if cfg.RetryAttempts < 1 {
		errs = append(errs, "RETRY_ATTEMPTS must be at least 1")
	}
	cfg.RetryMinDelay = time.Duration(getEnvAsInt("RETRY_MIN_DELAY_MS", 500)) * time.Millisecond
	cfg.RetryMaxDelay = time.Duration(getEnvAsInt("RETRY_MAX_DELAY_MS", 10000)) * time.Millisecond
	if cfg.RetryMinDelay <= 0 || cfg.RetryMaxDelay < cfg.RetryMinDelay {
		errs = append(errs, "retry delays must satisfy 0 < RETRY_MIN_DELAY_MS <= RETRY_MAX_DELAY_MS")
	}

	// Journal
	cfg.JournalEnabled = getEnvAsBool("JOURNAL_ENABLED", true)
	cfg.DBPath = getEnv("DB_PATH", "./data/signals.db")

	// Optional writers
	cfg.SignalsCSVPath = getEnv("SIGNALS_CSV_PATH", "")
	cfg.TelegramToken = getEnv("TELEGRAM_TOKEN", "")
	cfg.TelegramChatID, err = getEnvAsInt64Required("TELEGRAM_CHAT_ID", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TELEGRAM_CHAT_ID: %v", err))
	}
	if validateWriters && (cfg.TelegramToken == "") != (cfg.TelegramChatID == 0) {
		errs = append(errs, "TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	if validateWriters && !cfg.SheetsEnabled && !cfg.JournalEnabled && cfg.SignalsCSVPath == "" && !cfg.TelegramEnabled() {
		errs = append(errs, "at least one signal writer must be enabled")
	}

	// Observability
	cfg.MetricsAddr = getEnv("METRICS_ADDR", "")
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := getEnvAsIntRequired(key, defaultValue)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsInt64Required(key string, defaultValue int64) (int64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
