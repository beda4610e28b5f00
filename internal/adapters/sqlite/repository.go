package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"candleSignals/internal/domain"
	"candleSignals/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const writerName = "sqlite"

var (
	_ ports.SignalWriter  = (*Repository)(nil)
	_ ports.SignalJournal = (*Repository)(nil)
)

// Repository implements the ports.SignalWriter and ports.SignalJournal interfaces using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/signals.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// One writer at a time; the driver serializes anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Signal journal ready", ports.Fields{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL DEFAULT '',
		timestamp TIMESTAMP NOT NULL,
		asset TEXT NOT NULL,
		interval TEXT NOT NULL,
		close_price REAL NOT NULL,
		signal TEXT NOT NULL,
		reasons TEXT NOT NULL,
		rsi REAL NOT NULL,
		macd REAL NOT NULL,
		macd_signal REAL DEFAULT NULL,
		ema_fast REAL NOT NULL,
		ema_slow REAL NOT NULL,
		candle_close_time TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_signals_asset_interval_id ON signals (asset, interval, id);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// Name implements ports.SignalWriter.
func (r *Repository) Name() string { return writerName }

// WriteSignal stores the row. The run ID is taken from ctx when present.
func (r *Repository) WriteSignal(ctx context.Context, row domain.SignalRow) error {
	const query = `
	INSERT INTO signals (run_id, timestamp, asset, interval, close_price, signal, reasons,
	                     rsi, macd, macd_signal, ema_fast, ema_slow, candle_close_time)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	p := row.Payload
	var macdSignal sql.NullFloat64
	if p.MACDSignalReady {
		macdSignal = sql.NullFloat64{Float64: p.MACDSignal, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		ports.RunIDFromContext(ctx), row.Timestamp.UTC(), p.Asset, p.Interval, p.ClosePrice, string(p.Signal),
		p.JoinedReasons(), p.RSI, p.MACD, macdSignal, p.EMAFast, p.EMASlow, p.CandleCloseTime.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert signal for %s: %w: %w", p.Asset, ports.ErrWriteFailed, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID for signal %s: %w", p.Asset, err)
	}
	r.logger.Debug(ctx, "Signal journaled", ports.Fields{"signalID": id, "asset": p.Asset, "signal": p.Signal})
	return nil
}

// LastSignal returns the most recent record for asset/interval, or nil if there is none.
func (r *Repository) LastSignal(ctx context.Context, asset, interval string) (*domain.SignalRecord, error) {
	const query = selectColumns + `
	WHERE asset = ? AND interval = ?
	ORDER BY id DESC LIMIT 1`

	rec, err := scanSignal(r.db.QueryRowContext(ctx, query, asset, interval))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query last signal for %s %s: %w: %w", asset, interval, ports.ErrQueryFailed, err)
	}
	return rec, nil
}

// FindRecent returns up to limit records for asset, newest first.
func (r *Repository) FindRecent(ctx context.Context, asset string, limit int) ([]*domain.SignalRecord, error) {
	const query = selectColumns + `
	WHERE asset = ?
	ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, asset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals for %s: %w: %w", asset, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	records := make([]*domain.SignalRecord, 0)
	for rows.Next() {
		rec, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal during FindRecent: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signal rows: %w", err)
	}
	return records, nil
}

const selectColumns = `
	SELECT id, run_id, timestamp, asset, interval, close_price, signal, reasons,
	       rsi, macd, macd_signal, ema_fast, ema_slow, candle_close_time
	FROM signals`

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSignal(s scanner) (*domain.SignalRecord, error) {
	rec := &domain.SignalRecord{}
	p := &rec.Row.Payload
	var (
		signal     string
		reasons    string
		macdSignal sql.NullFloat64
	)
	err := s.Scan(
		&rec.ID, &rec.RunID, &rec.Row.Timestamp, &p.Asset, &p.Interval, &p.ClosePrice, &signal, &reasons,
		&p.RSI, &p.MACD, &macdSignal, &p.EMAFast, &p.EMASlow, &p.CandleCloseTime)
	if err != nil {
		return nil, err // sql.ErrNoRows is handled by the caller
	}
	p.Signal = domain.Signal(signal)
	p.Reasons = []string{}
	if reasons != "" {
		p.Reasons = strings.Split(reasons, domain.ReasonSeparator)
	}
	if macdSignal.Valid {
		p.MACDSignal = macdSignal.Float64
		p.MACDSignalReady = true
	}
	rec.Row.Timestamp = rec.Row.Timestamp.UTC()
	p.CandleCloseTime = p.CandleCloseTime.UTC()
	return rec, nil
}
