package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jpillora/backoff"

	"candleSignals/internal/domain"
	"candleSignals/internal/metrics"
	"candleSignals/internal/ports"
)

// Config is the orchestration surface. The engine never sees it.
type Config struct {
	Asset       string
	Interval    string
	CandleCount int

	// RunInterval of zero means a single run.
	RunInterval  time.Duration
	FetchTimeout time.Duration

	// RetryAttempts is the total number of tries per fetch and per writer.
	RetryAttempts int
	RetryMinDelay time.Duration
	RetryMaxDelay time.Duration
}

// Validate checks the configuration against the engine's candle requirement.
func (c Config) Validate(required int) error {
	var errs []error
	if c.Asset == "" {
		errs = append(errs, errors.New("asset must be set"))
	}
	if c.Interval == "" {
		errs = append(errs, errors.New("interval must be set"))
	}
	if c.CandleCount < required {
		errs = append(errs, fmt.Errorf("candle count %d is below the engine requirement of %d", c.CandleCount, required))
	}
	if c.RunInterval < 0 {
		errs = append(errs, errors.New("run interval cannot be negative"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.RetryMinDelay < 0 || c.RetryMaxDelay < c.RetryMinDelay {
		errs = append(errs, errors.New("retry delays must satisfy 0 <= min <= max"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ports.ErrConfigurationError, errors.Join(errs...))
	}
	return nil
}

// Option customizes a SignalService.
type Option func(*SignalService)

// WithJournal enables duplicate suppression against previously written rows.
// The journal is written last, and only when every other writer succeeded.
func WithJournal(j ports.SignalJournal) Option {
	return func(s *SignalService) { s.journal = j }
}

// WithMetrics records run metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *SignalService) { s.metrics = m }
}

// WithClock overrides the time source used for row timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SignalService) { s.now = now }
}

// WithRunIDs overrides the run identifier generator.
func WithRunIDs(next func() string) Option {
	return func(s *SignalService) { s.newRunID = next }
}

// SignalService runs fetch, compute and write cycles.
type SignalService struct {
	cfg     Config
	logger  ports.Logger
	source  ports.KlineSource
	engine  ports.SignalEngine
	writers []ports.SignalWriter

	journal  ports.SignalJournal
	metrics  *metrics.Metrics
	now      func() time.Time
	newRunID func() string
}

// NewSignalService creates a new application service instance.
func NewSignalService(
	cfg Config,
	logger ports.Logger,
	source ports.KlineSource,
	engine ports.SignalEngine,
	writers []ports.SignalWriter,
	opts ...Option,
) (*SignalService, error) {
	if logger == nil || source == nil || engine == nil {
		return nil, fmt.Errorf("missing required dependencies for SignalService")
	}
	if err := cfg.Validate(engine.RequiredDataPoints()); err != nil {
		return nil, err
	}
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}

	s := &SignalService{
		cfg:      cfg,
		logger:   logger,
		source:   source,
		engine:   engine,
		writers:  writers,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.writers) == 0 && s.journal == nil {
		return nil, fmt.Errorf("at least one signal writer is required: %w", ports.ErrConfigurationError)
	}
	return s, nil
}

// Start runs once, or keeps running every RunInterval until ctx is canceled
// or SIGINT/SIGTERM arrives. Runs never overlap.
func (s *SignalService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", ports.Fields{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	if s.cfg.RunInterval == 0 {
		_, err := s.RunOnce(ctx)
		return err
	}

	s.logger.Info(ctx, "Starting signal polling loop", ports.Fields{
		"asset":    s.cfg.Asset,
		"interval": s.cfg.Interval,
		"every":    s.cfg.RunInterval.String(),
	})

	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error(ctx, err, "Signal run failed, continuing")
		}
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Signal service stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce fetches the candle window, evaluates it and hands any payload to the writers.
func (s *SignalService) RunOnce(ctx context.Context) (res domain.Result, err error) {
	runID := s.newRunID()
	ctx = ports.WithRunID(ctx, runID)
	base := ports.Fields{"runID": runID, "asset": s.cfg.Asset, "interval": s.cfg.Interval}
	defer func() { s.metrics.ObserveRun(s.now(), res, err) }()

	klines, err := s.fetch(ctx, base)
	if err != nil {
		return domain.Result{}, err
	}
	if len(klines) == 0 {
		s.logger.Warn(ctx, "No candles returned", base)
		return domain.Result{Outcome: domain.OutcomeNoSignal}, nil
	}

	res, err = s.engine.Compute(ctx, klines, s.cfg.Asset, s.cfg.Interval)
	if err != nil {
		s.logger.Error(ctx, err, "Signal computation failed", base)
		return domain.Result{}, fmt.Errorf("compute: %w", err)
	}

	switch res.Outcome {
	case domain.OutcomeInsufficientData:
		s.logger.Warn(ctx, "Not enough candles to compute indicators", ports.MergeFields(base, ports.Fields{
			"error": ports.InsufficientDataError(res.Required, res.Available).Error(),
		}))
		return res, nil
	case domain.OutcomeNoSignal:
		s.logger.Info(ctx, "No signal generated this run", base)
		return res, nil
	}

	p := res.Payload
	fields := ports.MergeFields(base, ports.Fields{
		"signal":     p.Signal,
		"reasons":    p.JoinedReasons(),
		"closePrice": p.ClosePrice,
		"rsi":        p.RSI,
	})

	if dup := s.checkDuplicate(ctx, p, fields); dup != nil {
		s.metrics.ObserveDuplicate()
		s.logger.Info(ctx, "Signal already recorded for this candle, skipping write",
			ports.MergeFields(fields, ports.Fields{"reason": dup.Error()}))
		return res, nil
	}

	row := domain.NewSignalRow(s.now(), p)
	if err := s.write(ctx, row, fields); err != nil {
		return res, err
	}
	s.logger.Info(ctx, "Signal written", fields)
	return res, nil
}

func (s *SignalService) fetch(ctx context.Context, fields ports.Fields) ([]*domain.Kline, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveFetch(time.Since(start)) }()

	var klines []*domain.Kline
	err := s.retry(ctx, "fetch klines", fields, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
		var err error
		klines, err = s.source.GetKlines(attemptCtx, s.cfg.Asset, s.cfg.Interval, s.cfg.CandleCount)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch klines for %s %s: %w", s.cfg.Asset, s.cfg.Interval, err)
	}
	s.logger.Debug(ctx, "Klines fetched", ports.MergeFields(fields, ports.Fields{"count": len(klines)}))
	return klines, nil
}

// checkDuplicate returns an error wrapping ErrDuplicateEntry when the journal already
// holds the same signal for the same candle. Journal errors are logged and treated as
// "not a duplicate".
func (s *SignalService) checkDuplicate(ctx context.Context, p *domain.Payload, fields ports.Fields) error {
	if s.journal == nil {
		return nil
	}
	last, err := s.journal.LastSignal(ctx, p.Asset, p.Interval)
	if err != nil {
		s.logger.Warn(ctx, "Journal lookup failed, writing anyway", ports.MergeFields(fields, ports.Fields{"error": err.Error()}))
		return nil
	}
	if last == nil {
		return nil
	}
	prev := last.Row.Payload
	if prev.Signal != p.Signal || !prev.CandleCloseTime.Equal(p.CandleCloseTime) {
		return nil
	}
	return fmt.Errorf("%w: %s for candle closing %s (journal id %d)",
		ports.ErrDuplicateEntry, p.Signal, p.CandleCloseTime.UTC().Format(domain.TimestampLayout), last.ID)
}

// write hands the row to every writer, then records it in the journal.
// A row that some writer failed to take is kept out of the journal so the next run retries it.
func (s *SignalService) write(ctx context.Context, row domain.SignalRow, fields ports.Fields) error {
	var errs []error
	for _, w := range s.writers {
		if err := s.writeTo(ctx, w, row, fields); err != nil {
			errs = append(errs, err)
		}
	}
	if s.journal == nil {
		return errors.Join(errs...)
	}
	if len(errs) > 0 {
		s.logger.Warn(ctx, "Journal entry withheld until every writer succeeds", fields)
		return errors.Join(errs...)
	}
	return s.writeTo(ctx, s.journal, row, fields)
}

func (s *SignalService) writeTo(ctx context.Context, w ports.SignalWriter, row domain.SignalRow, fields ports.Fields) error {
	wf := ports.MergeFields(fields, ports.Fields{"writer": w.Name()})
	err := s.retry(ctx, "write "+w.Name(), wf, func(ctx context.Context) error {
		return w.WriteSignal(ctx, row)
	})
	if err != nil {
		s.metrics.ObserveWriteFailure(w.Name())
		s.logger.Error(ctx, err, "Signal writer failed", wf)
		return fmt.Errorf("writer %s: %w", w.Name(), err)
	}
	return nil
}

func (s *SignalService) retry(ctx context.Context, op string, fields ports.Fields, fn func(context.Context) error) error {
	b := &backoff.Backoff{
		Min:    s.cfg.RetryMinDelay,
		Max:    s.cfg.RetryMaxDelay,
		Factor: 2,
		Jitter: true,
	}

	var err error
	for attempt := 1; attempt <= s.cfg.RetryAttempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !retryable(err) || attempt == s.cfg.RetryAttempts {
			break
		}
		wait := b.Duration()
		s.logger.Warn(ctx, op+" failed, retrying", ports.MergeFields(fields, ports.Fields{
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		}))
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w: %w", op, ports.ErrContextCanceled, ctx.Err())
		case <-time.After(wait):
		}
	}
	return err
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	switch {
	case errors.Is(err, ports.ErrInvalidRequest),
		errors.Is(err, ports.ErrAuthenticationFailed),
		errors.Is(err, ports.ErrConfigurationError),
		errors.Is(err, ports.ErrContextCanceled),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}
