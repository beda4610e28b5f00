package csvsink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"

	"candleSignals/internal/domain"
	"candleSignals/internal/ports"
)

const writerName = "csv"

var _ ports.SignalWriter = (*Writer)(nil)

// Writer appends signal rows to a local CSV file.
type Writer struct {
	path   string
	logger ports.Logger
	mu     sync.Mutex
}

// New creates a CSV writer for path. The file is created on first write.
func New(path string, logger ports.Logger) (*Writer, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for CSV writer")
	}
	if path == "" {
		return nil, fmt.Errorf("csv path is required: %w", ports.ErrConfigurationError)
	}
	return &Writer{path: path, logger: logger}, nil
}

// Name implements ports.SignalWriter.
func (w *Writer) Name() string { return writerName }

// WriteSignal appends one record, writing the header first if the file is new or empty.
func (w *Writer) WriteSignal(ctx context.Context, row domain.SignalRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w: %w", w.path, ports.ErrWriteFailed, err)
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w: %w", w.path, ports.ErrWriteFailed, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w: %w", w.path, ports.ErrWriteFailed, err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(domain.SignalColumns); err != nil {
			return fmt.Errorf("failed to write header: %w: %w", ports.ErrWriteFailed, err)
		}
	}
	if err := cw.Write(Record(row)); err != nil {
		return fmt.Errorf("failed to write record: %w: %w", ports.ErrWriteFailed, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w: %w", w.path, ports.ErrWriteFailed, err)
	}

	w.logger.Debug(ctx, "Signal appended to CSV", ports.Fields{"path": w.path, "asset": row.Payload.Asset, "signal": row.Payload.Signal})
	return nil
}

// Record renders the row's values as CSV fields. Floats use their shortest exact decimal form.
func Record(row domain.SignalRow) []string {
	values := row.Values()
	out := make([]string, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case float64:
			out[i] = decimal.NewFromFloat(val).String()
		case string:
			out[i] = val
		default:
			out[i] = fmt.Sprint(val)
		}
	}
	return out
}
