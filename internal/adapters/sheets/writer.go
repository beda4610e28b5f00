package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"candleSignals/internal/domain"
	"candleSignals/internal/ports"
)

const (
	writerName   = "sheets"
	defaultRange = "Sheet1!A1"
)

var _ ports.SignalWriter = (*Writer)(nil)

// Writer appends signal rows to a Google spreadsheet.
type Writer struct {
	svc     *gsheets.Service
	sheetID string
	rng     string
	logger  ports.Logger
}

// Config holds configuration for the Sheets writer.
type Config struct {
	SheetID         string
	Range           string // A1 notation; rows are appended after the table found there
	CredentialsFile string // service-account JSON; empty uses application default credentials
	Logger          ports.Logger

	// ClientOptions are appended after the credentials option.
	ClientOptions []option.ClientOption
}

// New creates a Sheets writer.
func New(ctx context.Context, cfg Config) (*Writer, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Sheets writer")
	}
	if cfg.SheetID == "" {
		return nil, fmt.Errorf("sheet ID is required: %w", ports.ErrConfigurationError)
	}
	rng := cfg.Range
	if rng == "" {
		rng = defaultRange
	}

	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, cfg.ClientOptions...)

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w: %w", ports.ErrConfigurationError, err)
	}

	cfg.Logger.Info(ctx, "Sheets writer configured", ports.Fields{"sheetID": cfg.SheetID, "range": rng})
	return &Writer{svc: svc, sheetID: cfg.SheetID, rng: rng, logger: cfg.Logger}, nil
}

// Name implements ports.SignalWriter.
func (w *Writer) Name() string { return writerName }

// WriteSignal appends the row's values as one new spreadsheet row.
func (w *Writer) WriteSignal(ctx context.Context, row domain.SignalRow) error {
	vr := &gsheets.ValueRange{Values: [][]interface{}{row.Values()}}

	resp, err := w.svc.Spreadsheets.Values.Append(w.sheetID, w.rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return w.handleError(ctx, err)
	}

	fields := ports.Fields{"sheetID": w.sheetID, "asset": row.Payload.Asset, "signal": row.Payload.Signal}
	if resp.Updates != nil {
		fields["updatedRange"] = resp.Updates.UpdatedRange
	}
	w.logger.Info(ctx, "Signal appended to sheet", fields)
	return nil
}

func (w *Writer) handleError(ctx context.Context, err error) error {
	var mapped error = ports.ErrWriteFailed

	var apiErr *googleapi.Error
	switch {
	case errors.As(err, &apiErr):
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			mapped = ports.ErrRateLimited
		case http.StatusUnauthorized, http.StatusForbidden:
			mapped = ports.ErrAuthenticationFailed
		case http.StatusNotFound:
			mapped = ports.ErrNotFound
		case http.StatusBadRequest:
			mapped = ports.ErrInvalidRequest
		}
	case errors.Is(err, context.DeadlineExceeded):
		mapped = ports.ErrTimeout
	case errors.Is(err, context.Canceled):
		mapped = ports.ErrContextCanceled
	}

	w.logger.Error(ctx, err, "Sheets append failed", ports.Fields{"sheetID": w.sheetID, "range": w.rng})
	return fmt.Errorf("sheets append: %w: %w", mapped, err)
}
