package ports

import "context"

// Fields carries structured key/value pairs for a log entry.
type Fields = map[string]interface{}

// Logger is the logging surface injected into every component.
type Logger interface {
	// Debug logs a message at Debug level.
	Debug(ctx context.Context, msg string, fields ...Fields)
	// Info logs a message at Info level.
	Info(ctx context.Context, msg string, fields ...Fields)
	// Warn logs a message at Warning level.
	Warn(ctx context.Context, msg string, fields ...Fields)
	// Error logs an error message at Error level.
	Error(ctx context.Context, err error, msg string, fields ...Fields)
}

// MergeFields returns a new map holding base overlaid with extra. Later keys win.
func MergeFields(base Fields, extra ...Fields) Fields {
	out := make(Fields, len(base))
	for k, v := range base {
		out[k] = v
	}
	for _, f := range extra {
		for k, v := range f {
			out[k] = v
		}
	}
	return out
}
