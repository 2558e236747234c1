package logging

import (
	"io"
	"log/slog"
)

// NewStructuredLogger creates a slog text logger writing to w at the given
// minimum level. All binaries and middleware share this construction so log
// output stays uniform.
func NewStructuredLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
