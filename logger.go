package fastfilter

import (
	"log/slog"

	"github.com/tphakala/go-fastfilter/internal/logging"
)

// SetLogger configures the logger used for filter diagnostics. By default the
// package is silent. Pass nil to restore the silent default.
//
// Debug records cover filter assembly and scratch allocation; a Warn record
// is emitted when FixedRadius is requested for a radius without an unrolled
// step. SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logging.Logger()
}
