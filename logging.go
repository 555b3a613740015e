package localtable

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var defaultLogOutput io.Writer = os.Stderr

// Logger wraps charm/log for structured logging.
type Logger struct {
	*log.Logger
}

// NewLogger creates a logger writing to w at the named level. Unknown levels
// fall back to info.
func NewLogger(w io.Writer, level string) *Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           lvl,
		Prefix:          "localtable",
	})
	return &Logger{Logger: l}
}

// DiscardLogger returns a logger that drops all output.
func DiscardLogger() *Logger {
	return NewLogger(io.Discard, "error")
}

// Request logs one served HTTP request.
func (l *Logger) Request(method, uri string, status int, latency time.Duration, ip string) {
	l.Info("request",
		"method", method,
		"uri", uri,
		"status", status,
		"latency", latency.Round(time.Microsecond),
		"ip", ip)
}

// Saved logs a successful primary write.
func (l *Logger) Saved(kind, id string) {
	l.Info("saved", "kind", kind, "id", id)
}

// NotifyFailed logs a best-effort side effect that did not go through.
func (l *Logger) NotifyFailed(kind, target string, err error) {
	l.Warn("notification failed",
		"kind", kind,
		"target", target,
		"error", err)
}

// ConfigError logs a missing or broken setting.
func (l *Logger) ConfigError(setting string, err error) {
	l.Error("configuration error",
		"setting", setting,
		"error", err)
}
