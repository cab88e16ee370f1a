package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// serviceName is stamped on every log line so aggregated logs stay
// attributable once several services share a sink.
const serviceName = "transferd"

// Config holds logger configuration.
type Config struct {
	Level  string // trace, debug, info, warn, error, fatal, panic
	Format string // json, console
}

// New creates the process-wide logger. An unknown level falls back to info
// so a typo in LOG_LEVEL never silences the service.
func New(cfg Config) zerolog.Logger {
	var output io.Writer = os.Stdout

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(output).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger()
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
