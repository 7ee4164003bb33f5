package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup initializes a zerolog.Logger on stderr based on the requested format.
// format can be "text" (human-friendly console) or "json" (structured).
func Setup(format string) zerolog.Logger {
	return New(format, os.Stderr)
}

// New builds the logger for format writing to w. Unknown formats fall back
// to JSON.
func New(format string, w io.Writer) zerolog.Logger {
	if format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Str("app", "claimgen").Logger()
	}
	return zerolog.New(w).With().Timestamp().Str("app", "claimgen").Logger()
}
