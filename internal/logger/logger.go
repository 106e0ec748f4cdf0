package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Logger is the process-wide structured logger. Init must run before use.
var Logger zerolog.Logger

// Init configures the logger from level/format settings and installs it
// as the zerolog global.
func Init(level, format string) {
	InitWithWriter(os.Stdout, level, format)
}

// InitWithWriter is Init with an explicit sink, used by tests to capture output.
func InitWithWriter(w io.Writer, level, format string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	if format == "json" {
		Logger = zerolog.New(w).With().Timestamp().Logger().Level(parsed)
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger().Level(parsed)
	}

	zlog.Logger = Logger
}
