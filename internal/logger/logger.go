// Package logger configures the process-wide slog default with colored
// terminal output.
package logger

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

var (
	once   sync.Once
	logger *slog.Logger
)

type Options struct {
	Level  slog.Leveler // slog.LevelInfo, slog.LevelDebug, etc.
	Writer *os.File     // default: os.Stdout
	// TimeFormat defaults to RFC3339 so settlement log lines carry full
	// dates, matching the timestamps stored on outcomes.
	TimeFormat string
}

// Init installs the handler exactly once; later calls are no-ops.
func Init(opts *Options) {
	once.Do(func() {
		if opts == nil {
			opts = &Options{}
		}
		writer := opts.Writer
		if writer == nil {
			writer = os.Stdout
		}
		timeFormat := opts.TimeFormat
		if timeFormat == "" {
			timeFormat = time.RFC3339
		}

		handler := tint.NewHandler(writer, &tint.Options{
			Level:      opts.Level,
			TimeFormat: timeFormat,
		})

		logger = slog.New(handler)
		slog.SetDefault(logger)
	})
}

// L returns the configured logger, or the slog default before Init has
// run.
func L() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
