// Package logging provides structured logging for smsrelay using zerolog.
// Console output is used when stderr is a terminal and JSON otherwise,
// so the same binary reads well in a shell and in a log pipeline.
//
// Components take a *zerolog.Logger at construction. The process-wide
// default only backs FromContext when a context carries no logger.
//
//	log := logging.NewLoggerFromConfig(&logging.Config{Level: "debug"})
//	ctx := logging.WithLogger(context.Background(), &log)
//	logging.FromContext(ctx).Debug().Msg("Using logger from context")
package logging

import (
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger atomic.Pointer[zerolog.Logger]

func init() {
	cfg := DefaultConfig()
	cfg.Level = os.Getenv("LOG_LEVEL")
	if f := os.Getenv("LOG_FORMAT"); f != "" {
		cfg.Format = f
	}
	l := NewLoggerFromConfig(cfg)
	defaultLogger.Store(&l)
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger, including zerolog's
// global log.Logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger.Store(&logger)
	log.Logger = logger
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
