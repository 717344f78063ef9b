package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/smsrelay/pkg/logging"
)

// NewLogger creates a configured logger from the CLI options.
// Log level precedence (highest to lowest):
//  1. --log-level flag
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. LOG_LEVEL environment variable
//  5. Default (info)
func NewLogger(opts *Options) zerolog.Logger {
	level := determineLogLevel(opts)

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    opts.LogFormat,
		Output:    opts.LogOutput,
		NoColor:   opts.NoColor,
		AddCaller: level == "debug" || level == "trace",
	})
	logging.SetDefault(logger)
	return logger
}

// determineLogLevel determines the log level using clear precedence rules.
func determineLogLevel(opts *Options) string {
	if opts.LogLevel != "" {
		validated := validateLogLevel(opts.LogLevel)
		if validated != strings.ToLower(opts.LogLevel) {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", opts.LogLevel, validated)
		}
		return validated
	}

	if opts.Verbose && opts.Quiet {
		// Both specified - warn user and use quiet (more restrictive)
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}
	if opts.Verbose {
		return "debug"
	}
	if opts.Quiet {
		return "warn"
	}

	if opts.EnvLogLevel != "" {
		return validateLogLevel(opts.EnvLogLevel)
	}
	return "info"
}

// validateLogLevel returns level if valid, "info" otherwise.
func validateLogLevel(level string) string {
	switch l := strings.ToLower(level); l {
	case "trace", "debug", "info", "warn", "error":
		return l
	default:
		return "info"
	}
}
