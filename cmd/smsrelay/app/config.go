package app

import "os"

// Options holds the global CLI flags and the logging settings that sit
// alongside them. Relay settings live in internal/config.
type Options struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration. EnvLogLevel is LOG_LEVEL; LogLevel is the
	// explicit --log-level flag.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadOptions reads the environment-backed defaults.
func LoadOptions() *Options {
	return &Options{
		NoColor:     os.Getenv("NO_COLOR") != "",
		EnvLogLevel: os.Getenv("LOG_LEVEL"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}
}

// UpdateFromFlags updates options from parsed command flags so flag
// values take precedence over the environment.
func (o *Options) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	o.Verbose = verbose
	o.Quiet = quiet
	o.NoColor = o.NoColor || noColor
	if format != "" {
		o.Format = format
	}
	if logLevel != "" {
		o.LogLevel = logLevel
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
