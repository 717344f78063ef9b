// Package app provides the application context and dependency management
// for the smsrelay CLI: flag-level options, logging, lazily loaded relay
// configuration and the clients commands share.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/smsrelay/cmd/application"
	"github.com/agentstation/smsrelay/internal/config"
	"github.com/agentstation/smsrelay/internal/openphone"
	"github.com/agentstation/smsrelay/internal/translate"
	"github.com/agentstation/smsrelay/internal/transport"
	"github.com/agentstation/smsrelay/pkg/errors"
)

// App represents the smsrelay application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// CLI options
	options *Options

	logger *zerolog.Logger

	// Relay configuration and clients (lazy-initialized)
	mu     sync.Mutex
	config *config.Config
	phone  *openphone.Client
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		options: LoadOptions(),
	}

	logger := NewLogger(app.options)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Options returns the CLI options.
func (a *App) Options() *Options {
	return a.options
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value.
func (a *App) OutputFormat() string {
	return a.options.Format
}

// Config loads the relay configuration on first use. It honours --config.
func (a *App) Config() (*config.Config, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadConfig()
}

func (a *App) loadConfig() (*config.Config, error) {
	if a.config != nil {
		return a.config, nil
	}
	cfg, err := config.Load(a.options.ConfigFile)
	if err != nil {
		return nil, errors.WrapResource("load", "config", a.options.ConfigFile, err)
	}
	if cfg.ConfigFile != "" {
		a.logger.Debug().Str("file", cfg.ConfigFile).Msg("Using config file")
	}
	a.config = cfg
	return cfg, nil
}

// OpenPhone returns the shared provider client.
func (a *App) OpenPhone() (*openphone.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phone != nil {
		return a.phone, nil
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.OpenPhoneAPIKey == "" {
		return nil, errors.NewConfigError("openphone", "OPENPHONE_API_KEY is not set", nil)
	}
	a.phone = openphone.New(cfg.OpenPhoneURL, cfg.OpenPhoneAPIKey, a.logger, transport.WithTimeout(cfg.ClientTimeout))
	return a.phone, nil
}

// Translator builds a router over the configured translation back-end.
func (a *App) Translator(ctx context.Context) (*translate.Router, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	backend, err := translate.FromConfig(ctx, cfg, transport.WithTimeout(cfg.ClientTimeout))
	if err != nil {
		return nil, err
	}
	return translate.NewRouter(backend, a.logger, nil), nil
}

// Shutdown performs graceful shutdown of the application. The CLI holds
// no background work outside a running server, which shuts itself down.
func (a *App) Shutdown(_ context.Context) error {
	a.logger.Debug().Msg("Application shutdown")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a preloaded relay configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
