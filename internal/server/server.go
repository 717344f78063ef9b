// Package server assembles the relay's HTTP server: routes, middleware,
// the event broker and the provider clients behind them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/smsrelay/internal/config"
	"github.com/agentstation/smsrelay/internal/metrics"
	"github.com/agentstation/smsrelay/internal/openphone"
	"github.com/agentstation/smsrelay/internal/server/events"
	"github.com/agentstation/smsrelay/internal/server/handlers"
	"github.com/agentstation/smsrelay/internal/translate"
	"github.com/agentstation/smsrelay/internal/transport"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	cfg        *config.Config
	opts       Config
	broker     *events.Broker
	metrics    *metrics.Metrics
	translator *translate.Router
	llm        *translate.Router
	handlers   *handlers.Handlers
	logger     *zerolog.Logger
	startTime  time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithServerConfig overrides the HTTP tuning defaults.
func WithServerConfig(c Config) Option {
	return func(s *Server) { s.opts = c }
}

// New builds the server and everything it owns from cfg. The translation
// back-end is chosen here, once, and held for the server's lifetime.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	s := &Server{
		cfg:       cfg,
		opts:      DefaultConfig(),
		metrics:   metrics.New(),
		logger:    logger,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.broker = events.NewBroker(logger, events.WithMetrics(s.metrics))

	clientOpts := []transport.Option{
		transport.WithTimeout(cfg.ClientTimeout),
		transport.WithObserver(s.metrics.ObserveUpstream),
	}

	backend, err := translate.FromConfig(ctx, cfg, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating translator: %w", err)
	}
	s.translator = translate.NewRouter(backend, logger, s.metrics)
	s.llm = translate.NewRouter(
		translate.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, clientOpts...),
		logger,
		s.metrics,
	)

	phone := openphone.New(cfg.OpenPhoneURL, cfg.OpenPhoneAPIKey, logger, clientOpts...)
	s.handlers = handlers.New(cfg, phone, s.translator, s.llm, s.broker, logger)

	for _, w := range cfg.Warnings() {
		logger.Warn().Msg(w)
	}
	logger.Debug().
		Str("translation_provider", s.translator.Provider()).
		Str("translation_model", s.translator.Model()).
		Bool("translator_configured", s.translator.Configured()).
		Msg("Server instance created")

	return s, nil
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done or the server fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       s.opts.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", ln.Addr().String()).
			Str("translation_provider", s.translator.Provider()).
			Msg("Server starting")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		_ = s.broker.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx, srv)
}

// Shutdown closes every event stream, then drains srv.
func (s *Server) Shutdown(ctx context.Context, srv *http.Server) error {
	// Streams never finish on their own, so they must end before
	// http.Server.Shutdown waits for active handlers.
	if err := s.broker.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Closing event broker")
	}
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info().
		Dur("uptime", time.Since(s.startTime)).
		Msg("Server stopped gracefully")
	return nil
}

// Broker returns the event broker.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// Metrics returns the server's metrics registry.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Translator returns the router used for outbound messages.
func (s *Server) Translator() *translate.Router {
	return s.translator
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
