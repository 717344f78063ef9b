package translate

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/smsrelay/internal/config"
	"github.com/agentstation/smsrelay/internal/metrics"
	"github.com/agentstation/smsrelay/internal/transport"
	"github.com/agentstation/smsrelay/pkg/errors"
)

// Translation outcomes recorded in metrics.
const (
	outcomeTranslated = "translated"
	outcomeSkipped    = "skipped"
	outcomeFallback   = "fallback"
	outcomeError      = "error"
)

// ErrEmptyResult reports a back-end that answered with no text.
var ErrEmptyResult = errors.New("translation back-end returned empty text")

// Router applies the failure policy around a single back-end.
type Router struct {
	backend Translator
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

// NewRouter wraps backend. logger and m may be nil.
func NewRouter(backend Translator, logger *zerolog.Logger, m *metrics.Metrics) *Router {
	if backend == nil {
		backend = Identity{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "translate").Str("provider", backend.Name()).Logger()
	return &Router{backend: backend, logger: &l, metrics: m}
}

// Translate returns the translated text, or req.Text unchanged when the
// request is empty or the back-end fails for any reason.
func (r *Router) Translate(ctx context.Context, req Request) string {
	if req.Empty() {
		r.metrics.Translation(r.Provider(), outcomeSkipped)
		return req.Text
	}

	out, err := r.call(ctx, req)
	if err != nil {
		r.metrics.Translation(r.Provider(), outcomeFallback)
		r.logger.Warn().
			Err(err).
			Str("target_lang", req.TargetLang).
			Msg("Translation failed, using original text")
		return req.Text
	}

	r.metrics.Translation(r.Provider(), outcomeTranslated)
	return out
}

// TranslateStrict is Translate without the fallback: back-end failures are
// returned as *errors.TranslationError.
func (r *Router) TranslateStrict(ctx context.Context, req Request) (string, error) {
	if req.Empty() {
		r.metrics.Translation(r.Provider(), outcomeSkipped)
		return req.Text, nil
	}

	out, err := r.call(ctx, req)
	if err != nil {
		r.metrics.Translation(r.Provider(), outcomeError)
		r.logger.Warn().
			Err(err).
			Str("target_lang", req.TargetLang).
			Msg("Strict translation failed")
		return "", errors.NewTranslationError(r.Provider(), err)
	}

	r.metrics.Translation(r.Provider(), outcomeTranslated)
	return out, nil
}

// call runs the back-end. A blank result counts as a failure: it can
// never be sent as a message.
func (r *Router) call(ctx context.Context, req Request) (string, error) {
	out, err := r.backend.Translate(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyResult
	}
	return out, nil
}

// Provider returns the active back-end's selector name.
func (r *Router) Provider() string {
	return r.backend.Name()
}

// Model returns the active back-end's model, if any.
func (r *Router) Model() string {
	return r.backend.Model()
}

// Configured reports whether the back-end has its credentials.
func (r *Router) Configured() bool {
	return IsConfigured(r.backend)
}

// FromConfig builds the back-end named by cfg.TranslationProvider.
// It runs once at startup; the result is held for the process lifetime.
func FromConfig(ctx context.Context, cfg *config.Config, opts ...transport.Option) (Translator, error) {
	switch cfg.TranslationProvider {
	case config.ProviderDeepL:
		return NewDeepL(cfg.DeepLAPIKey, cfg.DeepLURL, opts...), nil
	case config.ProviderLibreTranslate:
		return NewLibreTranslate(cfg.LibreTranslateURL, cfg.LibreTranslateAPIKey, opts...), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, opts...), nil
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, &http.Client{Timeout: cfg.ClientTimeout})
	case config.ProviderNone, "":
		return Identity{}, nil
	default:
		return nil, errors.NewConfigError("translation", fmt.Sprintf("unknown provider %q", cfg.TranslationProvider), nil)
	}
}
