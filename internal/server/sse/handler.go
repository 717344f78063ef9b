package sse

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/smsrelay/internal/server/events"
)

// Defaults for Handler.
const (
	DefaultHeartbeat    = 25 * time.Second
	DefaultWriteTimeout = 10 * time.Second
)

// Handler serves GET /events.
type Handler struct {
	broker       *events.Broker
	logger       *zerolog.Logger
	heartbeat    time.Duration
	writeTimeout time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithHeartbeat sets the keep-alive comment interval.
func WithHeartbeat(d time.Duration) Option {
	return func(h *Handler) { h.heartbeat = d }
}

// WithWriteTimeout sets the per-write deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Handler) { h.writeTimeout = d }
}

// NewHandler creates an SSE endpoint backed by broker.
func NewHandler(broker *events.Broker, logger *zerolog.Logger, opts ...Option) *Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Handler{
		broker:       broker,
		logger:       logger,
		heartbeat:    DefaultHeartbeat,
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP holds the response open and streams events until the client
// goes away, a write fails, or the broker shuts down.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	sub := NewSubscriber(w, h.writeTimeout)
	w.WriteHeader(http.StatusOK)
	if err := sub.Comment("connected"); err != nil {
		h.logger.Debug().Err(err).Msg("SSE greeting failed")
		return
	}

	handle, err := h.broker.Subscribe(sub)
	if err != nil {
		h.logger.Debug().Err(err).Msg("SSE subscribe rejected")
		return
	}
	defer h.broker.Unsubscribe(handle)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-handle.Done():
			return
		case <-ticker.C:
			if err := sub.Comment("heartbeat"); err != nil {
				h.logger.Debug().Err(err).Str("subscriber_id", handle.ID()).Msg("SSE heartbeat failed")
				return
			}
		}
	}
}
