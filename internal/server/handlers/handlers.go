// Package handlers provides HTTP request handlers for the relay API.
package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/agentstation/smsrelay/internal/config"
	"github.com/agentstation/smsrelay/internal/openphone"
	"github.com/agentstation/smsrelay/internal/server/events"
	"github.com/agentstation/smsrelay/internal/server/sse"
	ws "github.com/agentstation/smsrelay/internal/server/websocket"
	"github.com/agentstation/smsrelay/internal/translate"
	"github.com/agentstation/smsrelay/internal/transport"
)

// OpenPhone is the provider surface the handlers need.
// *openphone.Client satisfies it.
type OpenPhone interface {
	ListConversations(ctx context.Context, q openphone.ConversationsQuery) (*openphone.ConversationPage, error)
	ListMessages(ctx context.Context, q openphone.MessagesQuery) (*openphone.MessagePage, error)
	SendMessage(ctx context.Context, req openphone.SendRequest) (*transport.Raw, error)
}

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	cfg        *config.Config
	phone      OpenPhone
	translator *translate.Router
	llm        *translate.Router
	broker     *events.Broker
	sse        http.Handler
	ws         http.Handler
	logger     *zerolog.Logger
}

// New creates a new Handlers instance.
//
// translator is the configured back-end used by POST /messages; llm is the
// OpenAI-backed router behind POST /translate.
func New(
	cfg *config.Config,
	phone OpenPhone,
	translator *translate.Router,
	llm *translate.Router,
	broker *events.Broker,
	logger *zerolog.Logger,
) *Handlers {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Handlers{
		cfg:        cfg,
		phone:      phone,
		translator: translator,
		llm:        llm,
		broker:     broker,
		sse:        sse.NewHandler(broker, logger),
		ws:         ws.NewHandler(broker, logger, cfg.AllowedOrigins),
		logger:     logger,
	}
}

// log returns the request-scoped logger set by the logging middleware,
// falling back to the handler logger.
func (h *Handlers) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return h.logger
}
