package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/agentstation/smsrelay/internal/openphone"
	"github.com/agentstation/smsrelay/internal/server/events"
	"github.com/agentstation/smsrelay/internal/server/response"
)

// messageEventPrefix selects the webhook events that are pushed to clients.
const messageEventPrefix = "message."

// webhookEvents maps each accepted provider path segment to its event name.
var webhookEvents = map[string]string{
	openphone.ProviderName: events.OpenPhone,
}

// HandleWebhook handles POST /webhooks/{provider}.
//
// Message events are broadcast under the provider's event name with the body
// forwarded untouched. A known provider always gets 200, even for bodies that
// cannot be parsed, so it never retries. Unknown providers get 404.
func (h *Handlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	eventType, ok := webhookEvents[provider]
	if !ok {
		response.Error(w, http.StatusNotFound, "unknown webhook provider", "")
		return
	}
	logger := h.log(r).With().Str("provider", provider).Logger()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read webhook body")
		acknowledge(w)
		return
	}

	var envelope openphone.WebhookEvent
	if err := json.Unmarshal(body, &envelope); err != nil {
		logger.Warn().Err(err).Int("bytes", len(body)).Msg("Malformed webhook payload")
		acknowledge(w)
		return
	}

	if strings.HasPrefix(envelope.Type, messageEventPrefix) {
		delivered := h.broker.Broadcast(eventType, json.RawMessage(body))
		logger.Info().
			Str("type", envelope.Type).
			Str("event_id", envelope.ID).
			Int("delivered", delivered).
			Msg("Webhook event broadcast")
	} else {
		logger.Debug().Str("type", envelope.Type).Msg("Webhook event ignored")
	}

	acknowledge(w)
}

func acknowledge(w http.ResponseWriter) {
	response.OK(w, map[string]bool{"ok": true})
}
