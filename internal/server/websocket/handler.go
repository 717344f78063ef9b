package websocket

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/smsrelay/internal/server/events"
)

// Handler serves GET /events/ws.
type Handler struct {
	broker         *events.Broker
	logger         *zerolog.Logger
	upgrader       websocket.Upgrader
	allowedOrigins []string
	pingPeriod     time.Duration
}

// NewHandler creates a WebSocket endpoint backed by broker. Browser
// origins are checked against allowedOrigins; "*" or an empty list
// accepts any origin.
func NewHandler(broker *events.Broker, logger *zerolog.Logger, allowedOrigins []string) *Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Handler{
		broker:         broker,
		logger:         logger,
		allowedOrigins: allowedOrigins,
		pingPeriod:     pingPeriod,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	// Same-host requests are always fine.
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// ServeHTTP upgrades the connection and registers it with the broker
// until the peer disconnects or the broker shuts down.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := NewClient(conn)
	handle, err := h.broker.Subscribe(client)
	if err != nil {
		_ = client.Close()
		return
	}
	defer h.broker.Unsubscribe(handle)

	go h.keepAlive(client, handle)

	if err := client.ReadPump(); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
			h.logger.Warn().Err(err).Str("subscriber_id", handle.ID()).Msg("WebSocket read error")
		}
	}
}

func (h *Handler) keepAlive(client *Client, handle *events.Subscription) {
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-handle.Done():
			return
		case <-ticker.C:
			if err := client.Ping(); err != nil {
				h.broker.Unsubscribe(handle)
				return
			}
		}
	}
}
