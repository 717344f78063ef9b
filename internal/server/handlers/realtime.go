package handlers

import "net/http"

// HandleSSE handles Server-Sent Events at GET /events.
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sse.ServeHTTP(w, r)
}

// HandleWebSocket handles WebSocket connections at GET /events/ws.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.ws.ServeHTTP(w, r)
}
