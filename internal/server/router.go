package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/agentstation/smsrelay/internal/server/middleware"
	"github.com/agentstation/smsrelay/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	cors := middleware.DefaultCORSConfig()
	if len(s.cfg.AllowedOrigins) > 0 {
		cors.AllowedOrigins = s.cfg.AllowedOrigins
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(s.logger, s.metrics))
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.CORS(cors))

	s.registerRoutes(r)
	return r
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(r chi.Router) {
	h := s.handlers

	r.Get("/healthz", h.HandleHealth)

	r.Get("/conversations", h.HandleListConversations)
	r.Get("/messages", h.HandleListMessages)
	r.Post("/messages", h.HandleSendMessage)
	r.Post("/translate", h.HandleTranslate)
	r.Post("/webhooks/{provider}", h.HandleWebhook)

	// Real-time endpoints
	r.Get("/events", h.HandleSSE)
	r.Get("/events/ws", h.HandleWebSocket)

	if s.cfg.MetricsEnabled {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed", "")
	})

	if s.cfg.StaticDirExists() {
		r.Handle("/*", http.FileServer(http.Dir(s.cfg.StaticDir)))
		return
	}
	s.logger.Debug().Str("static_dir", s.cfg.StaticDir).Msg("Static directory not found, static serving disabled")
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "not found", "")
	})
}
