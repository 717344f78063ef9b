package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		wantOrigin string
		wantVary   bool
	}{
		{name: "wildcard", allowed: []string{"*"}, origin: "https://a.example", wantOrigin: "*"},
		{name: "empty list allows all", allowed: nil, origin: "https://a.example", wantOrigin: "*"},
		{name: "listed origin", allowed: []string{"https://a.example", "https://b.example"}, origin: "https://b.example", wantOrigin: "https://b.example", wantVary: true},
		{name: "unlisted origin", allowed: []string{"https://a.example"}, origin: "https://evil.example", wantOrigin: ""},
		{name: "no origin header", allowed: []string{"https://a.example"}, origin: "", wantOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowedOrigins = tt.allowed
			h := CORS(cfg)(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantVary, w.Header().Get("Vary") == "Origin")
			assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	h := CORS(DefaultCORSConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/messages", nil)
	req.Header.Set("Origin", "https://a.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, called)
	assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestIsOriginAllowed(t *testing.T) {
	assert.True(t, isOriginAllowed("https://a.example", []string{"https://a.example"}))
	assert.True(t, isOriginAllowed("https://a.example", []string{"*"}))
	assert.False(t, isOriginAllowed("https://a.example", []string{"https://b.example"}))
	assert.False(t, isOriginAllowed("https://a.example", nil))
}
