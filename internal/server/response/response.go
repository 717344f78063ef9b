// Package response provides the HTTP response helpers shared by the relay's
// handlers. Success bodies are written as-is; failures use a flat
// {"error": "...", "detail": "..."} envelope.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/agentstation/smsrelay/pkg/errors"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error    string `json:"error"`
	Provider string `json:"provider,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// JSON writes v as JSON with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding errors are ignored as headers are already sent (best effort)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200 status.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Error writes an error envelope.
func Error(w http.ResponseWriter, status int, message, detail string) {
	JSON(w, status, ErrorBody{Error: message, Detail: detail})
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message, "")
}

// InternalError writes a 500 error response.
func InternalError(w http.ResponseWriter, message, detail string) {
	Error(w, http.StatusInternalServerError, message, detail)
}

// BadGateway writes a 502 error response for an unreachable upstream.
func BadGateway(w http.ResponseWriter, detail string) {
	Error(w, http.StatusBadGateway, "upstream request failed", detail)
}

// TranslationFailed writes the 500 response for a strict-mode translation failure.
func TranslationFailed(w http.ResponseWriter, provider, detail string) {
	JSON(w, http.StatusInternalServerError, ErrorBody{
		Error:    "translation failed",
		Provider: provider,
		Detail:   detail,
	})
}

// Passthrough writes an upstream response unchanged.
func Passthrough(w http.ResponseWriter, status int, contentType string, body []byte) {
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// ErrorFromType maps typed errors to appropriate HTTP responses.
func ErrorFromType(w http.ResponseWriter, err error) {
	var (
		validation  *errors.ValidationError
		translation *errors.TranslationError
		config      *errors.ConfigError
		api         *errors.APIError
	)

	switch {
	case errors.As(err, &validation):
		msg := validation.Message
		if validation.Field != "" {
			msg = validation.Field + " " + validation.Message
		}
		BadRequest(w, msg)
	case errors.As(err, &translation):
		TranslationFailed(w, translation.Provider, translation.Detail)
	case errors.As(err, &config):
		InternalError(w, config.Error(), "")
	case errors.As(err, &api):
		if api.StatusCode >= 300 && api.Body != nil {
			Passthrough(w, api.StatusCode, "application/json", api.Body)
			return
		}
		BadGateway(w, api.Error())
	case errors.IsNotFound(err):
		Error(w, http.StatusNotFound, err.Error(), "")
	default:
		InternalError(w, "internal server error", err.Error())
	}
}
