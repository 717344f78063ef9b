package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/agentstation/smsrelay/pkg/errors"
)

// maxErrorMessage bounds how much of an upstream body ends up in an error string.
const maxErrorMessage = 512

// DecodeResponse decodes a 2xx JSON response into target.
// Non-2xx responses become *errors.APIError with the raw body attached.
func DecodeResponse(provider string, resp *http.Response, target any) error {
	body, err := readBody(resp)
	if err != nil {
		return &errors.APIError{Provider: provider, StatusCode: resp.StatusCode, Message: "reading response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &errors.APIError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
			Endpoint:   endpointOf(resp),
			Body:       body,
		}
	}

	if target == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return &errors.APIError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("malformed JSON response: %v", err),
			Endpoint:   endpointOf(resp),
			Body:       body,
			Err:        err,
		}
	}
	return nil
}

func readBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// errorMessage pulls a human-readable message out of common error envelopes,
// falling back to the truncated body.
func errorMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		switch e := envelope.Error.(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if m, ok := e["message"].(string); ok && m != "" {
				return m
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage] + "..."
	}
	if msg == "" {
		msg = "empty response body"
	}
	return msg
}

func endpointOf(resp *http.Response) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return ""
}
