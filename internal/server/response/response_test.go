package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/smsrelay/pkg/errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusCreated, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestBadRequest(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequest(w, "text and to are required")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"text and to are required"}`, w.Body.String())
}

func TestPassthrough(t *testing.T) {
	w := httptest.NewRecorder()
	Passthrough(w, http.StatusAccepted, "application/json; charset=utf-8", []byte(`{"data":{"id":"AC1"}}`))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `{"data":{"id":"AC1"}}`, w.Body.String())

	w = httptest.NewRecorder()
	Passthrough(w, http.StatusOK, "", []byte(`{}`))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestErrorFromType(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		w := httptest.NewRecorder()
		ErrorFromType(w, errors.NewValidationError("phoneNumberId", nil, "is required"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "phoneNumberId is required", decode(t, w).Error)
	})

	t.Run("wrapped validation", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := fmt.Errorf("list messages: %w", errors.NewValidationError("", nil, "bad query"))
		ErrorFromType(w, err)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad query", decode(t, w).Error)
	})

	t.Run("translation", func(t *testing.T) {
		w := httptest.NewRecorder()
		ErrorFromType(w, errors.NewTranslationError("deepl", errors.New("quota exceeded")))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"translation failed","provider":"deepl","detail":"quota exceeded"}`, w.Body.String())
	})

	t.Run("config", func(t *testing.T) {
		w := httptest.NewRecorder()
		ErrorFromType(w, errors.NewConfigError("openai", "OPENAI_API_KEY is not set", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, decode(t, w).Error, "OPENAI_API_KEY")
	})

	t.Run("upstream status passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		ErrorFromType(w, &errors.APIError{
			Provider:   "openphone",
			StatusCode: http.StatusUnauthorized,
			Body:       []byte(`{"message":"Invalid API key"}`),
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, `{"message":"Invalid API key"}`, w.Body.String())
	})

	t.Run("network failure", func(t *testing.T) {
		w := httptest.NewRecorder()
		ErrorFromType(w, &errors.APIError{Provider: "openphone", Message: "request failed", Err: errors.New("dial tcp: refused")})
		assert.Equal(t, http.StatusBadGateway, w.Code)
		body := decode(t, w)
		assert.Equal(t, "upstream request failed", body.Error)
		assert.Contains(t, body.Detail, "request failed")
	})

	t.Run("unknown", func(t *testing.T) {
		w := httptest.NewRecorder()
		ErrorFromType(w, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "boom", decode(t, w).Detail)
	})
}
