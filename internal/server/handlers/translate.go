package handlers

import (
	"net/http"

	"github.com/agentstation/smsrelay/internal/server/response"
	"github.com/agentstation/smsrelay/internal/translate"
)

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"targetLang"`
	SourceLang string `json:"sourceLang,omitempty"`
	Prompt     string `json:"prompt,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
}

// HandleTranslate handles POST /translate through the LLM back-end.
// A failed call returns the original text, as everywhere outside strict mode.
func (h *Handlers) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if req.Text == "" || req.TargetLang == "" {
		response.BadRequest(w, "text and targetLang are required")
		return
	}
	if !h.llm.Configured() {
		response.InternalError(w, "OPENAI_API_KEY is not configured", "")
		return
	}

	out := h.llm.Translate(r.Context(), translate.Request{
		Text:       req.Text,
		TargetLang: req.TargetLang,
		SourceLang: req.SourceLang,
		Prompt:     req.Prompt,
	})

	response.OK(w, translateResponse{
		TranslatedText: out,
		Provider:       h.llm.Provider(),
		Model:          h.llm.Model(),
	})
}
