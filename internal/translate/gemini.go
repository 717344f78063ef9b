package translate

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// generateFunc matches genai's Models.GenerateContent.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini translates with a Gemini model through the GenAI SDK.
type Gemini struct {
	generate generateFunc
	model    string
}

// NewGemini returns a Gemini back-end, or a fail-fast stand-in when apiKey is empty.
// httpClient may be nil.
func NewGemini(ctx context.Context, apiKey, model string, httpClient *http.Client) (Translator, error) {
	if apiKey == "" {
		return &unconfigured{name: "gemini", model: model, setting: "GEMINI_API_KEY"}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:    genai.BackendGeminiAPI,
		APIKey:     apiKey,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, err
	}
	return &Gemini{generate: client.Models.GenerateContent, model: model}, nil
}

// Translate implements Translator. An empty candidate yields the original text.
func (g *Gemini) Translate(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction(req), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
	}

	resp, err := g.generate(ctx, g.model, genai.Text(req.Text), config)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return req.Text, nil
	}
	return text, nil
}

// Name implements Translator.
func (g *Gemini) Name() string { return "gemini" }

// Model implements Translator.
func (g *Gemini) Model() string { return g.model }
