package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentstation/smsrelay/internal/transport"
)

// LibreTranslate is the self-hosted LibreTranslate back-end.
type LibreTranslate struct {
	client  *transport.Client
	baseURL string
	apiKey  string
}

// NewLibreTranslate returns a LibreTranslate back-end. The API key is optional
// and travels in the request body, as LibreTranslate expects.
func NewLibreTranslate(baseURL, apiKey string, opts ...transport.Option) Translator {
	if baseURL == "" {
		return &unconfigured{name: "libretranslate", setting: "LIBRETRANSLATE_URL"}
	}
	return &LibreTranslate{
		client:  transport.New("libretranslate", "", nil, opts...),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate implements Translator.
func (l *LibreTranslate) Translate(ctx context.Context, req Request) (string, error) {
	source := "auto"
	if !isAuto(req.SourceLang) {
		source = baseCode(req.SourceLang)
	}

	body := libreRequest{
		Q:      req.Text,
		Source: source,
		Target: baseCode(req.TargetLang),
		Format: "text",
		APIKey: l.apiKey,
	}

	var resp libreResponse
	if err := l.client.PostJSON(ctx, l.baseURL+"/translate", body, &resp); err != nil {
		return "", err
	}
	if resp.TranslatedText == "" {
		return "", fmt.Errorf("libretranslate: response contained no translatedText")
	}
	return resp.TranslatedText, nil
}

// Name implements Translator.
func (l *LibreTranslate) Name() string { return "libretranslate" }

// Model implements Translator.
func (l *LibreTranslate) Model() string { return "" }
