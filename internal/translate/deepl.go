package translate

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/agentstation/smsrelay/internal/transport"
)

// DeepL is the DeepL REST back-end. Requests are form encoded and language
// codes are sent uppercase.
type DeepL struct {
	client   *transport.Client
	endpoint string
}

// NewDeepL returns a DeepL back-end, or a fail-fast stand-in when apiKey is empty.
func NewDeepL(apiKey, endpoint string, opts ...transport.Option) Translator {
	if apiKey == "" {
		return &unconfigured{name: "deepl", setting: "DEEPL_API_KEY"}
	}
	return &DeepL{
		client:   transport.New("deepl", apiKey, &transport.HeaderAuth{Scheme: "DeepL-Auth-Key"}, opts...),
		endpoint: endpoint,
	}
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// Translate implements Translator.
func (d *DeepL) Translate(ctx context.Context, req Request) (string, error) {
	form := url.Values{}
	form.Set("text", req.Text)
	form.Set("target_lang", strings.ToUpper(canonical(req.TargetLang)))
	if !isAuto(req.SourceLang) {
		// DeepL accepts only the base language as a source.
		form.Set("source_lang", strings.ToUpper(baseCode(req.SourceLang)))
	}

	var resp deeplResponse
	if err := d.client.PostForm(ctx, d.endpoint, form, &resp); err != nil {
		return "", err
	}
	if len(resp.Translations) == 0 || resp.Translations[0].Text == "" {
		return "", fmt.Errorf("deepl: response contained no translations")
	}
	return resp.Translations[0].Text, nil
}

// Name implements Translator.
func (d *DeepL) Name() string { return "deepl" }

// Model implements Translator.
func (d *DeepL) Model() string { return "" }
