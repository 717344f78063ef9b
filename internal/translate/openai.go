package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentstation/smsrelay/internal/transport"
)

// OpenAI translates with a chat completion model.
type OpenAI struct {
	client  *transport.Client
	baseURL string
	model   string
}

// NewOpenAI returns an OpenAI back-end, or a fail-fast stand-in when apiKey is empty.
func NewOpenAI(apiKey, baseURL, model string, opts ...transport.Option) Translator {
	if apiKey == "" {
		return &unconfigured{name: "openai", model: model, setting: "OPENAI_API_KEY"}
	}
	return &OpenAI{
		client:  transport.New("openai", apiKey, &transport.BearerAuth{}, opts...),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Translate implements Translator. A response without completion text
// yields the original text rather than an error.
func (o *OpenAI) Translate(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction(req)},
			{Role: "user", Content: req.Text},
		},
		Temperature: 0.2,
	}

	var resp chatResponse
	if err := o.client.PostJSON(ctx, o.baseURL+"/chat/completions", body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return req.Text, nil
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return req.Text, nil
	}
	return text, nil
}

// Name implements Translator.
func (o *OpenAI) Name() string { return "openai" }

// Model implements Translator.
func (o *OpenAI) Model() string { return o.model }

// systemInstruction builds the LLM instruction shared by the chat back-ends.
func systemInstruction(req Request) string {
	var b strings.Builder
	b.WriteString("You are a professional translator. ")
	fmt.Fprintf(&b, "Translate the user's message into %s (%s)", displayName(req.TargetLang), canonical(req.TargetLang))
	if !isAuto(req.SourceLang) {
		fmt.Fprintf(&b, " from %s", displayName(req.SourceLang))
	}
	b.WriteString(". Preserve the original meaning and tone. ")
	b.WriteString("Do not translate anything inside fenced code blocks (```). ")
	b.WriteString("Return only the translated text with no explanations, notes or surrounding quotes.")
	if p := strings.TrimSpace(req.Prompt); p != "" {
		b.WriteString("\n\nAdditional instructions: ")
		b.WriteString(p)
	}
	return b.String()
}
