// Package translate routes translation requests to one of several
// interchangeable back-ends chosen once at startup.
//
// Back-ends implement Translator. The Router wraps the selected back-end
// with the failure policy: Translate never fails and returns the original
// text when anything goes wrong, TranslateStrict reports the failure.
package translate

import (
	"context"

	"github.com/agentstation/smsrelay/pkg/errors"
)

// Request is a single translation request.
type Request struct {
	Text       string `json:"text"`
	TargetLang string `json:"targetLang"`
	SourceLang string `json:"sourceLang,omitempty"`
	Prompt     string `json:"prompt,omitempty"`
}

// Empty reports whether the request has nothing to translate or no target,
// in which case the text is returned unchanged.
func (r Request) Empty() bool {
	return r.Text == "" || r.TargetLang == ""
}

// Translator is a translation back-end.
type Translator interface {
	// Translate returns the translated text.
	Translate(ctx context.Context, req Request) (string, error)
	// Name is the provider selector value, e.g. "deepl".
	Name() string
	// Model is the model or API variant in use; empty when not applicable.
	Model() string
}

// configurable is implemented by back-ends that can be missing credentials.
type configurable interface {
	Configured() bool
}

// IsConfigured reports whether t can attempt a call.
func IsConfigured(t Translator) bool {
	if c, ok := t.(configurable); ok {
		return c.Configured()
	}
	return true
}

// Identity returns text unchanged. It backs TRANSLATION_PROVIDER=none.
type Identity struct{}

// Translate implements Translator.
func (Identity) Translate(_ context.Context, req Request) (string, error) {
	return req.Text, nil
}

// Name implements Translator.
func (Identity) Name() string { return "none" }

// Model implements Translator.
func (Identity) Model() string { return "" }

// unconfigured stands in for a back-end whose credential is missing.
// Every call fails fast without touching the network.
type unconfigured struct {
	name    string
	model   string
	setting string
}

func (u *unconfigured) Translate(context.Context, Request) (string, error) {
	return "", errors.NewConfigError(u.name, u.setting+" is not set", nil)
}

func (u *unconfigured) Name() string     { return u.name }
func (u *unconfigured) Model() string    { return u.model }
func (u *unconfigured) Configured() bool { return false }
