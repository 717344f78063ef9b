package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/smsrelay/internal/config"
	"github.com/agentstation/smsrelay/internal/openphone"
	"github.com/agentstation/smsrelay/internal/translate"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    OpenPhoneFunc: func() (*openphone.Client, error) {
//	        return openphone.New(srv.URL, "key", nil), nil
//	    },
//	    OutputFormatFunc: func() string { return "json" },
//	}
//	cmd := report.NewCommand(mock)
//	// ... test command
type Mock struct {
	ConfigFunc       func() (*config.Config, error)
	OpenPhoneFunc    func() (*openphone.Client, error)
	TranslatorFunc   func(ctx context.Context) (*translate.Router, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Config returns the configuration from the mock function or an empty one.
func (m *Mock) Config() (*config.Config, error) {
	if m.ConfigFunc != nil {
		return m.ConfigFunc()
	}
	return &config.Config{}, nil
}

// OpenPhone returns a client using the mock function or nil.
func (m *Mock) OpenPhone() (*openphone.Client, error) {
	if m.OpenPhoneFunc != nil {
		return m.OpenPhoneFunc()
	}
	return nil, nil
}

// Translator returns a router using the mock function or an identity router.
func (m *Mock) Translator(ctx context.Context) (*translate.Router, error) {
	if m.TranslatorFunc != nil {
		return m.TranslatorFunc(ctx)
	}
	return translate.NewRouter(translate.Identity{}, m.Logger(), nil), nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
