// Package application provides the application interface for smsrelay commands.
//
// Commands accept this interface rather than the concrete App type, which
// keeps them testable with a stub:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            phone, err := app.OpenPhone()
//	            if err != nil {
//	                return err
//	            }
//	            page, err := phone.ListConversations(cmd.Context(), openphone.ConversationsQuery{})
//	            // ... render page
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/smsrelay/internal/config"
	"github.com/agentstation/smsrelay/internal/openphone"
	"github.com/agentstation/smsrelay/internal/translate"
)

// Application provides what commands need from the running app.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Config returns the relay configuration, loading it on first use.
	Config() (*config.Config, error)

	// OpenPhone returns a provider client built from Config.
	OpenPhone() (*openphone.Client, error)

	// Translator returns a router over the configured translation back-end.
	Translator(ctx context.Context) (*translate.Router, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
