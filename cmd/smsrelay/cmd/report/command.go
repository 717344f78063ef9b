// Package report provides read-only provider queries for the terminal.
package report

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/smsrelay/cmd/application"
)

// NewCommand creates the report command and its subcommands.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		GroupID: "core",
		Short:   "Query conversations and messages from the provider",
		Long: `Report runs the same provider queries the relay serves over HTTP and
prints the result as a table, JSON or YAML.

Requires OPENPHONE_API_KEY.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newConversationsCommand(app))
	cmd.AddCommand(newMessagesCommand(app))

	return cmd
}
