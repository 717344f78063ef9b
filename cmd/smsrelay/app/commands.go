package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/smsrelay/cmd/smsrelay/cmd/report"
	"github.com/agentstation/smsrelay/cmd/smsrelay/cmd/serve"
	"github.com/agentstation/smsrelay/cmd/smsrelay/cmd/translate"
	"github.com/agentstation/smsrelay/cmd/smsrelay/cmd/version"
)

// CreateServeCommand creates the serve command with app dependencies.
func (a *App) CreateServeCommand() *cobra.Command {
	return serve.NewCommand(a)
}

// CreateReportCommand creates the report command with app dependencies.
func (a *App) CreateReportCommand() *cobra.Command {
	return report.NewCommand(a)
}

// CreateTranslateCommand creates the translate command with app dependencies.
func (a *App) CreateTranslateCommand() *cobra.Command {
	return translate.NewCommand(a)
}

// CreateVersionCommand creates the version command with app dependencies.
func (a *App) CreateVersionCommand() *cobra.Command {
	return version.NewCommand(a)
}
