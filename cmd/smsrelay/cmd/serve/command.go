// Package serve provides the relay server command.
package serve

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/smsrelay/cmd/application"
	"github.com/agentstation/smsrelay/internal/config"
	"github.com/agentstation/smsrelay/internal/server"
)

// NewCommand creates the serve command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "core",
		Short:   "Start the relay HTTP server",
		Long: `Start the relay HTTP server.

Endpoints:
  GET  /healthz              liveness probe
  GET  /conversations        one-to-one conversations with last message
  GET  /messages             messages for one conversation
  POST /messages             send a message, translating it first
  POST /translate            translate text with the OpenAI back-end
  POST /webhooks/{provider}  inbound provider events
  GET  /events               Server-Sent Events stream
  GET  /events/ws            WebSocket stream
  GET  /metrics              Prometheus metrics

Flags override the environment and the config file.`,
		Example: `  # Start on the default port 3000
  smsrelay serve

  # Listen on all interfaces and restrict browser origins
  smsrelay serve --host 0.0.0.0 --allowed-origin https://app.example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, app)
		},
	}

	cmd.Flags().String("host", "", "Bind address (default all interfaces)")
	cmd.Flags().Int("port", config.DefaultPort, "Server port")
	cmd.Flags().String("static-dir", config.DefaultStaticDir, "Directory served at /")
	cmd.Flags().StringSlice("allowed-origin", nil, "Allowed browser origins (comma-separated, * for any)")
	cmd.Flags().Bool("metrics", true, "Expose /metrics")
	cmd.Flags().Duration("shutdown-timeout", server.DefaultConfig().ShutdownTimeout, "Grace period for in-flight requests on shutdown")

	return cmd
}

func runServer(cmd *cobra.Command, app application.Application) error {
	logger := app.Logger()

	cfg, err := app.Config()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	serverCfg := server.DefaultConfig()
	serverCfg.ShutdownTimeout = mustGetDuration(cmd, "shutdown-timeout")

	srv, err := server.New(cmd.Context(), cfg, logger, server.WithServerConfig(serverCfg))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	logger.Debug().
		Str("addr", cfg.Addr()).
		Bool("metrics", cfg.MetricsEnabled).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Parsed server configuration")

	return srv.Run(cmd.Context())
}

// applyFlags copies explicitly set flags onto cfg and revalidates it.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = mustGetString(cmd, "host")
	}
	if flags.Changed("port") {
		cfg.Port = mustGetInt(cmd, "port")
	}
	if flags.Changed("static-dir") {
		cfg.StaticDir = mustGetString(cmd, "static-dir")
	}
	if flags.Changed("allowed-origin") {
		origins, err := flags.GetStringSlice("allowed-origin")
		if err != nil {
			panic("programming error: failed to get flag allowed-origin: " + err.Error())
		}
		cfg.AllowedOrigins = origins
	}
	if flags.Changed("metrics") {
		cfg.MetricsEnabled = mustGetBool(cmd, "metrics")
	}
	return cfg.Validate()
}
