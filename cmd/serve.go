package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/internal/controlplane"
	"github.com/kfalck/ghostfill-cli/internal/observability"
	"github.com/kfalck/ghostfill-cli/internal/session"
)

// newServeCmd creates and configures the `serve` command.
func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the HTTP control plane for driving sessions remotely",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlag("control_plane.listen_addr", cmd.Flags().Lookup("listen"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			manager, err := session.NewManager(cfg, logger)
			if err != nil {
				return err
			}
			defer manager.StopSession()

			addr := viper.GetString("control_plane.listen_addr")
			logger.Info("Starting control plane", zap.String("addr", addr))

			server := controlplane.NewServer(manager, logger)
			return server.ListenAndServe(ctx, addr)
		},
	}

	serveCmd.Flags().String("listen", "127.0.0.1:7642", "listen address (overrides control_plane.listen_addr)")
	return serveCmd
}

func init() {
	rootCmd.AddCommand(newServeCmd())
}
