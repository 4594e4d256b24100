package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kfalck/ghostfill-cli/api/schemas"
	"github.com/kfalck/ghostfill-cli/internal/observability"
	"github.com/kfalck/ghostfill-cli/internal/session"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <url>",
		Short: "Opens a browser session with the form-filling UI on the given page",
		Long: `Run launches a browser, navigates to the given URL, and injects the
floating action button. The session stays open until interrupted, so the
page UI can be used to select elements, fill forms, and request hints.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			url := args[0]

			theme := schemas.Theme(viper.GetString("theme"))
			if !theme.Valid() {
				return fmt.Errorf("unknown theme %q, valid themes: %v", theme, schemas.Themes())
			}

			manager, err := session.NewManager(cfg, logger)
			if err != nil {
				return err
			}

			prompt := viper.GetString("prompt")
			ghostPrompt := viper.GetString("ghost-prompt")
			if err := manager.StartBrowserSession(ctx, url, theme, prompt, ghostPrompt); err != nil {
				return err
			}

			logger.Info("Session running, press Ctrl+C to stop",
				zap.String("url", url),
				zap.String("theme", string(theme)),
			)

			// Block until the signal-aware context is cancelled.
			<-ctx.Done()
			manager.StopSession()
			logger.Info("Session stopped")
			return nil
		},
	}

	runCmd.Flags().String("theme", string(schemas.ThemeGenericPersona), "persona theme for generated data")
	runCmd.Flags().String("prompt", "", "extra instructions for form filling")
	runCmd.Flags().String("ghost-prompt", "", "extra instructions for ghost-writer hints")
	runCmd.Flags().Bool("headless", false, "run the browser without a visible window")
	return runCmd
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}
