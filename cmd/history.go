package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kfalck/ghostfill-cli/internal/history"
	"github.com/kfalck/ghostfill-cli/internal/observability"
)

// newHistoryCmd creates and configures the `history` command. It reads the
// on-disk store directly so no API key or browser is needed.
func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <baseURL>",
		Short: "Lists recently visited URLs for a site, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			baseURL, err := history.BaseURL(args[0])
			if err != nil {
				return err
			}

			dataDir, err := cfg.DataDir()
			if err != nil {
				return err
			}
			store, err := history.NewStore(filepath.Join(dataDir, "history.json"), logger)
			if err != nil {
				return err
			}

			urls := store.Get(baseURL)
			if len(urls) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No history for %s\n", baseURL)
				return nil
			}
			for _, u := range urls {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newHistoryCmd())
}
