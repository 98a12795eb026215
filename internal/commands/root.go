package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/faultline/internal/app"
	"github.com/dotcommander/faultline/internal/output"
)

// Execute runs the CLI application.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	root := &cobra.Command{
		Use:           "faultline",
		Short:         "Client-side error resilience toolkit (classify, call, journal)",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return output.PrintSuccess(resp{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureConfigDir(); err != nil {
				return err
			}

			// Wire --journal-path into app-level resolver.
			if journalPath, err := cmd.Flags().GetString("journal-path"); err == nil && journalPath != "" {
				app.SetJournalPathOverride(journalPath)
			}

			return nil
		},
	}

	root.PersistentFlags().String("journal-path", "", "Override error journal path (default: $FAULTLINE_JOURNAL_PATH)")
	root.Flags().BoolP("version", "v", false, "version for faultline")

	root.AddCommand(NewCallCmd())
	root.AddCommand(NewClassifyCmd())
	root.AddCommand(NewJournalCmd())

	err := root.Execute()
	if err != nil {
		slog.Error("command failed", "error", err.Error())
	}
	return err
}
