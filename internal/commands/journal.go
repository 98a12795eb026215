package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/faultline/internal/app"
	"github.com/dotcommander/faultline/internal/journal"
	"github.com/dotcommander/faultline/internal/output"
)

// NewJournalCmd creates the journal command group for inspecting and pruning
// the recorded error log.
func NewJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the local error journal",
	}
	cmd.AddCommand(newJournalListCmd())
	cmd.AddCommand(newJournalPruneCmd())
	return cmd
}

func newJournalListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded errors, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			j, err := openJournal()
			if err != nil {
				return err
			}
			defer func() { _ = j.Close() }()

			records, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			type resp struct {
				Count   int              `json:"count"`
				Records []journal.Record `json:"records"`
			}
			return output.PrintSuccess(resp{Count: len(records), Records: records})
		},
	}
	cmd.Flags().Int("limit", 50, "Maximum records to return")
	return cmd
}

func newJournalPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal entries older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			retention, _ := cmd.Flags().GetDuration("retention")

			j, err := openJournal()
			if err != nil {
				return err
			}
			defer func() { _ = j.Close() }()

			removed, err := j.Prune(cmd.Context(), retention)
			if err != nil {
				return err
			}

			type resp struct {
				Removed int64 `json:"removed"`
			}
			return output.PrintSuccess(resp{Removed: removed})
		},
	}
	cmd.Flags().Duration("retention", 30*24*time.Hour, "Keep entries newer than this")
	return cmd
}

func openJournal() (*journal.Journal, error) {
	path, err := app.GetJournalPath()
	if err != nil {
		return nil, err
	}
	return journal.Open(path)
}
