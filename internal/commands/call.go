package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dotcommander/faultline/internal/app"
	"github.com/dotcommander/faultline/internal/client"
	"github.com/dotcommander/faultline/internal/journal"
	"github.com/dotcommander/faultline/internal/output"
	"github.com/dotcommander/faultline/internal/report"
	"github.com/dotcommander/faultline/pkg/cache"
)

// NewCallCmd creates the call command: perform a GET through the invocation
// wrapper and print the normalized outcome.
func NewCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <url>",
		Short: "GET a JSON endpoint through the error-normalizing wrapper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			retry, _ := cmd.Flags().GetBool("retry")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			useCache, _ := cmd.Flags().GetBool("cache")

			rep, closeJournal := openReporter()
			defer closeJournal()

			opts := []client.Option{client.WithReporter(rep)}
			if useCache {
				rt := app.EffectiveRuntime()
				opts = append(opts, client.WithCache(cache.New(rt.CacheCapacity, rt.CacheTTL)))
			}
			c := client.New("", opts...)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			call := client.NewGet[json.RawMessage](c, args[0])

			var (
				body json.RawMessage
				err  error
			)
			if retry {
				body, err = client.RetryCall(ctx, call)
			} else {
				body, err = call.Do(ctx)
			}
			if err != nil {
				// The failure is the command's output, not a CLI usage error.
				return output.PrintError(err)
			}
			return output.PrintSuccess(body)
		},
	}

	addCallFlags(cmd.Flags())
	return cmd
}

func addCallFlags(flags *pflag.FlagSet) {
	flags.Bool("retry", false, "Retry transient failures with exponential backoff")
	flags.Bool("cache", false, "Serve repeat GETs from the response cache")
	flags.Duration("timeout", 30*time.Second, "Overall request timeout")
}

// openReporter resolves the configured journal; when it cannot be opened the
// CLI degrades to structured stderr logging instead of failing the call.
func openReporter() (report.Reporter, func()) {
	path, err := app.GetJournalPath()
	if err == nil {
		if j, openErr := journal.Open(path); openErr == nil {
			return report.Multi(j, report.NewSlog(nil)), func() { _ = j.Close() }
		} else {
			slog.Warn("journal unavailable", "path", path, "error", openErr.Error())
		}
	}
	return report.NewSlog(nil), func() {}
}
