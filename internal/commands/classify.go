package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dotcommander/faultline/internal/apperr"
	"github.com/dotcommander/faultline/internal/output"
)

// NewClassifyCmd creates the classify command: run the error classifier on a
// synthetic failure described by flags. Useful for checking what a given
// backend response will look like to end users.
func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Show the normalized error for a status code, body, or transport failure",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetInt("status")
			body, _ := cmd.Flags().GetString("body")
			transport, _ := cmd.Flags().GetBool("transport")
			endpoint, _ := cmd.Flags().GetString("endpoint")

			var norm *apperr.Error
			switch {
			case transport:
				norm = apperr.ClassifyTransport(errors.New("simulated connectivity failure"))
			case status > 0:
				norm = apperr.ClassifyResponse(status, []byte(body))
			default:
				return errors.New("pass --status or --transport")
			}

			return output.PrintSuccess(norm.WithEndpoint(endpoint))
		},
	}

	cmd.Flags().Int("status", 0, "HTTP status code to classify")
	cmd.Flags().String("body", "", "Response body (JSON, may carry message/fields)")
	cmd.Flags().Bool("transport", false, "Classify a connectivity failure instead of a response")
	cmd.Flags().String("endpoint", "", "Endpoint identifier to attach")
	return cmd
}
