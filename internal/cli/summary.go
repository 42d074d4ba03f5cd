package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print per-shop counts and recent files as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, logToStderr)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		svc, err := a.ingestService(ctx)
		if err != nil {
			return err
		}
		summaries, err := svc.GetSummaries(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	},
}
