package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Ingest export files once and print their summaries",
	Long: `Ingest runs each file through the pipeline in argument order and prints
one line per file. Row errors are reported but do not fail the command; a file
that could not be read, parsed or stored makes the command exit non-zero after
the remaining files have been processed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, paths []string) error {
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

	out := cmd.OutOrStdout()
	var failures []error
	for _, path := range paths {
		summary, err := svc.IngestFile(ctx, path)
		if err != nil {
			a.log.Error("File failed", zap.String("path", path), zap.Error(err))
			fmt.Fprintf(out, "%s: failed: %v\n", path, err)
			failures = append(failures, fmt.Errorf("%s: %w", path, err))
			continue
		}
		if summary.Skipped {
			fmt.Fprintf(out, "%s: already ingested (%d rows)\n", path, summary.TotalRows)
			continue
		}
		fmt.Fprintf(out, "%s: %d rows, %d inserted, %d updated, %d errors\n",
			path, summary.TotalRows, summary.Inserted, summary.Updated, summary.Errored)
		for _, f := range summary.Errors {
			fmt.Fprintf(out, "  row %d: %s\n", f.Row, f.Message)
		}
		if summary.IsTruncated {
			fmt.Fprintf(out, "  ... %d more\n", summary.Errored-len(summary.Errors))
		}
	}
	return errors.Join(failures...)
}
