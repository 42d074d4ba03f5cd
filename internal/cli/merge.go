package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge shops duplicated by timestamp-prefixed uploads",
	Long: `Merge groups shops whose names differ only by an upload timestamp prefix
("2025-08-03T23-20-16-775Z_Acme" and "Acme"), moves their orders, customers,
files and processing logs onto one keeper and deletes the rest. Children that
already exist on the keeper are dropped. Running it again changes nothing.`,
	Args: cobra.NoArgs,
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, logToStderr)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	report, err := a.mergeService().MergeDuplicateSources(ctx)
	out := cmd.OutOrStdout()
	if report != nil {
		printMergeReport(out, report)
	}
	if err != nil {
		return err
	}

	shops, err := a.repos.Summaries.Summaries(ctx, 0)
	if err != nil {
		return fmt.Errorf("list shops: %w", err)
	}
	fmt.Fprintln(out)
	printShops(out, shops)
	return nil
}

func printMergeReport(w io.Writer, r *ingest.MergeReport) {
	if r.GroupsFound == 0 {
		fmt.Fprintln(w, "No duplicate shops found.")
		return
	}
	fmt.Fprintf(w, "Merged %d duplicate group(s), removed %d shop(s), renamed %d.\n",
		r.GroupsFound, r.SourcesRemoved, r.SourcesRenamed)
	fmt.Fprintf(w, "  orders:    %d moved, %d dropped\n", r.OrdersMoved, r.OrdersDeleted)
	fmt.Fprintf(w, "  customers: %d moved, %d dropped\n", r.CustomersMoved, r.CustomersDeleted)
	fmt.Fprintf(w, "  files:     %d moved, %d dropped\n", r.FilesMoved, r.FilesDeleted)
	fmt.Fprintf(w, "  logs:      %d moved\n", r.LogsMoved)
	for _, name := range r.Kept {
		fmt.Fprintf(w, "  kept %s\n", name)
	}
}

// printShops writes one row per shop; shops arrive sorted by name.
func printShops(w io.Writer, shops []ingest.SourceSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SHOP\tORDERS\tCUSTOMERS\tFILES")
	for _, s := range shops {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", s.Name, s.OrderCount, s.CustomerCount, s.FileCount)
	}
	_ = tw.Flush()
}
