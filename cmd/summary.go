package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/teamdates/internal/availability"
)

func newSummaryCmd() *cobra.Command {
	var (
		bestOnly bool
		from     string
		to       string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show how many people picked each date",
		Long: `Show every picked date with the number of people available on it, most
popular first. The best dates are marked with *.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCLIStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.SummaryRange(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			best := availability.BestDates(entries)
			if bestOnly {
				entries = best
			}

			if asJSON {
				return printJSON(cmd, entries)
			}
			return writeSummary(cmd.OutOrStdout(), entries, best)
		},
	}

	cmd.Flags().BoolVar(&bestOnly, "best", false, "Only show the dates picked by the most people")
	cmd.Flags().StringVar(&from, "from", "", "Earliest date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date to include (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

func writeSummary(w io.Writer, entries, best []availability.SummaryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No dates have been picked yet")
		return err
	}

	isBest := make(map[string]bool, len(best))
	for _, e := range best {
		isBest[e.Date] = true
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tDATE\tCOUNT\tUSERS")
	for _, e := range entries {
		mark := ""
		if isBest[e.Date] {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", mark, e.Date, e.Count, strings.Join(e.Users, ", "))
	}
	return tw.Flush()
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
