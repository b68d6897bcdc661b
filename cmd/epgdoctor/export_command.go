package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"epgdoctor/internal/report"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the last run's outcomes as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.resultStore()
			if err != nil {
				return err
			}
			result, err := store.Load()
			if err != nil {
				if errors.Is(err, report.ErrNoResults) {
					return errors.New("no results to export, run `epgdoctor scan` first")
				}
				return err
			}

			path, err := report.ExportCSV(result, cfg.ExportDir(), outFlag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d outcomes from the last %s run to %s\n",
				len(result.Outcomes), result.Kind, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "Destination file (default timestamped file under the data directory)")
	return cmd
}

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	var topFlag int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize the last run by EPG source and channel group",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.resultStore()
			if err != nil {
				return err
			}
			result, err := store.Load()
			if err != nil {
				if errors.Is(err, report.ErrNoResults) {
					return errors.New("no results to summarize, run `epgdoctor scan` first")
				}
				return err
			}

			summary := report.Summarize(result, topFlag)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Last %s run %s (%s)\n", result.Kind, result.RunID, result.StartedAt.Format("2006-01-02 15:04 MST"))
			fmt.Fprintf(out, "  total: %d  ok: %d  missing: %d  healed: %d  no match: %d  inconclusive: %d\n\n",
				summary.Counts.Total, summary.Counts.OK, summary.Counts.Missing,
				summary.Counts.Healed, summary.Counts.NoMatch, summary.Counts.Inconclusive)

			if len(summary.BySource) > 0 {
				fmt.Fprintln(out, "Problem channels by EPG source:")
				fmt.Fprintln(out, renderTable(out, []string{"Source", "Channels"}, countRows(summary.BySource), 2))
			}
			if len(summary.ByGroup) > 0 {
				fmt.Fprintln(out, "Problem channels by group:")
				fmt.Fprintln(out, renderTable(out, []string{"Group", "Channels"}, countRows(summary.ByGroup), 2))
			}
			if len(summary.BySource) == 0 && len(summary.ByGroup) == 0 {
				fmt.Fprintln(out, "No problem channels in the last run")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topFlag, "top", 10, "Show at most this many groups (0 for all)")
	return cmd
}

func countRows(counts []report.GroupCount) [][]string {
	rows := make([][]string, 0, len(counts))
	for _, count := range counts {
		rows = append(rows, []string{count.Name, fmt.Sprintf("%d", count.Count)})
	}
	return rows
}
