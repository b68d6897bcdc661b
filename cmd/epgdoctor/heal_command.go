package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"epgdoctor/internal/batch"
	"epgdoctor/internal/report"
	"epgdoctor/internal/schedule"
	"epgdoctor/internal/services/dispatcharr"
)

func newHealCommand(ctx *commandContext) *cobra.Command {
	var applyFlag bool

	cmd := &cobra.Command{
		Use:   "heal",
		Short: "Find replacement identities for the broken channels from the last scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.resultStore()
			if err != nil {
				return err
			}
			last, err := store.Load()
			if err != nil {
				if errors.Is(err, report.ErrNoResults) {
					return errors.New("no scan results found, run `epgdoctor scan` first")
				}
				return err
			}
			if last.Kind != "scan" {
				return fmt.Errorf("last run was %q, run `epgdoctor scan` first", last.Kind)
			}
			broken := last.Broken()
			if len(broken) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Last scan found no broken channels, nothing to heal")
				return nil
			}

			client, err := ctx.dialDispatcharr()
			if err != nil {
				return err
			}
			validator, err := ctx.newValidator(client)
			if err != nil {
				return err
			}
			selector, err := ctx.newSelector(validator)
			if err != nil {
				return err
			}
			runner, err := ctx.newRunner(client, validator, selector)
			if err != nil {
				return err
			}

			channels := make([]batch.Channel, 0, len(broken))
			for _, outcome := range broken {
				channels = append(channels, outcome.Channel)
			}
			_, pool, err := loadLineup(cmd.Context(), client, nil)
			if err != nil {
				return err
			}

			// Re-anchor the scan's look-ahead at the current time; the
			// persisted window may have partially elapsed.
			window := schedule.NewWindow(time.Now().UTC(), last.Window.Hours())
			result, err := runner.Heal(cmd.Context(), channels, pool, window, applyFlag)
			if err != nil {
				return err
			}
			if err := store.Save(result); err != nil {
				return err
			}

			printSuggestions(cmd, result, applyFlag)
			refreshAfterApply(cmd, client, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&applyFlag, "apply", false, "Write high-confidence replacements back to Dispatcharr")
	return cmd
}

// refreshAfterApply triggers a guide re-import once a run has written
// assignments, so the fresh identities pick up program data right away. A
// refresh failure does not undo the run; it is reported and left to the
// instance's next scheduled import.
func refreshAfterApply(cmd *cobra.Command, client *dispatcharr.Client, result batch.Result) {
	if result.Counts().Applied == 0 {
		return
	}
	if err := client.RefreshGuide(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "guide refresh failed: %v\n", err)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Triggered guide refresh")
}

func printSuggestions(cmd *cobra.Command, result batch.Result, applied bool) {
	out := cmd.OutOrStdout()
	counts := result.Counts()

	rows := make([][]string, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		row := []string{
			fmt.Sprintf("%d", outcome.Channel.ID),
			outcome.Channel.Name,
			string(outcome.Status),
			"", "", "",
		}
		if outcome.Match != nil && outcome.Match.Candidate != nil {
			row[3] = outcome.Match.Candidate.Name
			row[4] = fmt.Sprintf("%d", outcome.Match.Score)
			row[5] = outcome.Match.Method()
		}
		if outcome.Applied {
			row[2] += " (applied)"
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"ID", "Channel", "Status", "Suggestion", "Score", "Method"}, rows, 1, 5))

	fmt.Fprintf(out, "\nhealed: %d  matched: %d  no match: %d  inconclusive: %d\n",
		counts.Healed, counts.Matched, counts.NoMatch, counts.Inconclusive)
	if applied {
		fmt.Fprintf(out, "applied: %d\n", counts.Applied)
	}
}
