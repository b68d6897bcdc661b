package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"epgdoctor/internal/batch"
	"epgdoctor/internal/schedule"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var hoursFlag int
	var groupsFlag []string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find channels whose assigned guide identity has no upcoming programs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
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

			hours := cfg.Scan.CheckHours
			if hoursFlag > 0 {
				hours = hoursFlag
			}
			groups := cfg.Scan.ChannelGroups
			if len(groupsFlag) > 0 {
				groups = groupsFlag
			}

			lineup, _, err := loadLineup(cmd.Context(), client, groups)
			if err != nil {
				return err
			}
			assigned := lineup[:0]
			for _, channel := range lineup {
				if channel.EPGDataID != 0 {
					assigned = append(assigned, channel)
				}
			}

			window := schedule.NewWindow(time.Now().UTC(), hours)
			result, err := runner.Scan(cmd.Context(), assigned, window, groups)
			if err != nil {
				return err
			}

			store, err := ctx.resultStore()
			if err != nil {
				return err
			}
			if err := store.Save(result); err != nil {
				return err
			}

			printScanResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().IntVar(&hoursFlag, "hours", 0, "Look-ahead window in hours (default from config)")
	cmd.Flags().StringSliceVar(&groupsFlag, "groups", nil, "Restrict the scan to these channel groups")
	return cmd
}

func printScanResult(cmd *cobra.Command, result batch.Result) {
	out := cmd.OutOrStdout()
	counts := result.Counts()

	fmt.Fprintf(out, "Scanned %d channels over the next %d hours\n", counts.Total, result.Window.Hours())
	fmt.Fprintf(out, "  ok: %d  missing: %d  inconclusive: %d\n\n", counts.OK, counts.Missing, counts.Inconclusive)

	problems := make([][]string, 0)
	for _, outcome := range result.Outcomes {
		if outcome.Status == batch.StatusOK {
			continue
		}
		problems = append(problems, []string{
			fmt.Sprintf("%d", outcome.Channel.ID),
			outcome.Channel.Name,
			valueOr(outcome.Channel.Group, "No Group"),
			valueOr(outcome.Channel.EPGSource, "No Source"),
			string(outcome.Status),
		})
	}
	if len(problems) == 0 {
		fmt.Fprintln(out, "Every assigned channel has upcoming program data")
		return
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"ID", "Channel", "Group", "EPG Source", "Status"}, problems, 1))
	fmt.Fprintf(out, "\nRun `epgdoctor heal` to search for replacement identities\n")
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
