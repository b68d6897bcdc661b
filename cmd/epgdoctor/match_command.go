package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"epgdoctor/internal/schedule"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var allFlag bool
	var applyFlag bool

	cmd := &cobra.Command{
		Use:   "match [channel-name]",
		Short: "Suggest the best guide identity for a channel display name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if allFlag {
				return matchAll(cmd, ctx, applyFlag)
			}
			if len(args) == 0 {
				return errors.New("provide a channel name or use --all")
			}
			return matchOne(cmd, ctx, args[0])
		},
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "Match every channel in the lineup")
	cmd.Flags().BoolVar(&applyFlag, "apply", false, "With --all, write high-confidence matches back to Dispatcharr")
	return cmd
}

func matchOne(cmd *cobra.Command, ctx *commandContext, name string) error {
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

	_, pool, err := loadLineup(cmd.Context(), client, nil)
	if err != nil {
		return err
	}
	window := schedule.NewWindow(time.Now().UTC(), cfg.Scan.CheckHours)

	result, err := selector.FindBestMatch(cmd.Context(), name, pool, window)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !result.Matched() {
		fmt.Fprintf(out, "No candidate for %q both scored and has program data\n", name)
		return nil
	}
	fmt.Fprintf(out, "Best match for %q:\n", name)
	fmt.Fprintf(out, "  %s (id %d, source %s)\n", result.Candidate.Name, result.Candidate.ID, result.Candidate.Source)
	fmt.Fprintf(out, "  score %d via %s, program data confirmed\n", result.Score, result.Method())
	return nil
}

func matchAll(cmd *cobra.Command, ctx *commandContext, apply bool) error {
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

	lineup, pool, err := loadLineup(cmd.Context(), client, cfg.Scan.ChannelGroups)
	if err != nil {
		return err
	}
	window := schedule.NewWindow(time.Now().UTC(), cfg.Scan.CheckHours)

	result, err := runner.MatchAll(cmd.Context(), lineup, pool, window, apply)
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

	printSuggestions(cmd, result, apply)
	refreshAfterApply(cmd, client, result)
	return nil
}
