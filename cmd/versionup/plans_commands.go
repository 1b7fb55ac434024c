package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newPlansCommand(ctx *commandContext) *cobra.Command {
	plansCmd := &cobra.Command{
		Use:   "plans",
		Short: "Inspect and prune saved plans",
	}
	plansCmd.AddCommand(newPlansListCommand(ctx))
	plansCmd.AddCommand(newPlansShowCommand(ctx))
	plansCmd.AddCommand(newPlansPruneCommand(ctx))
	return plansCmd
}

func newPlansListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved plans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openPlanStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, records)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No plans saved")
				return nil
			}
			renderPlanRecords(out, records)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum plans to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newPlansShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a saved plan (default: latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openPlanStore()
			if err != nil {
				return err
			}
			defer store.Close()

			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			entry, err := loadPlan(cmd, store, id)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, entry)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Plan "+entry.ID, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "Created:  %s\n", formatTime(entry.CreatedAt))
			fmt.Fprintf(out, "Timeline: %s\n", baseOrDash(entry.Timeline))
			fmt.Fprintf(out, "Track:    %s\n", entry.Track)
			fmt.Fprintf(out, "Applied:  %s\n", yesNo(entry.Applied()))
			fmt.Fprintln(out)
			renderPlan(out, entry.Plan, colorize)
			if entry.Summary != nil {
				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Last apply "+formatTime(*entry.AppliedAt), colorize) {
					fmt.Fprintln(out, line)
				}
				renderApplySummary(out, *entry.Summary, colorize)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newPlansPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete plans older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			days := cfg.Plans.RetentionDays
			if cmd.Flags().Changed("older-than") {
				days = olderThan
			}
			if days < 0 {
				return fmt.Errorf("--older-than must not be negative, got %d", days)
			}

			store, err := ctx.openPlanStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().AddDate(0, 0, -days))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d plan(s) older than %d day(s)\n", removed, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&olderThan, "older-than", 0, "Age in days (default: plans.retention_days)")
	return cmd
}
