package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"versionup/internal/logging"
	"versionup/internal/planstore"
	"versionup/internal/resolve"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var noSave bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find newer versions for every clip and save an update plan",
		Long: `Scan resolves every clip on the selected track to the newest version on
disk, checks that its frame range still fits the edit, and saves the result as
a plan. Nothing on the timeline changes until "versionup update" applies it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.loggerFor(cmd)
			if err != nil {
				return err
			}
			resolver, err := ctx.newResolver(logger)
			if err != nil {
				return err
			}
			plan, err := resolvePlan(cmd.Context(), ctx, resolver)
			if err != nil {
				return err
			}

			if !noSave {
				store, err := ctx.openPlanStore()
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Save(cmd.Context(), plan); err != nil {
					return err
				}
				prunePlans(cmd.Context(), store, logger, cfg.Plans.RetentionDays)
			}

			if jsonOutput {
				return writeJSON(cmd, plan)
			}
			out := cmd.OutOrStdout()
			renderPlan(out, plan, shouldColorize(out))
			pending := len(plan.Pending())
			switch {
			case noSave:
				fmt.Fprintln(out, "Plan not saved (--no-save)")
			case pending == 0:
				fmt.Fprintf(out, "Plan %s saved; nothing to update\n", shortID(plan.ID))
			default:
				fmt.Fprintf(out, "Plan %s saved; run `versionup update` to relink %d clip(s)\n", shortID(plan.ID), pending)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the plan as JSON")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Report only; do not store the plan")
	return cmd
}

// resolvePlan scans the configured timeline and stamps the plan with its path.
func resolvePlan(cmdCtx context.Context, ctx *commandContext, resolver *resolve.Resolver) (*resolve.Plan, error) {
	src, err := ctx.timelineSource()
	if err != nil {
		return nil, err
	}
	plan, err := resolver.ResolveAll(cmdCtx, src, ctx.track())
	if err != nil {
		return nil, fmt.Errorf("scan timeline: %w", err)
	}
	plan.Timeline = src.Path()
	return plan, nil
}

func prunePlans(ctx context.Context, store *planstore.Store, logger *slog.Logger, retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	removed, err := store.Prune(ctx, time.Now().AddDate(0, 0, -retentionDays))
	if err != nil {
		logging.WarnWithContext(logger, "plan pruning failed", "plan_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run `versionup doctor` to check the plan store"),
			logging.String(logging.FieldImpact, "old plans stay on disk"),
		)
		return
	}
	if removed > 0 {
		logger.Debug("pruned old plans", logging.Int64("removed", removed), logging.Int("retention_days", retentionDays))
	}
}
