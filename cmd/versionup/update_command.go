package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"versionup/internal/logging"
	"versionup/internal/planstore"
	"versionup/internal/resolve"
	"versionup/internal/timeline"
)

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var planID string
	var rescan bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Apply a saved plan to the timeline",
		Long: `Update relinks every clip the plan marked update_available. By default the
most recent plan is used; --plan selects another by ID or ID prefix, and
--rescan resolves the timeline again first. Clips edited since the plan was
made are reported as failed and left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if rescan && strings.TrimSpace(planID) != "" {
				return errors.New("--plan and --rescan cannot be combined")
			}
			logger, err := ctx.loggerFor(cmd)
			if err != nil {
				return err
			}

			lock, err := planstore.AcquireApplyLock(cfg.Paths.StateDir)
			if err != nil {
				if errors.Is(err, planstore.ErrApplyInProgress) {
					return fmt.Errorf("%w: wait for the other update to finish", err)
				}
				return err
			}
			defer lock.Release()

			store, err := ctx.openPlanStore()
			if err != nil {
				return err
			}
			defer store.Close()

			resolver, err := ctx.newResolver(logger)
			if err != nil {
				return err
			}

			var plan *resolve.Plan
			out := cmd.OutOrStdout()
			if rescan {
				plan, err = resolvePlan(cmd.Context(), ctx, resolver)
				if err != nil {
					return err
				}
				if err := store.Save(cmd.Context(), plan); err != nil {
					return err
				}
			} else {
				entry, err := loadPlan(cmd, store, planID)
				if err != nil {
					return err
				}
				if entry.Applied() && !jsonOutput {
					fmt.Fprintf(out, "Plan %s was already applied on %s; clips already relinked will be skipped\n",
						shortID(entry.ID), formatTime(*entry.AppliedAt))
				}
				plan = entry.Plan
			}

			src, err := planSource(ctx, cfg.Timeline.Path, plan)
			if err != nil {
				return err
			}

			summary, err := resolver.ApplyAll(cmd.Context(), src, plan)
			if err != nil {
				return fmt.Errorf("apply plan %s: %w", shortID(plan.ID), err)
			}
			if err := store.MarkApplied(cmd.Context(), plan.ID, summary); err != nil {
				logging.WarnWithContext(logger, "record apply failed", "plan_record_failed",
					logging.String(logging.FieldPlanID, plan.ID),
					logging.Error(err),
					logging.String(logging.FieldImpact, "plan history does not show this update"),
				)
			}

			if jsonOutput {
				if err := writeJSON(cmd, summary); err != nil {
					return err
				}
			} else {
				renderApplySummary(out, summary, shouldColorize(out))
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d clip(s) could not be relinked", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planID, "plan", "", "Plan ID or prefix to apply (default: latest)")
	cmd.Flags().BoolVar(&rescan, "rescan", false, "Scan the timeline again and apply the fresh plan")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the apply summary as JSON")
	return cmd
}

func loadPlan(cmd *cobra.Command, store *planstore.Store, id string) (*planstore.Entry, error) {
	id = strings.TrimSpace(id)
	var (
		entry *planstore.Entry
		err   error
	)
	if id == "" || id == "latest" {
		entry, err = store.Latest(cmd.Context())
	} else {
		entry, err = store.Get(cmd.Context(), id)
	}
	if errors.Is(err, planstore.ErrNotFound) && (id == "" || id == "latest") {
		return nil, errors.New("no plans found; run `versionup scan` first")
	}
	return entry, err
}

// planSource opens the timeline the plan was resolved against. A configured
// timeline (flag, environment or config file) that differs from the plan's is
// an error.
func planSource(ctx *commandContext, configured string, plan *resolve.Plan) (*timeline.FileSource, error) {
	if plan.Timeline == "" {
		return ctx.timelineSource()
	}
	if configured != "" && filepath.Clean(configured) != filepath.Clean(plan.Timeline) {
		return nil, fmt.Errorf("plan %s was made for %s, not %s", shortID(plan.ID), plan.Timeline, configured)
	}
	return timeline.NewFileSource(plan.Timeline), nil
}
