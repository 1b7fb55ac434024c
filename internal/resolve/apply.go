package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"versionup/internal/logging"
	"versionup/internal/timeline"
)

// ApplyStatus is the commit-phase result for one clip.
type ApplyStatus string

const (
	ApplyApplied ApplyStatus = "applied"
	ApplySkipped ApplyStatus = "skipped"
	ApplyFailed  ApplyStatus = "failed"
)

// ApplyResult records what happened to one clip during ApplyAll.
type ApplyResult struct {
	ClipID   string      `json:"clip_id"`
	ClipName string      `json:"clip_name,omitempty"`
	OldPath  string      `json:"old_path"`
	NewPath  string      `json:"new_path,omitempty"`
	Status   ApplyStatus `json:"status"`
	Detail   string      `json:"detail,omitempty"`
}

// ApplySummary collects the per-clip results of ApplyAll in plan order.
type ApplySummary struct {
	PlanID  string        `json:"plan_id"`
	Results []ApplyResult `json:"results"`
	Applied int           `json:"applied"`
	Skipped int           `json:"skipped"`
	Failed  int           `json:"failed"`
}

func (s *ApplySummary) add(res ApplyResult) {
	s.Results = append(s.Results, res)
	switch res.Status {
	case ApplyApplied:
		s.Applied++
	case ApplySkipped:
		s.Skipped++
	case ApplyFailed:
		s.Failed++
	}
}

// ErrStalePlan marks a clip that changed on the timeline after the plan was
// resolved.
var ErrStalePlan = errors.New("clip changed since the plan was resolved")

// ApplyAll relinks every update_available clip in plan, one at a time. Other
// outcomes are reported as skipped. A failure on one clip does not stop the
// rest. The returned error is non-nil only when ctx is done.
func (r *Resolver) ApplyAll(ctx context.Context, src timeline.Source, plan *Plan) (ApplySummary, error) {
	summary := ApplySummary{}
	if plan == nil {
		return summary, errors.New("apply: plan is nil")
	}
	if src == nil {
		return summary, errors.New("apply: timeline source is nil")
	}
	summary.PlanID = plan.ID
	ctx = logging.ContextWithPlanID(ctx, plan.ID)

	for _, report := range plan.Clips {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		res := ApplyResult{
			ClipID:   report.Clip.ID,
			ClipName: report.Clip.Name,
			OldPath:  report.Clip.SourcePath,
		}
		if report.Outcome != OutcomeUpdateAvailable || !report.Instruction.Applicable() {
			res.Status = ApplySkipped
			res.Detail = string(report.Outcome)
			summary.add(res)
			continue
		}
		res.NewPath = report.Instruction.NewPath

		logger := logging.WithContext(logging.ContextWithClipID(ctx, report.Clip.ID), r.logger)
		status, err := r.applyOne(ctx, src, report)
		res.Status = status
		if err != nil {
			res.Detail = err.Error()
			if ctxErr := ctx.Err(); ctxErr != nil {
				summary.add(res)
				return summary, ctxErr
			}
		}
		summary.add(res)
		r.logApply(logger, res, err)
	}

	r.logger.Info("apply complete",
		logging.String(logging.FieldEventType, "apply_complete"),
		logging.String(logging.FieldPlanID, plan.ID),
		logging.Int("applied", summary.Applied),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (r *Resolver) applyOne(ctx context.Context, src timeline.Source, report ClipReport) (ApplyStatus, error) {
	inst := report.Instruction
	current, err := src.GetClip(ctx, report.Clip.ID)
	if err != nil {
		return ApplyFailed, fmt.Errorf("read clip: %w", err)
	}
	if current.SourcePath == inst.NewPath {
		return ApplySkipped, errors.New("already on the planned version")
	}
	if current.SourcePath != inst.OldPath || current.UsedRange() != report.Clip.UsedRange() {
		return ApplyFailed, fmt.Errorf("%w: now %s frames %s", ErrStalePlan, current.SourcePath, current.UsedRange())
	}

	if err := src.ApplySwap(ctx, inst.Swap()); err != nil {
		return ApplyFailed, fmt.Errorf("apply swap: %w", err)
	}

	after, err := src.GetClip(ctx, report.Clip.ID)
	if err != nil {
		return ApplyFailed, fmt.Errorf("verify clip: %w", err)
	}
	if after.SourcePath != inst.NewPath {
		return ApplyFailed, fmt.Errorf("verify clip: source is %s after relink, expected %s", after.SourcePath, inst.NewPath)
	}
	return ApplyApplied, nil
}

func (r *Resolver) logApply(logger *slog.Logger, res ApplyResult, err error) {
	switch res.Status {
	case ApplyApplied:
		logger.Info("clip relinked",
			logging.String(logging.FieldEventType, "clip_relinked"),
			logging.String("old_path", res.OldPath),
			logging.String("new_path", res.NewPath),
		)
	case ApplySkipped:
		logger.Debug("clip skipped", logging.String("detail", res.Detail))
	case ApplyFailed:
		hint := "re-run scan and try again"
		if !errors.Is(err, ErrStalePlan) {
			hint = "check the timeline file is writable"
		}
		logging.WarnWithContext(logger, "clip relink failed", "clip_relink_failed",
			logging.String("new_path", res.NewPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "clip stays on its current version"),
		)
	}
}
