package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"versionup/internal/compat"
	"versionup/internal/logging"
	"versionup/internal/shot"
	"versionup/internal/swap"
	"versionup/internal/timeline"
	"versionup/internal/versions"
)

// DefaultWorkers bounds concurrent clip scans when Options.Workers is unset.
const DefaultWorkers = 4

// Options configures a Resolver.
type Options struct {
	Grammar              *shot.Grammar
	Scanner              *versions.Scanner
	Compat               compat.Options
	FallbackToCompatible bool
	Workers              int
	Logger               *slog.Logger
}

// Resolver resolves clips to their newest usable version.
type Resolver struct {
	grammar  *shot.Grammar
	scanner  *versions.Scanner
	compat   compat.Options
	fallback bool
	workers  int
	logger   *slog.Logger
	now      func() time.Time
}

// New constructs a Resolver.
func New(opts Options) *Resolver {
	grammar := opts.Grammar
	if grammar == nil {
		grammar = shot.DefaultGrammar()
	}
	scanner := opts.Scanner
	if scanner == nil {
		scanner = versions.NewScanner(nil, versions.Options{Grammar: grammar, Logger: opts.Logger})
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Resolver{
		grammar:  grammar,
		scanner:  scanner,
		compat:   opts.Compat,
		fallback: opts.FallbackToCompatible,
		workers:  workers,
		logger:   logging.NewComponentLogger(opts.Logger, "resolver"),
		now:      time.Now,
	}
}

// ResolveAll lists the clips on track and resolves each one. Failing to list
// the timeline is the only fatal error besides cancellation.
func (r *Resolver) ResolveAll(ctx context.Context, src timeline.Source, track string) (*Plan, error) {
	if src == nil {
		return nil, errors.New("resolve: timeline source is nil")
	}
	if track == "" {
		track = timeline.AllTracks
	}
	clips, err := src.ListClips(ctx, track)
	if err != nil {
		return nil, fmt.Errorf("list clips on track %q: %w", track, err)
	}

	plan := &Plan{
		ID:        uuid.NewString(),
		CreatedAt: r.now().UTC(),
		Track:     track,
	}
	ctx = logging.ContextWithPlanID(ctx, plan.ID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("resolving clips",
		logging.String(logging.FieldEventType, "resolve_start"),
		logging.String(logging.FieldTrack, track),
		logging.Int("clips", len(clips)),
	)

	started := r.now()
	reports, err := r.ResolveClips(ctx, clips)
	if err != nil {
		return nil, err
	}
	plan.Clips = reports

	counts := plan.Counts()
	logger.Info("resolution complete",
		logging.String(logging.FieldEventType, "resolve_complete"),
		logging.Int("update_available", counts.UpdateAvailable),
		logging.Int("no_newer_version", counts.NoNewerVersion),
		logging.Int("incompatible", counts.Incompatible),
		logging.Int("unscannable", counts.Unscannable),
		logging.Duration("elapsed", r.now().Sub(started)),
	)
	return plan, nil
}

// ResolveClips resolves clips on a bounded worker group. Reports keep the
// input order.
func (r *Resolver) ResolveClips(ctx context.Context, clips []timeline.Clip) ([]ClipReport, error) {
	reports := make([]ClipReport, len(clips))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, clip := range clips {
		g.Go(func() error {
			report, err := r.ResolveClip(gctx, clip)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// ResolveClip parses, scans, selects and checks a single clip. The returned
// error is non-nil only when ctx is done.
func (r *Resolver) ResolveClip(ctx context.Context, clip timeline.Clip) (ClipReport, error) {
	if err := ctx.Err(); err != nil {
		return ClipReport{}, err
	}
	ctx = logging.ContextWithClipID(ctx, clip.ID)
	logger := logging.WithContext(ctx, r.logger)
	report := ClipReport{Clip: clip}

	ref, err := r.grammar.Parse(clip.SourcePath)
	if err != nil {
		return r.unscannable(logger, report, err), nil
	}
	report.ShotKey = ref.ShotKey
	report.CurrentVersion = ref.Version

	cands, err := r.scanner.Scan(ctx, ref.ShotKey, filepath.Dir(clip.SourcePath))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ClipReport{}, ctxErr
		}
		return r.unscannable(logger, report, err), nil
	}

	if highest, ok := versions.Highest(cands); ok {
		report.HighestVersion = highest.Version()
	}
	accept := func(c versions.Candidate) bool {
		return compat.Check(clip, c, r.compat).Compatible
	}
	for _, c := range versions.Newer(cands, ref.Version) {
		if accept(c) {
			report.UsableVersion = c.Version()
			break
		}
	}

	selected, ok := versions.Select(cands, ref.Version, versions.Policy{
		FallbackToCompatible: r.fallback,
		Accept:               accept,
	})
	if !ok {
		report.Instruction = swap.Plan(clip, ref.Version, nil, compat.Result{})
		report.Outcome = OutcomeNoNewerVersion
		logger.Debug("no newer version", logging.Args(append(
			logging.DecisionAttrs("version_select", string(OutcomeNoNewerVersion), "nothing above current version"),
			logging.String(logging.FieldShotKey, ref.ShotKey),
			logging.Int("current_version", ref.Version),
		)...)...)
		return report, nil
	}

	res := compat.Check(clip, selected, r.compat)
	report.Instruction = swap.Plan(clip, ref.Version, &selected, res)
	if report.Instruction.Applicable() {
		report.Outcome = OutcomeUpdateAvailable
		logger.Debug("newer version available", logging.Args(append(
			logging.DecisionAttrs("version_select", string(OutcomeUpdateAvailable), "frame range compatible"),
			logging.String(logging.FieldShotKey, ref.ShotKey),
			logging.Int("current_version", ref.Version),
			logging.Int("new_version", selected.Version()),
			logging.Int("frame_offset", res.FrameOffset),
		)...)...)
		return report, nil
	}
	report.Outcome = OutcomeIncompatible
	logger.Info("newer version incompatible",
		logging.String(logging.FieldEventType, "version_incompatible"),
		logging.String(logging.FieldShotKey, ref.ShotKey),
		logging.Int("new_version", selected.Version()),
		logging.String(logging.FieldDecisionType, "version_select"),
		logging.String("decision_result", string(OutcomeIncompatible)),
		logging.String("decision_reason", string(report.Instruction.Reason)),
		logging.String("detail", report.Instruction.Detail),
	)
	return report, nil
}

func (r *Resolver) unscannable(logger *slog.Logger, report ClipReport, err error) ClipReport {
	report.Outcome = OutcomeUnscannable
	report.Error = err.Error()
	report.Instruction = swap.Instruction{
		ClipID:         report.Clip.ID,
		ClipName:       report.Clip.Name,
		OldPath:        report.Clip.SourcePath,
		CurrentVersion: report.CurrentVersion,
		Status:         swap.StatusIncompatible,
		Detail:         report.Error,
	}

	var parseErr *shot.ParseError
	var scanErr *versions.ScanError
	switch {
	case errors.As(err, &parseErr):
		report.ErrorKind = string(parseErr.Kind)
	case errors.As(err, &scanErr):
		report.ErrorKind = string(scanErr.Kind)
	default:
		report.ErrorKind = "unknown"
	}

	logging.WarnWithContext(logger, "clip could not be scanned", "clip_unscannable",
		logging.String("source_path", report.Clip.SourcePath),
		logging.String("error_kind", report.ErrorKind),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the clip's file name and that its directory is readable"),
		logging.String(logging.FieldImpact, "clip is left on its current version"),
	)
	return report
}
