package swap_test

import (
	"testing"

	"versionup/internal/compat"
	"versionup/internal/media"
	"versionup/internal/shot"
	"versionup/internal/swap"
	"versionup/internal/timeline"
	"versionup/internal/versions"
)

func clip() timeline.Clip {
	return timeline.Clip{
		ID:               "c1",
		Name:             "SHOT010",
		SourcePath:       "/renders/SHOT010/SHOT010_v002.mov",
		OutFrame:         47,
		SourceStartFrame: 0,
		SourceEndFrame:   47,
	}
}

func movie(t *testing.T, path string, r *media.FrameRange) *versions.Candidate {
	t.Helper()
	ref, err := shot.Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	return &versions.Candidate{Ref: ref, Kind: versions.KindMovie, Exists: true, Range: r}
}

func TestPlanCompatible(t *testing.T) {
	r := media.FrameRange{Start: 0, End: 59}
	sel := movie(t, "/renders/SHOT010/SHOT010_v003.mov", &r)
	inst := swap.Plan(clip(), 2, sel, compat.Result{Compatible: true})

	if !inst.Applicable() || inst.Status != swap.StatusCompatible {
		t.Fatalf("expected applicable instruction, got %+v", inst)
	}
	if inst.NewPath != "/renders/SHOT010/SHOT010_v003.mov" || inst.NewVersion != 3 || inst.CurrentVersion != 2 {
		t.Fatalf("unexpected instruction %+v", inst)
	}
	if inst.OldPath != clip().SourcePath || inst.ClipID != "c1" {
		t.Fatalf("clip identity not carried: %+v", inst)
	}
	s := inst.Swap()
	if s.ClipID != "c1" || s.SourceRange != r || s.FrameOffset != 0 {
		t.Fatalf("unexpected swap %+v", s)
	}

	r.End = 10
	if inst.SourceRange.End != 59 {
		t.Fatal("instruction should not alias the candidate range")
	}
}

func TestPlanIncompatible(t *testing.T) {
	r := media.FrameRange{Start: 10, End: 59}
	sel := movie(t, "/renders/SHOT010/SHOT010_v003.mov", &r)
	res := compat.Result{Reason: compat.FrameOffsetMismatch, Detail: "starts at 10"}
	inst := swap.Plan(clip(), 2, sel, res)

	if inst.Applicable() || inst.Status != swap.StatusIncompatible {
		t.Fatalf("expected informational instruction, got %+v", inst)
	}
	if inst.NewPath != "" {
		t.Fatalf("incompatible instruction must not change the path, got %q", inst.NewPath)
	}
	if inst.Reason != compat.FrameOffsetMismatch || inst.Detail != "starts at 10" || inst.NewVersion != 3 {
		t.Fatalf("unexpected instruction %+v", inst)
	}
}

func TestPlanNoNewerVersion(t *testing.T) {
	inst := swap.Plan(clip(), 2, nil, compat.Result{})
	if inst.Applicable() || inst.Reason != compat.NoNewerVersion {
		t.Fatalf("unexpected instruction %+v", inst)
	}
}

func TestPlanGuardsUnknownRange(t *testing.T) {
	sel := movie(t, "/renders/SHOT010/SHOT010_v003.mov", nil)
	inst := swap.Plan(clip(), 2, sel, compat.Result{Compatible: true})
	if inst.Applicable() || inst.Reason != compat.UnreadableMedia {
		t.Fatalf("unexpected instruction %+v", inst)
	}
}
