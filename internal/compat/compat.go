package compat

import (
	"fmt"

	"versionup/internal/timeline"
	"versionup/internal/versions"
)

// Reason explains why a substitution is not possible.
type Reason string

const (
	FrameOffsetMismatch Reason = "frame_offset_mismatch"
	NoNewerVersion      Reason = "no_newer_version"
	UnreadableMedia     Reason = "unreadable_media"
	InsufficientFrames  Reason = "insufficient_frames"
	MissingFrames       Reason = "missing_frames"
	InvalidClipRange    Reason = "invalid_clip_range"
)

// Options tunes the checker.
type Options struct {
	// AllowUniformShift accepts a candidate whose start and end both moved by
	// the same non-zero delta, relinking with that offset.
	AllowUniformShift bool
	// RequireContiguous rejects sequences with gaps inside the used range.
	RequireContiguous bool
}

// Result is the outcome of a compatibility check. Reason is empty when
// Compatible is set.
type Result struct {
	Compatible  bool
	FrameOffset int
	Reason      Reason
	Detail      string
}

func incompatible(reason Reason, format string, args ...any) Result {
	return Result{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Check compares cand's frame range with the frames clip uses.
func Check(clip timeline.Clip, cand versions.Candidate, opts Options) Result {
	if !cand.Exists {
		return incompatible(UnreadableMedia, "%s has no media on disk", cand.Path())
	}
	if cand.Range == nil {
		return incompatible(UnreadableMedia, "frame range of %s is unknown", cand.Path())
	}
	if !clip.Valid() {
		return incompatible(InvalidClipRange, "clip frames %s do not fit its source %s", clip.UsedRange(), clip.SourceRange())
	}

	available := *cand.Range
	offset := available.Start - clip.SourceStartFrame
	if offset != 0 {
		endDelta := available.End - clip.SourceEndFrame
		if !opts.AllowUniformShift || endDelta != offset {
			return incompatible(FrameOffsetMismatch, "new version starts at frame %d, clip source starts at %d",
				available.Start, clip.SourceStartFrame)
		}
	}

	used := clip.UsedRange().Shift(offset)
	if !available.Contains(used) {
		return incompatible(InsufficientFrames, "clip uses frames %s, new version has %s", used, available)
	}

	if opts.RequireContiguous {
		var gaps int
		first := 0
		for _, frame := range cand.Missing {
			if used.Has(frame) {
				if gaps == 0 {
					first = frame
				}
				gaps++
			}
		}
		if gaps > 0 {
			return incompatible(MissingFrames, "%d frame(s) missing inside %s, first %d", gaps, used, first)
		}
	}

	return Result{Compatible: true, FrameOffset: offset}
}
