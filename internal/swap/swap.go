// Package swap turns a resolution outcome into a relink instruction. It never
// touches the timeline.
package swap

import (
	"versionup/internal/compat"
	"versionup/internal/media"
	"versionup/internal/timeline"
	"versionup/internal/versions"
)

// Status marks whether an instruction may be applied.
type Status string

const (
	StatusCompatible   Status = "compatible"
	StatusIncompatible Status = "incompatible"
)

// Instruction describes the relink of one clip. Incompatible instructions are
// informational and leave NewPath empty.
type Instruction struct {
	ClipID         string            `json:"clip_id"`
	ClipName       string            `json:"clip_name,omitempty"`
	OldPath        string            `json:"old_path"`
	NewPath        string            `json:"new_path,omitempty"`
	CurrentVersion int               `json:"current_version"`
	NewVersion     int               `json:"new_version,omitempty"`
	FrameOffset    int               `json:"frame_offset"`
	SourceRange    *media.FrameRange `json:"source_range,omitempty"`
	Status         Status            `json:"status"`
	Reason         compat.Reason     `json:"reason,omitempty"`
	Detail         string            `json:"detail,omitempty"`
}

// Applicable reports whether the host should perform this relink.
func (i Instruction) Applicable() bool {
	return i.Status == StatusCompatible && i.NewPath != "" && i.SourceRange != nil
}

// Swap converts a compatible instruction into the timeline operation.
func (i Instruction) Swap() timeline.Swap {
	s := timeline.Swap{ClipID: i.ClipID, NewPath: i.NewPath, FrameOffset: i.FrameOffset}
	if i.SourceRange != nil {
		s.SourceRange = *i.SourceRange
	}
	return s
}

// Plan builds the instruction for clip. A nil selected means no newer
// version was found.
func Plan(clip timeline.Clip, current int, selected *versions.Candidate, res compat.Result) Instruction {
	inst := Instruction{
		ClipID:         clip.ID,
		ClipName:       clip.Name,
		OldPath:        clip.SourcePath,
		CurrentVersion: current,
	}
	if selected == nil {
		inst.Status = StatusIncompatible
		inst.Reason = compat.NoNewerVersion
		return inst
	}
	inst.NewVersion = selected.Version()
	if !res.Compatible || selected.Range == nil {
		if res.Compatible {
			res = compat.Result{Reason: compat.UnreadableMedia, Detail: "frame range of " + selected.Path() + " is unknown"}
		}
		inst.Status = StatusIncompatible
		inst.Reason = res.Reason
		inst.Detail = res.Detail
		return inst
	}
	r := *selected.Range
	inst.Status = StatusCompatible
	inst.NewPath = selected.Path()
	inst.FrameOffset = res.FrameOffset
	inst.SourceRange = &r
	return inst
}
