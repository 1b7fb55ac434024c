package timeline

import (
	"context"
	"errors"

	"versionup/internal/media"
)

// AllTracks selects every video track when listing clips.
const AllTracks = "all"

var (
	// ErrClipNotFound is returned when a clip ID is not on the timeline.
	ErrClipNotFound = errors.New("clip not found")
	// ErrTrackNotFound is returned when a named track does not exist.
	ErrTrackNotFound = errors.New("track not found")
)

// Clip is a read-only view of one clip placed on the timeline.
//
// InFrame and OutFrame are offsets from SourceStartFrame, so the clip uses
// source frames SourceStartFrame+InFrame through SourceStartFrame+OutFrame.
type Clip struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Track            string `json:"track,omitempty"`
	SourcePath       string `json:"source_path"`
	InFrame          int    `json:"in_frame"`
	OutFrame         int    `json:"out_frame"`
	SourceStartFrame int    `json:"source_start_frame"`
	SourceEndFrame   int    `json:"source_end_frame"`
}

// UsedRange returns the source frames the edit actually uses.
func (c Clip) UsedRange() media.FrameRange {
	return media.FrameRange{
		Start: c.SourceStartFrame + c.InFrame,
		End:   c.SourceStartFrame + c.OutFrame,
	}
}

// SourceRange returns the frame bounds of the clip's current media.
func (c Clip) SourceRange() media.FrameRange {
	return media.FrameRange{Start: c.SourceStartFrame, End: c.SourceEndFrame}
}

// Valid reports whether the clip's frame bounds are internally consistent.
func (c Clip) Valid() bool {
	return c.InFrame >= 0 && c.OutFrame >= c.InFrame && c.SourceEndFrame >= c.SourceStartFrame &&
		c.SourceRange().Contains(c.UsedRange())
}

// Swap relinks a clip to new media. The used source frames move by
// FrameOffset; SourceRange carries the new media's bounds.
type Swap struct {
	ClipID      string
	NewPath     string
	FrameOffset int
	SourceRange media.FrameRange
}

// Relink returns the clip as it looks after s is applied.
func (c Clip) Relink(s Swap) Clip {
	used := c.UsedRange().Shift(s.FrameOffset)
	c.SourcePath = s.NewPath
	c.SourceStartFrame = s.SourceRange.Start
	c.SourceEndFrame = s.SourceRange.End
	c.InFrame = used.Start - s.SourceRange.Start
	c.OutFrame = used.End - s.SourceRange.Start
	return c
}

// Source is the host capability the resolver depends on. Implementations
// need not be safe for concurrent ApplySwap calls; callers drive the apply
// phase from a single goroutine.
type Source interface {
	ListClips(ctx context.Context, track string) ([]Clip, error)
	GetClip(ctx context.Context, id string) (Clip, error)
	ApplySwap(ctx context.Context, swap Swap) error
}
