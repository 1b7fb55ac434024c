package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"versionup/internal/media/ffprobe"
)

// ErrUnknownFrameCount is returned when the container does not expose enough
// metadata to count its frames.
var ErrUnknownFrameCount = errors.New("frame count unavailable")

// Prober reads frame ranges of single-file movie containers with ffprobe.
// Containers carry no frame numbers of their own, so the range starts at
// StartFrame and spans the container's frame count.
type Prober struct {
	Binary     string
	StartFrame int
	Timeout    time.Duration
}

// FrameRange inspects path and returns its frame range.
func (p Prober) FrameRange(ctx context.Context, path string) (FrameRange, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	result, err := ffprobe.Inspect(ctx, p.Binary, path)
	if err != nil {
		return FrameRange{}, err
	}
	count := result.FrameCount()
	if count <= 0 {
		return FrameRange{}, fmt.Errorf("%s: %w", path, ErrUnknownFrameCount)
	}
	return FrameRange{Start: p.StartFrame, End: p.StartFrame + count - 1}, nil
}
