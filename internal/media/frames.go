package media

import (
	"fmt"
	"sort"
)

// FrameRange is an inclusive span of source frame numbers.
type FrameRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of frames in the range.
func (r FrameRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether other lies entirely within r.
func (r FrameRange) Contains(other FrameRange) bool {
	return other.Start >= r.Start && other.End <= r.End && other.Start <= other.End
}

// Has reports whether frame lies within r.
func (r FrameRange) Has(frame int) bool {
	return frame >= r.Start && frame <= r.End
}

// Shift moves both ends of the range by delta.
func (r FrameRange) Shift(delta int) FrameRange {
	return FrameRange{Start: r.Start + delta, End: r.End + delta}
}

func (r FrameRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// RangeOf returns the span covered by frames and the frame numbers missing
// inside that span. Duplicates are ignored. ok is false for an empty set.
func RangeOf(frames []int) (FrameRange, []int, bool) {
	if len(frames) == 0 {
		return FrameRange{}, nil, false
	}
	sorted := append([]int(nil), frames...)
	sort.Ints(sorted)

	var missing []int
	prev := sorted[0]
	for _, frame := range sorted[1:] {
		if frame == prev {
			continue
		}
		for gap := prev + 1; gap < frame; gap++ {
			missing = append(missing, gap)
		}
		prev = frame
	}
	return FrameRange{Start: sorted[0], End: sorted[len(sorted)-1]}, missing, true
}
