// Package media describes frame ranges of rendered media and how to read them.
//
// Image sequences report their range from the frame numbers present on disk;
// single-file containers are inspected with ffprobe through Prober. Frame
// numbers are inclusive on both ends.
//
// Key types:
//   - FrameRange: inclusive span of source frame numbers
//   - Prober: ffprobe-backed range reader for movie containers
//
// Helpers:
//   - RangeOf: first/last frame and gaps for a set of sequence frames
package media
