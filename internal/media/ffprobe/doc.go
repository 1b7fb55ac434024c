// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no versionup-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual video/audio stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result locate the primary video stream and derive its
// frame rate and frame count, falling back to duration when the container
// does not record nb_frames.
package ffprobe
