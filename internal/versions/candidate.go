package versions

import (
	"versionup/internal/media"
	"versionup/internal/shot"
)

// Kind distinguishes numbered image sequences from single-file containers.
type Kind string

const (
	KindSequence Kind = "sequence"
	KindMovie    Kind = "movie"
)

// Candidate is one version of a shot found on disk. Range is nil when the
// frame range could not be determined.
type Candidate struct {
	Ref     shot.Reference
	Kind    Kind
	Exists  bool
	Range   *media.FrameRange
	Missing []int
	Frames  int
}

// Version returns the candidate's version number.
func (c Candidate) Version() int { return c.Ref.Version }

// Path returns the media path; sequences use printf frame notation.
func (c Candidate) Path() string { return c.Ref.Path }

// better reports whether c should replace other when both carry the same
// version.
func (c Candidate) better(other Candidate) bool {
	if c.Exists != other.Exists {
		return c.Exists
	}
	if c.Kind != other.Kind {
		return c.Kind == KindSequence
	}
	return c.Path() < other.Path()
}
