package shot

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Reference identifies one version of one shot.
type Reference struct {
	ShotKey string
	Version int
	Path    string
	// Name is the base name of Path, byte for byte.
	Name string
	// Ext is the lower-case extension without the dot.
	Ext string

	// Sequence is set when the name carried a frame token.
	Sequence bool
	// HasFrame is set when the frame token named a concrete frame (1001, or
	// the first frame of a [1001-1100] range).
	HasFrame bool
	Frame    int
	FramePad int

	head       string
	width      int
	tail       string
	frameSep   string
	frameToken string
	extRaw     string
}

// WithVersion returns the file name with the version digits replaced,
// keeping the original zero padding where the new number fits.
func (r Reference) WithVersion(version int) string {
	return r.build(r.formatVersion(version), r.frameSep+r.frameToken)
}

// SequenceName returns the printf-style name of the sequence this reference
// belongs to, e.g. BG_PLATE_v02.%04d.exr. Non-sequence references return Name.
func (r Reference) SequenceName() string {
	if !r.Sequence {
		return r.Name
	}
	return r.build(r.formatVersion(r.Version), r.frameSep+r.framePattern())
}

// SequencePath joins SequenceName onto the directory of Path.
func (r Reference) SequencePath() string {
	return filepath.Join(filepath.Dir(r.Path), r.SequenceName())
}

// Dir returns the directory containing the referenced media.
func (r Reference) Dir() string {
	return filepath.Dir(r.Path)
}

func (r Reference) String() string {
	return fmt.Sprintf("%s v%d", r.ShotKey, r.Version)
}

func (r Reference) formatVersion(version int) string {
	return fmt.Sprintf("%0*d", r.width, version)
}

func (r Reference) framePattern() string {
	if strings.HasPrefix(r.frameToken, "%") {
		return r.frameToken
	}
	if r.FramePad > 0 {
		return fmt.Sprintf("%%0%dd", r.FramePad)
	}
	return "%d"
}

func (r Reference) build(digits, frame string) string {
	var b strings.Builder
	b.WriteString(r.head)
	b.WriteString(digits)
	b.WriteString(r.tail)
	b.WriteString(frame)
	if r.extRaw != "" {
		b.WriteByte('.')
		b.WriteString(r.extRaw)
	}
	return b.String()
}
