package shot

import "fmt"

// ErrorKind classifies parse failures.
type ErrorKind string

const (
	// NoVersionToken means the filename carries nothing matching the version pattern.
	NoVersionToken ErrorKind = "no_version_token"
	// EmptyShotKey means removing the version token left no usable base name.
	EmptyShotKey ErrorKind = "empty_shot_key"
	// InvalidVersion means the version digits do not fit an int.
	InvalidVersion ErrorKind = "invalid_version"
)

// ParseError reports why a path could not be reduced to a Reference.
type ParseError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case NoVersionToken:
		return fmt.Sprintf("parse %q: no version token", e.Path)
	case EmptyShotKey:
		return fmt.Sprintf("parse %q: shot key is empty once the version token is removed", e.Path)
	case InvalidVersion:
		if e.Err != nil {
			return fmt.Sprintf("parse %q: version number out of range: %v", e.Path, e.Err)
		}
		return fmt.Sprintf("parse %q: version number out of range", e.Path)
	default:
		return fmt.Sprintf("parse %q: %s", e.Path, e.Kind)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }
