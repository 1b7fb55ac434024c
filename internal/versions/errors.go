package versions

import "fmt"

// ErrorKind classifies scan failures.
type ErrorKind string

// DirectoryUnavailable means the search directory is missing, is not a
// directory, or cannot be read.
const DirectoryUnavailable ErrorKind = "directory_unavailable"

// ScanError reports a directory that could not be checked for versions.
type ScanError struct {
	Kind ErrorKind
	Dir  string
	Err  error
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scan %s: %s: %v", e.Dir, e.Kind, e.Err)
	}
	return fmt.Sprintf("scan %s: %s", e.Dir, e.Kind)
}

func (e *ScanError) Unwrap() error { return e.Err }
