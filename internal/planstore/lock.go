package planstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockName is the apply lock file created inside the state directory.
const LockName = "apply.lock"

// ErrApplyInProgress is returned when another process holds the apply lock.
var ErrApplyInProgress = errors.New("another versionup update is already running")

// ApplyLock serializes timeline relinking across processes.
type ApplyLock struct {
	lock *flock.Flock
}

// AcquireApplyLock takes the apply lock in stateDir without blocking.
func AcquireApplyLock(stateDir string) (*ApplyLock, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}
	lock := flock.New(filepath.Join(stateDir, LockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrApplyInProgress
	}
	return &ApplyLock{lock: lock}, nil
}

// Path returns the lock file location.
func (l *ApplyLock) Path() string {
	return l.lock.Path()
}

// Release drops the lock.
func (l *ApplyLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
