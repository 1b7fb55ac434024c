package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"versionup/internal/config"
	"versionup/internal/deps"
	"versionup/internal/planstore"
	"versionup/internal/timeline"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external tools used for media inspection.
// ffprobe is optional: without it movie files are reported as unreadable
// media, while image sequences are still measured from disk.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Measures frame ranges of movie files",
			Optional:    true,
		},
	})
}

// CheckTimeline verifies that the timeline export parses and that track
// exists on it.
func CheckTimeline(ctx context.Context, path, track string) Result {
	const name = "Timeline"

	path = strings.TrimSpace(path)
	if path == "" {
		return Result{Name: name, Detail: "not configured (set timeline.path or pass --timeline)"}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	clips, err := timeline.NewFileSource(path).ListClips(checkCtx, track)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if track == "" {
		track = timeline.AllTracks
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d clips on %s)", path, len(clips), track)}
}

// CheckPlanStore verifies the plan database. A database that has not been
// created yet passes.
func CheckPlanStore(ctx context.Context, stateDir string) Result {
	const name = "Plan store"

	dbPath := filepath.Join(stateDir, planstore.DBName)
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet)", dbPath)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", dbPath, err)}
	}

	store, err := planstore.Open(stateDir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", dbPath, err)}
	}
	defer store.Close()

	health, err := store.CheckHealth(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", dbPath, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (schema v%d, %d plans, %d pending)",
		dbPath, health.SchemaVersion, health.Plans, health.Pending)}
}
