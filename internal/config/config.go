package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Timeline selects the timeline export and track to work on.
type Timeline struct {
	Path  string `toml:"path"`
	Track string `toml:"track"`
}

// Versioning describes the version token grammar.
type Versioning struct {
	// Pattern is a regular expression whose first capture group holds the
	// version digits. The rightmost match in a file name wins.
	Pattern string `toml:"pattern"`
}

// Scan contains configuration for version discovery on disk.
type Scan struct {
	VersionDirectories bool     `toml:"version_directories"`
	SequenceExtensions []string `toml:"sequence_extensions"`
	MovieExtensions    []string `toml:"movie_extensions"`
	Workers            int      `toml:"workers"`
}

// Compat contains the compatibility rules applied before a relink.
type Compat struct {
	AllowUniformShift bool `toml:"allow_uniform_shift"`
	RequireContiguous bool `toml:"require_contiguous"`
	// MovieStartFrame is the frame number assigned to the first frame of a
	// single-file container.
	MovieStartFrame int `toml:"movie_start_frame"`
}

// Selection controls which newer version is chosen.
type Selection struct {
	FallbackToCompatible bool `toml:"fallback_to_compatible"`
}

// Media contains configuration for media inspection.
type Media struct {
	FFprobeBinary       string `toml:"ffprobe_binary"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Plans contains configuration for persisted resolution plans.
type Plans struct {
	RetentionDays int `toml:"retention_days"`
}

// Config encapsulates all configuration values for versionup.
//
// Configuration sections by subsystem:
//   - Paths: state and log directories
//   - Timeline: timeline export file and default track
//   - Versioning: version token pattern
//   - Scan: version directories, extensions, worker count
//   - Compat: frame range compatibility rules
//   - Selection: fallback to an older compatible version
//   - Media: ffprobe binary and timeout
//   - Logging: log format, level, and retention
//   - Plans: plan history retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	Timeline   Timeline   `toml:"timeline"`
	Versioning Versioning `toml:"versioning"`
	Scan       Scan       `toml:"scan"`
	Compat     Compat     `toml:"compat"`
	Selection  Selection  `toml:"selection"`
	Media      Media      `toml:"media"`
	Logging    Logging    `toml:"logging"`
	Plans      Plans      `toml:"plans"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFprobeBinary returns the ffprobe executable used to measure movie files.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Media.FFprobeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// ProbeTimeout returns the per-file ffprobe timeout.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Media.ProbeTimeoutSeconds) * time.Second
}

// PlanDBPath returns the plan store database location.
func (c *Config) PlanDBPath() string {
	return filepath.Join(c.Paths.StateDir, planDBName)
}

// LogFilePath returns today's log file. One file is kept per day so
// retention can prune whole days.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, logFilePrefix+time.Now().Format(logDayLayout)+".log")
}

// LogFilePattern matches every file LogFilePath can produce.
func LogFilePattern() string {
	return logFilePrefix + "*.log"
}

// LogFileDay returns the local day encoded in a log file name produced by
// LogFilePath. ok is false for any other name.
func LogFileDay(name string) (day time.Time, ok bool) {
	stamp, ok := strings.CutPrefix(filepath.Base(name), logFilePrefix)
	if !ok {
		return time.Time{}, false
	}
	stamp, ok = strings.CutSuffix(stamp, ".log")
	if !ok {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(logDayLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "versionup")
	}
	return "~/.local/state/versionup"
}

// SampleConfig returns the commented sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
