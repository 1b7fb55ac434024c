package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment overrides applied after the file is read.
const (
	EnvTimeline = "VERSIONUP_TIMELINE"
	EnvFFprobe  = "VERSIONUP_FFPROBE"
)

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTimeline(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeMedia()
	c.normalizeLogging()
	c.Versioning.Pattern = strings.TrimSpace(c.Versioning.Pattern)
	return nil
}

func (c *Config) applyEnv() {
	if value, ok := os.LookupEnv(EnvTimeline); ok && strings.TrimSpace(value) != "" {
		c.Timeline.Path = value
	}
	if value, ok := os.LookupEnv(EnvFFprobe); ok && strings.TrimSpace(value) != "" {
		c.Media.FFprobeBinary = value
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTimeline() error {
	var err error
	c.Timeline.Path = strings.TrimSpace(c.Timeline.Path)
	if c.Timeline.Path, err = expandPath(c.Timeline.Path); err != nil {
		return fmt.Errorf("timeline.path: %w", err)
	}
	c.Timeline.Track = strings.TrimSpace(c.Timeline.Track)
	if c.Timeline.Track == "" {
		c.Timeline.Track = defaultTrack
	}
	return nil
}

func (c *Config) normalizeScan() {
	c.Scan.SequenceExtensions = normalizeExtensions(c.Scan.SequenceExtensions)
	c.Scan.MovieExtensions = normalizeExtensions(c.Scan.MovieExtensions)
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = defaultScanWorkers
	}
}

func (c *Config) normalizeMedia() {
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Media.ProbeTimeoutSeconds <= 0 {
		c.Media.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}

// normalizeExtensions lower-cases, strips dots, and drops duplicates.
func normalizeExtensions(exts []string) []string {
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}
