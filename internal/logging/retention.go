package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"versionup/internal/config"
)

// PruneLogs removes daily log files whose day is more than
// cfg.Logging.RetentionDays before now and returns how many were removed.
// The day comes from the file name; files whose name carries no day fall back
// to their modification time. A retention of 0 keeps everything.
func PruneLogs(logger *slog.Logger, cfg *config.Config, now time.Time) int {
	if cfg == nil || cfg.Logging.RetentionDays <= 0 || cfg.Paths.LogDir == "" {
		return 0
	}
	entries, err := os.ReadDir(cfg.Paths.LogDir)
	if err != nil {
		return 0
	}
	y, m, d := now.In(time.Local).Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.Local).AddDate(0, 0, -cfg.Logging.RetentionDays)

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if matched, _ := filepath.Match(config.LogFilePattern(), name); !matched {
			continue
		}
		day, ok := config.LogFileDay(name)
		if !ok {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			day = info.ModTime()
		}
		if !day.Before(cutoff) {
			continue
		}
		path := filepath.Join(cfg.Paths.LogDir, name)
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on paths.log_dir"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
	}
	if removed > 0 && logger != nil {
		logger.Debug("old log files pruned",
			String(FieldEventType, "log_pruned"),
			Int("removed", removed),
			Int("retention_days", cfg.Logging.RetentionDays),
		)
	}
	return removed
}
