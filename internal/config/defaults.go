package config

import "versionup/internal/shot"

const (
	defaultConfigPath          = "~/.config/versionup/config.toml"
	projectConfigName          = "versionup.toml"
	defaultLogDir              = "~/.local/share/versionup/logs"
	defaultLogRetentionDays    = 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultTrack               = "all"
	defaultScanWorkers         = 4
	defaultFFprobeBinary       = "ffprobe"
	defaultProbeTimeoutSeconds = 30
	defaultPlanRetentionDays   = 90
	planDBName                 = "plans.db"
	logFilePrefix              = "versionup-"
	logDayLayout               = "2006-01-02"
)

var defaultMovieExtensions = []string{"mov", "mp4", "mxf", "mkv", "avi", "m4v"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir(),
			LogDir:   defaultLogDir,
		},
		Timeline: Timeline{
			Track: defaultTrack,
		},
		Versioning: Versioning{
			Pattern: shot.DefaultVersionPattern,
		},
		Scan: Scan{
			VersionDirectories: true,
			SequenceExtensions: append([]string(nil), shot.DefaultSequenceExtensions...),
			MovieExtensions:    append([]string(nil), defaultMovieExtensions...),
			Workers:            defaultScanWorkers,
		},
		Compat: Compat{
			RequireContiguous: true,
		},
		Media: Media{
			FFprobeBinary:       defaultFFprobeBinary,
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Plans: Plans{
			RetentionDays: defaultPlanRetentionDays,
		},
	}
}
