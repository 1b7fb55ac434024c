package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"versionup/internal/compat"
	"versionup/internal/config"
	"versionup/internal/logging"
	"versionup/internal/media"
	"versionup/internal/planstore"
	"versionup/internal/resolve"
	"versionup/internal/timeline"
	"versionup/internal/versions"
)

type commandContext struct {
	configFlag   *string
	timelineFlag *string
	trackFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, timelineFlag, trackFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		timelineFlag: timelineFlag,
		trackFlag:    trackFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if flag := c.flagValue(c.timelineFlag); flag != "" {
			expanded, err := config.ExpandPath(flag)
			if err != nil {
				c.configErr = fmt.Errorf("resolve --timeline: %w", err)
				return
			}
			cfg.Timeline.Path = expanded
		}
		if flag := c.flagValue(c.trackFlag); flag != "" {
			cfg.Timeline.Track = flag
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

// loggerFor builds the command logger once. Console output goes to the
// command's stderr so stdout stays clean for reports and JSON.
func (c *commandContext) loggerFor(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		logging.PruneLogs(logger, cfg, time.Now())
		c.logger = logger.With(logging.String(logging.FieldComponent, "cli"))
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) track() string {
	cfg, err := c.ensureConfig()
	if err != nil || strings.TrimSpace(cfg.Timeline.Track) == "" {
		return timeline.AllTracks
	}
	return cfg.Timeline.Track
}

var errNoTimeline = errors.New("no timeline configured; set timeline.path in the config, export VERSIONUP_TIMELINE, or pass --timeline")

func (c *commandContext) timelineSource() (*timeline.FileSource, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Timeline.Path) == "" {
		return nil, errNoTimeline
	}
	return timeline.NewFileSource(cfg.Timeline.Path), nil
}

func (c *commandContext) newResolver(logger *slog.Logger) (*resolve.Resolver, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	grammar, err := cfg.Grammar()
	if err != nil {
		return nil, err
	}
	prober := media.Prober{
		Binary:     cfg.FFprobeBinary(),
		StartFrame: cfg.Compat.MovieStartFrame,
		Timeout:    cfg.ProbeTimeout(),
	}
	scanner := versions.NewScanner(afero.NewOsFs(), versions.Options{
		Grammar:            grammar,
		VersionDirectories: cfg.Scan.VersionDirectories,
		MovieExtensions:    cfg.Scan.MovieExtensions,
		Prober:             prober,
		Logger:             logger,
	})
	return resolve.New(resolve.Options{
		Grammar: grammar,
		Scanner: scanner,
		Compat: compat.Options{
			AllowUniformShift: cfg.Compat.AllowUniformShift,
			RequireContiguous: cfg.Compat.RequireContiguous,
		},
		FallbackToCompatible: cfg.Selection.FallbackToCompatible,
		Workers:              cfg.Scan.Workers,
		Logger:               logger,
	}), nil
}

func (c *commandContext) openPlanStore() (*planstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := planstore.Open(cfg.Paths.StateDir)
	if err != nil {
		return nil, fmt.Errorf("open plan store: %w", err)
	}
	return store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
