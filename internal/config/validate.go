package config

import (
	"errors"
	"fmt"

	"versionup/internal/shot"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateVersioning(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	if c.Plans.RetentionDays < 0 {
		return errors.New("plans.retention_days must be >= 0")
	}
	return nil
}

func (c *Config) validateVersioning() error {
	if _, err := shot.NewGrammar(c.Versioning.Pattern, c.Scan.SequenceExtensions); err != nil {
		return fmt.Errorf("versioning.pattern: %w", err)
	}
	return nil
}

func (c *Config) validateScan() error {
	if len(c.Scan.SequenceExtensions) == 0 {
		return errors.New("scan.sequence_extensions must list at least one extension")
	}
	if len(c.Scan.MovieExtensions) == 0 {
		return errors.New("scan.movie_extensions must list at least one extension")
	}
	movies := make(map[string]struct{}, len(c.Scan.MovieExtensions))
	for _, ext := range c.Scan.MovieExtensions {
		movies[ext] = struct{}{}
	}
	for _, ext := range c.Scan.SequenceExtensions {
		if _, ok := movies[ext]; ok {
			return fmt.Errorf("scan: extension %q cannot be both a sequence and a movie extension", ext)
		}
	}
	if c.Scan.Workers > 64 {
		return errors.New("scan.workers must be between 1 and 64")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// Grammar compiles the configured filename grammar.
func (c *Config) Grammar() (*shot.Grammar, error) {
	return shot.NewGrammar(c.Versioning.Pattern, c.Scan.SequenceExtensions)
}
