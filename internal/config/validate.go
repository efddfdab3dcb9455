package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownRegions = map[string]struct{}{
	"asia":      {},
	"australia": {},
	"europe":    {},
	"japan":     {},
	"korea":     {},
	"usa":       {},
	"official":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateIdentify(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if c.Watch.DebounceMillis < 0 {
		return errors.New("watch.debounce_ms must not be negative")
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Dir) == "" {
		return errors.New("database.dir must be set")
	}
	for region := range c.Database.Files {
		if _, ok := knownRegions[strings.ToLower(region)]; !ok {
			return fmt.Errorf("database.files: unknown region %q", region)
		}
	}
	return nil
}

func (c *Config) validateIdentify() error {
	if len(c.Identify.Extensions) == 0 {
		return errors.New("identify.extensions must not be empty")
	}
	if c.Identify.ChunkSizeMiB <= 0 {
		return errors.New("identify.chunk_size_mib must be positive")
	}
	if c.Identify.ChunkSizeMiB > 1024 {
		return errors.New("identify.chunk_size_mib must be at most 1024")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers < 1 {
		return errors.New("scan.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
