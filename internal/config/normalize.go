package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeDatabase(); err != nil {
		return err
	}
	c.normalizeIdentify()
	if err := c.normalizeWatch(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeDatabase() error {
	if value, ok := os.LookupEnv("PS2ID_DATABASE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Database.Dir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Database.Dir) == "" {
		c.Database.Dir = defaultDatabaseDir
	}
	var err error
	if c.Database.Dir, err = expandPath(strings.TrimSpace(c.Database.Dir)); err != nil {
		return fmt.Errorf("database.dir: %w", err)
	}
	if c.Database.LegacyPath, err = expandPath(strings.TrimSpace(c.Database.LegacyPath)); err != nil {
		return fmt.Errorf("database.legacy_path: %w", err)
	}
	if len(c.Database.Files) > 0 {
		files := make(map[string]string, len(c.Database.Files))
		for region, name := range c.Database.Files {
			region = strings.ToLower(strings.TrimSpace(region))
			name = strings.TrimSpace(name)
			if region == "" || name == "" {
				continue
			}
			if strings.HasPrefix(name, "~") {
				if name, err = expandPath(name); err != nil {
					return fmt.Errorf("database.files.%s: %w", region, err)
				}
			}
			files[region] = name
		}
		c.Database.Files = files
	}
	return nil
}

func (c *Config) normalizeIdentify() {
	seen := make(map[string]struct{}, len(c.Identify.Extensions))
	exts := make([]string, 0, len(c.Identify.Extensions))
	for _, ext := range c.Identify.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultExtensions...)
	}
	c.Identify.Extensions = exts
	if c.Identify.ChunkSizeMiB == 0 {
		c.Identify.ChunkSizeMiB = defaultChunkSizeMiB
	}
	if c.Identify.ScanTimeoutSeconds < 0 {
		c.Identify.ScanTimeoutSeconds = 0
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = defaultScanWorkers
	}
}

func (c *Config) normalizeWatch() error {
	if c.Watch.DebounceMillis == 0 {
		c.Watch.DebounceMillis = defaultWatchDebounceMilli
	}
	if strings.TrimSpace(c.Watch.LockPath) == "" {
		c.Watch.LockPath = defaultWatchLockPath
	}
	var err error
	if c.Watch.LockPath, err = expandPath(strings.TrimSpace(c.Watch.LockPath)); err != nil {
		return fmt.Errorf("watch.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if value, ok := os.LookupEnv("PS2ID_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
