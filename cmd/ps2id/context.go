package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"ps2id/internal/config"
	"ps2id/internal/identification"
	"ps2id/internal/logging"
	"ps2id/internal/regiondb"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	dbOnce sync.Once
	db     *regiondb.Set
	dbErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
			}
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// newLogger builds the command logger; callers defer the closer so
// logging.file is released when the command returns.
func (c *commandContext) newLogger(sessionID string) (*slog.Logger, io.Closer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	return logging.NewFromConfig(cfg, sessionID)
}

// ensureDatabase loads the region tables once per process.
func (c *commandContext) ensureDatabase(logger *slog.Logger) (*regiondb.Set, error) {
	c.dbOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.dbErr = err
			return
		}
		if err := checkDatabaseDir(cfg.Database.Dir); err != nil {
			c.dbErr = err
			return
		}
		opts, err := databaseOptions(cfg)
		if err != nil {
			c.dbErr = err
			return
		}
		c.db, c.dbErr = regiondb.Load(opts, logger)
	})
	return c.db, c.dbErr
}

func databaseOptions(cfg *config.Config) (regiondb.LoadOptions, error) {
	opts := regiondb.LoadOptions{
		Dir:        cfg.Database.Dir,
		LegacyPath: cfg.Database.LegacyPath,
	}
	if len(cfg.Database.Files) > 0 {
		opts.Files = make(map[regiondb.Region]string, len(cfg.Database.Files))
		for name, file := range cfg.Database.Files {
			region, ok := regiondb.ParseRegion(name)
			if !ok {
				return regiondb.LoadOptions{}, fmt.Errorf("database.files: unknown region %q", name)
			}
			opts.Files[region] = file
		}
	}
	return opts, nil
}

func (c *commandContext) newIdentifier(logger *slog.Logger) (*identification.Identifier, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	db, err := c.ensureDatabase(logger)
	if err != nil {
		return nil, err
	}
	return identification.NewIdentifier(db, logger, identification.Options{
		Extensions:           cfg.Identify.Extensions,
		Scan:                 identification.ScanOptions{ChunkSize: cfg.ChunkSizeBytes()},
		ScanTimeout:          time.Duration(cfg.ScanTimeout()) * time.Second,
		ScanOnStructuredMiss: cfg.Identify.BinaryFallbackOnMiss,
	}), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
