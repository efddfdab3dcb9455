package config

const (
	defaultConfigPath         = "~/.config/ps2id/config.toml"
	defaultDatabaseDir        = "~/.local/share/ps2id/db"
	defaultChunkSizeMiB       = 10
	defaultScanWorkers        = 4
	defaultWatchDebounceMilli = 500
	defaultWatchLockPath      = "~/.local/state/ps2id/watch.lock"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

var defaultExtensions = []string{".iso", ".bin"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Database: Database{
			Dir: defaultDatabaseDir,
		},
		Identify: Identify{
			Extensions:   append([]string(nil), defaultExtensions...),
			ChunkSizeMiB: defaultChunkSizeMiB,
		},
		Scan: Scan{
			Workers: defaultScanWorkers,
		},
		Watch: Watch{
			DebounceMillis: defaultWatchDebounceMilli,
			LockPath:       defaultWatchLockPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
