package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ps2id/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Database.Dir = filepath.Join(base, "db")
	cfgVal.Watch.LockPath = filepath.Join(base, "state", "watch.lock")
	cfgVal.Watch.DebounceMillis = 20
	cfgVal.Scan.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRegionTable writes a region JSON file into the config's database dir.
// The region name is the file stem, for example "usa" or "europe".
func WithRegionTable(region string, table map[string]string) ConfigOption {
	return func(b *configBuilder) {
		WriteRegionTable(b.t, b.cfg.Database.Dir, region, table)
	}
}

// WithBinaryFallback toggles the raw scan after a structured miss.
func WithBinaryFallback(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Identify.BinaryFallbackOnMiss = enabled
	}
}

// WriteRegionTable stores table as <dir>/<region>.json.
func WriteRegionTable(t testing.TB, dir, region string, table map[string]string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	data, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("marshal %s table: %v", region, err)
	}
	path := filepath.Join(dir, region+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteConfigFile encodes cfg as TOML at path.
func WriteConfigFile(t testing.TB, path string, cfg *config.Config) {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	WriteBytes(t, path, data)
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Database.Dir)
}
