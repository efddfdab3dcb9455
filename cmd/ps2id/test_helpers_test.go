package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"ps2id/internal/config"
	"ps2id/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	imageDir   string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("PS2ID_DATABASE_DIR", "")
	t.Setenv("PS2ID_LOG_LEVEL", "error")

	base := []testsupport.ConfigOption{
		testsupport.WithRegionTable("usa", map[string]string{"SLUS-12345": "Example Game"}),
		testsupport.WithRegionTable("europe", map[string]string{"SCES-98765": "Other Game"}),
	}
	cfg := testsupport.NewConfig(t, append(base, opts...)...)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	testsupport.WriteConfigFile(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		imageDir:   filepath.Join(testsupport.BaseDir(cfg), "images"),
	}
}

// writeUDFImage stores a UDF image listing names under the env image dir.
func (e *cliTestEnv) writeUDFImage(t *testing.T, name string, names ...string) string {
	t.Helper()
	path := filepath.Join(e.imageDir, name)
	testsupport.WriteBytes(t, path, testsupport.BuildUDF(names, testsupport.UDFOptions{}))
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
