package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"ps2id/internal/testsupport"
)

func TestCLIIdentifyFormats(t *testing.T) {
	env := setupCLITestEnv(t)
	image := env.writeUDFImage(t, "Example.iso", "SYSTEM.CNF", "SLUS_123.45;1")

	out, _, err := runCLI(t, []string{"identify", image}, env.configPath)
	if err != nil {
		t.Fatalf("identify table: %v", err)
	}
	requireContains(t, out, "Example.iso", "identified", "SLUS-12345", "USA", "Example Game", "DVD (UDF)")

	out, _, err = runCLI(t, []string{"identify", "--format", "json", image}, env.configPath)
	if err != nil {
		t.Fatalf("identify json: %v", err)
	}
	var reports []imageReport
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(reports) != 1 || reports[0].Serial != "SLUS-12345" || reports[0].DiscKind != "structured_dvd" {
		t.Fatalf("unexpected json reports: %+v", reports)
	}

	out, _, err = runCLI(t, []string{"identify", "-f", "yaml", image}, env.configPath)
	if err != nil {
		t.Fatalf("identify yaml: %v", err)
	}
	var yamlReports []imageReport
	if err := yaml.Unmarshal([]byte(out), &yamlReports); err != nil {
		t.Fatalf("decode yaml: %v\n%s", err, out)
	}
	if len(yamlReports) != 1 || yamlReports[0].Title != "Example Game" {
		t.Fatalf("unexpected yaml reports: %+v", yamlReports)
	}
}

func TestCLIIdentifyReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	good := env.writeUDFImage(t, "Good.iso", "SLUS_123.45;1")
	unknown := env.writeUDFImage(t, "Unknown.iso", "SCUS_999.99;1")
	text := filepath.Join(env.imageDir, "notes.txt")
	testsupport.WriteBytes(t, text, []byte("hello"))

	out, _, err := runCLI(t, []string{"identify", "--format", "json", good, unknown, text}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "2 of 3 images not identified") {
		t.Fatalf("expected partial failure error, got %v", err)
	}
	var reports []imageReport
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	want := []string{statusIdentified, statusNotFound, statusUnsupported}
	for i, r := range reports {
		if r.Status != want[i] {
			t.Fatalf("report %d status = %s, want %s", i, r.Status, want[i])
		}
	}
	if len(reports[1].Tried) != 1 || reports[1].Tried[0] != "SCUS-99999" {
		t.Fatalf("expected tried serials on not-found report: %+v", reports[1])
	}
}

func TestCLIIdentifyRejectsUnknownFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	image := env.writeUDFImage(t, "Example.iso", "SLUS_123.45;1")
	if _, _, err := runCLI(t, []string{"identify", "--format", "xml", image}, env.configPath); err == nil {
		t.Fatal("expected format error")
	}
}

func TestCLIScanDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeUDFImage(t, "a/Example.iso", "SLUS_123.45;1")
	env.writeUDFImage(t, "b/Blank.iso", "README.TXT")
	testsupport.WriteDump(t, filepath.Join(env.imageDir, "b", "c", "dump.BIN"), 64*1024,
		testsupport.Patch{Offset: 40000, Data: []byte("SCES_987.65;1")})
	testsupport.WriteBytes(t, filepath.Join(env.imageDir, "skip.txt"), []byte("SLUS_123.45;"))

	out, _, err := runCLI(t, []string{"scan", "--workers", "3", env.imageDir}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Example.iso", "Blank.iso", "dump.BIN", "Other Game", "Identified 2 of 3 images")
	if strings.Contains(out, "skip.txt") {
		t.Fatalf("scan listed unsupported file:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"scan", "-f", "json", env.imageDir}, env.configPath)
	if err != nil {
		t.Fatalf("scan json: %v", err)
	}
	var reports []imageReport
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	for i := 1; i < len(reports); i++ {
		if reports[i-1].Path > reports[i].Path {
			t.Fatalf("reports not sorted: %v then %v", reports[i-1].Path, reports[i].Path)
		}
	}
}

func TestCLIScanRejectsFile(t *testing.T) {
	env := setupCLITestEnv(t)
	image := env.writeUDFImage(t, "Example.iso", "SLUS_123.45;1")
	if _, _, err := runCLI(t, []string{"scan", image}, env.configPath); err == nil {
		t.Fatal("expected error when scan root is a file")
	}
}

func TestCLIDatabaseCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"db", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("db stats: %v", err)
	}
	requireContains(t, out, "Europe", "USA", "Total")

	out, _, err = runCLI(t, []string{"db", "lookup", "slus_123.45"}, env.configPath)
	if err != nil {
		t.Fatalf("db lookup: %v", err)
	}
	requireContains(t, out, "SLUS-12345", "USA", "Example Game")

	if _, _, err := runCLI(t, []string{"db", "lookup", "SLES-00000"}, env.configPath); err == nil {
		t.Fatal("expected miss error")
	}
	if _, _, err := runCLI(t, []string{"db", "lookup", "ABCD-12345"}, env.configPath); err == nil {
		t.Fatal("expected invalid prefix error")
	}
}

func TestCLIDatabaseDirMissing(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("PS2ID_DATABASE_DIR", filepath.Join(t.TempDir(), "absent"))
	_, _, err := runCLI(t, []string{"db", "stats"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "database directory") {
		t.Fatalf("expected database directory error, got %v", err)
	}
}

func TestCLIConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(t.TempDir(), "ps2id", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath, "Configuration valid")
	if strings.Contains(out, "Warning") {
		t.Fatalf("unexpected warning:\n%s", out)
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	testsupport.WriteBytes(t, bad, []byte("[scan]\nworkers = 0\n[identify]\nchunk_size_mib = -1\n"))
	if _, _, err := runCLI(t, []string{"config", "validate"}, bad); err == nil {
		t.Fatal("expected validation error")
	}
}
