package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ps2id/internal/config"
	"ps2id/internal/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	if content := readLog(t, logPath); strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	if content := readLog(t, logPath); !strings.Contains(content, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerLiftsComponentAndImage(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "subject.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "identify").Info("resolved",
		logging.String(logging.FieldImage, "/games/ps2/Example.iso"),
		logging.String(logging.FieldSerial, "SLUS-12345"),
	)

	content := readLog(t, logPath)
	if !strings.Contains(content, "identify [Example.iso]: resolved") {
		t.Fatalf("expected subject prefix, got %q", content)
	}
	if !strings.Contains(content, "serial=SLUS-12345") {
		t.Fatalf("expected serial attribute, got %q", content)
	}
}

func TestJSONLoggerAddsSessionID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "session.json")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}, SessionID: "abc-123"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("json message", logging.String("k", "v"))

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record[logging.FieldSessionID] != "abc-123" {
		t.Fatalf("expected session id, got %v", record)
	}
	if record["level"] != "info" || record["k"] != "v" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestJSONLoggerEncodesListAndFlagAttrs(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "attrs.json")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("serial not in region databases",
		logging.Any("serials", []string{"SLUS-12345", "SCES-50051"}),
		logging.Bool("raw_scan_on_miss", true),
	)

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	serials, ok := record["serials"].([]any)
	if !ok || len(serials) != 2 || serials[0] != "SLUS-12345" || serials[1] != "SCES-50051" {
		t.Fatalf("unexpected serials attr: %v", record["serials"])
	}
	if record["raw_scan_on_miss"] != true {
		t.Fatalf("unexpected flag attr: %v", record["raw_scan_on_miss"])
	}
}

func TestConsoleLoggerFormatsListAndFlagAttrs(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "attrs.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("serial not in region databases",
		logging.Any("serials", []string{"SLUS-12345"}),
		logging.Bool("raw_scan_on_miss", false),
	)

	content := readLog(t, logPath)
	if !strings.Contains(content, "SLUS-12345") || !strings.Contains(content, "raw_scan_on_miss=false") {
		t.Fatalf("expected list and flag attrs, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown")

	content := readLog(t, logPath)
	if strings.Contains(content, "hidden") || !strings.Contains(content, "shown") {
		t.Fatalf("expected info level filtering, got %q", content)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "ps2id.log")

	logger, closer, err := logging.NewFromConfig(&cfg, "")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Warn("to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if content := readLog(t, cfg.Logging.File); !strings.Contains(content, "to file") {
		t.Fatalf("expected record in log file, got %q", content)
	}
}

func TestOpenCloserReleasesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "closed.log")
	logger, closer, err := logging.Open(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	logger.Info("before close")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	logger.Info("after close")

	content := readLog(t, logPath)
	if !strings.Contains(content, "before close") || strings.Contains(content, "after close") {
		t.Fatalf("unexpected log content after close: %q", content)
	}
	if err := closer.Close(); err == nil {
		t.Fatal("expected error closing an already closed file")
	}
}

func TestOpenStderrOnlyCloserIsNoop(t *testing.T) {
	_, closer, err := logging.Open(logging.Options{Format: "console"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "something odd", "odd_event")

	content := readLog(t, logPath)
	for _, want := range []string{"event_type=odd_event", "error_hint=", "impact="} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
}
