package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hostlock.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
	if cfg.Panel.Width != 520 || cfg.Panel.Height != 370 {
		t.Errorf("Unexpected panel size %+v", cfg.Panel)
	}
	if cfg.Setup.Width != 640 || cfg.Setup.Height != 580 {
		t.Errorf("Unexpected setup size %+v", cfg.Setup)
	}
	if cfg.Store != DefaultStore {
		t.Errorf("Unexpected store %s", cfg.Store)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv(EnvConfig, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}
	if cfg.Listen != DefaultListen {
		t.Errorf("Expected default listen address, got %s", cfg.Listen)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOSTLOCK_TEST_DIR", dir)
	path := writeConfig(t, `
data_dir: ${HOSTLOCK_TEST_DIR}/data
listen: 127.0.0.1:9000
log:
  level: debug
  format: json
panel:
  width: 600
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DataDir != filepath.Join(dir, "data") {
		t.Errorf("Data dir not expanded: %s", cfg.DataDir)
	}
	if cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("Unexpected listen %s", cfg.Listen)
	}
	if cfg.Panel.Width != 600 || cfg.Panel.Height != 370 {
		t.Errorf("Partial panel override lost defaults: %+v", cfg.Panel)
	}
	if cfg.Store != DefaultStore {
		t.Errorf("Store default lost: %s", cfg.Store)
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "listen: localhost:7000\n")
	t.Setenv(EnvConfig, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Listen != "localhost:7000" {
		t.Errorf("Config from %s not used: %s", EnvConfig, cfg.Listen)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"public listen":  "listen: 0.0.0.0:7788\n",
		"bad listen":     "listen: nope\n",
		"bad level":      "log:\n  level: loud\n",
		"bad format":     "log:\n  format: xml\n",
		"store path":     "store: ../evil.db\n",
		"negative panel": "panel:\n  width: -1\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFile(writeConfig(t, content)); err == nil {
				t.Error("Expected validation error")
			}
		})
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := LoadFile(writeConfig(t, "listen: [\n")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info message logged at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("Unexpected log output: %s", out)
	}
}
