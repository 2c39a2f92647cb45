package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":8090" || cfg.Store.Backend != "sqlite" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
listen_addr: ":9000"
shutdown_timeout: 3s
store:
  backend: file
  state_file: /tmp/valuations.json
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("unexpected listen addr: %s", cfg.ListenAddr)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected shutdown timeout: %s", cfg.ShutdownTimeout)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Store.Backend != "memory" {
		t.Fatalf("expected env to override backend, got %s", cfg.Store.Backend)
	}
}

func TestPortEnvFallback(t *testing.T) {
	t.Setenv("PORT", "7000")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":7000" {
		t.Fatalf("unexpected listen addr: %s", cfg.ListenAddr)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
	cfg = Default()
	cfg.Tracing.SampleRatio = 2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected sample ratio validation error")
	}
}
