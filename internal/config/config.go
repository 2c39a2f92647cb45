package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joelkehle/startup-valuation/internal/store"
)

// Config holds the valuation server settings.
type Config struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	WebDir          string        `yaml:"web_dir"`
	ShareBaseURL    string        `yaml:"share_base_url"`

	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
}

type StoreConfig struct {
	Backend   string `yaml:"backend"` // memory, file, sqlite
	DBPath    string `yaml:"db_path"`
	StateFile string `yaml:"state_file"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
	Insecure    bool    `yaml:"insecure"`
}

func Default() Config {
	return Config{
		ListenAddr:      ":8090",
		ShutdownTimeout: 10 * time.Second,
		WebDir:          "web",
		Store: StoreConfig{
			Backend:   store.BackendSQLite,
			DBPath:    "./data/valuations.db",
			StateFile: "./data/valuations.json",
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Tracing: TracingConfig{ServiceName: "startup-valuation", SampleRatio: 1},
	}
}

// Load reads an optional YAML file over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && os.Getenv("LISTEN_ADDR") == "" {
		cfg.ListenAddr = ":" + port
	}
	setString(&cfg.WebDir, "WEB_DIR")
	setString(&cfg.ShareBaseURL, "SHARE_BASE_URL")
	setString(&cfg.Store.Backend, "STORE_BACKEND")
	setString(&cfg.Store.DBPath, "DB_PATH")
	setString(&cfg.Store.StateFile, "STATE_FILE")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
	setString(&cfg.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.Tracing.ServiceName, "OTEL_SERVICE_NAME")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("listen_addr is required")
	}
	switch c.Store.Backend {
	case store.BackendMemory:
	case store.BackendFile:
		if c.Store.StateFile == "" {
			return errors.New("store.state_file is required for the file backend")
		}
	case store.BackendSQLite:
		if c.Store.DBPath == "" {
			return errors.New("store.db_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0,1], got %v", c.Tracing.SampleRatio)
	}
	return nil
}
