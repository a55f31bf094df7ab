// Package config loads the daemon settings.
//
// Settings come from a single YAML file named by the --config flag or the
// HOSTLOCK_CONFIG environment variable. Without either, Default is used.
// Fields left out of the file keep their default values.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/illarion/hostlock/internal/security"
)

// EnvConfig names the settings file when --config is not given
const EnvConfig = "HOSTLOCK_CONFIG"

const (
	DefaultStore  = "hostlock.db"
	DefaultListen = "127.0.0.1:7788"
)

// Config is the daemon configuration
type Config struct {
	// DataDir holds the store file
	DataDir string `yaml:"data_dir"`

	// Store is the bbolt file name inside DataDir
	Store string `yaml:"store"`

	// Listen is the HTTP address. Only loopback addresses are accepted.
	Listen string `yaml:"listen"`

	Log LogConfig `yaml:"log"`

	// Panel and Setup size the windows the daemon opens itself
	Panel SurfaceConfig `yaml:"panel"`
	Setup SurfaceConfig `yaml:"setup"`
}

// LogConfig configures the slog handler
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`

	// Format is text or json
	Format string `yaml:"format"`
}

// SurfaceConfig is a window size in pixels
type SurfaceConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Default returns the built-in configuration
func Default() *Config {
	dataDir := ".hostlock"
	if dir, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(dir, "hostlock")
	}

	return &Config{
		DataDir: dataDir,
		Store:   DefaultStore,
		Listen:  DefaultListen,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Panel: SurfaceConfig{Width: 520, Height: 370},
		Setup: SurfaceConfig{Width: 640, Height: 580},
	}
}

// Load reads the file at path, or the file named by HOSTLOCK_CONFIG when
// path is empty. With neither, it returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads one settings file over the defaults and validates it
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.DataDir = os.ExpandEnv(cfg.DataDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if _, err := security.ValidateName(c.Store); err != nil {
		errs = append(errs, fmt.Errorf("invalid store: %w", err))
	}
	if err := checkLoopback(c.Listen); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("invalid log.format: %q", c.Log.Format))
	}
	if c.Panel.Width <= 0 || c.Panel.Height <= 0 {
		errs = append(errs, errors.New("panel size must be positive"))
	}
	if c.Setup.Width <= 0 || c.Setup.Height <= 0 {
		errs = append(errs, errors.New("setup size must be positive"))
	}

	return errors.Join(errs...)
}

func checkLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("listen address must be loopback: %q", addr)
	}
	return nil
}

// SlogLevel parses Level
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("invalid log.level: %q", l.Level)
	}
	return level, nil
}

// NewLogger builds the process logger
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
