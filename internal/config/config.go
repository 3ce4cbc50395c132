package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "voicetrack"

type Config struct {
	Log  LogConfig  `koanf:"log"`
	Demo DemoConfig `koanf:"demo"`
}

// LogConfig controls where and how much the binary logs.
// The terminal belongs to the UI, so logs go to a file.
type LogConfig struct {
	Level  string `koanf:"level"`  // "trace", "debug", "info", "warn", "error" (default: "info")
	Format string `koanf:"format"` // "text" or "json" (default: "text")
	File   string `koanf:"file"`   // default: $XDG_STATE_HOME/voicetrack/voicetrack.log
}

// DemoConfig drives the simulated audio engine.
type DemoConfig struct {
	Messages       int `koanf:"messages"`        // Number of seeded voice messages (1-50, default: 5)
	TickMS         int `koanf:"tick_ms"`         // Engine tick in milliseconds (10-1000, default: 100)
	MessageSeconds int `koanf:"message_seconds"` // Length of seeded messages (1-600, default: 8)
	FailEvery      int `koanf:"fail_every"`      // Every Nth playback fails (0 disables, default: 0)
}

// Load reads the config files in priority order.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given TOML files, skipping missing ones.
// Later files override earlier ones.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/voicetrack/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log

	switch cfg.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		cfg.Level = "info"
	}
	if cfg.Format != "json" {
		cfg.Format = "text"
	}
	if cfg.File == "" {
		cfg.File = filepath.Join(xdg.StateHome, appName, appName+".log")
	}

	return cfg
}

// GetDemoConfig returns the demo configuration with defaults applied.
func (c *Config) GetDemoConfig() DemoConfig {
	cfg := c.Demo

	if cfg.Messages <= 0 || cfg.Messages > 50 {
		cfg.Messages = 5
	}
	if cfg.TickMS < 10 || cfg.TickMS > 1000 {
		cfg.TickMS = 100
	}
	if cfg.MessageSeconds <= 0 || cfg.MessageSeconds > 600 {
		cfg.MessageSeconds = 8
	}
	if cfg.FailEvery < 0 {
		cfg.FailEvery = 0
	}

	return cfg
}

// Tick returns the engine tick as a duration.
func (d DemoConfig) Tick() time.Duration {
	return time.Duration(d.TickMS) * time.Millisecond
}

// MessageLength returns the length of seeded messages.
func (d DemoConfig) MessageLength() time.Duration {
	return time.Duration(d.MessageSeconds) * time.Second
}
