//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/logs/voicetrack.log",
			expected: filepath.Join(home, "logs", "voicetrack.log"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/var/log/voicetrack.log",
			expected: "/var/log/voicetrack.log",
		},
		{
			name:     "relative path unchanged",
			input:    "voicetrack.log",
			expected: "voicetrack.log",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(xdg.ConfigHome, "voicetrack", "config.toml"), paths[0])
	assert.Equal(t, "config.toml", paths[1], "local config has the highest priority")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFrom_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	global := writeFile(t, dir, "global.toml", `
[log]
level = "DEBUG"
format = "json"

[demo]
messages = 12
tick_ms = 50
`)
	local := writeFile(t, dir, "local.toml", `
[demo]
tick_ms = 250
fail_every = 3
`)

	cfg, err := LoadFrom(global, local)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 12, cfg.Demo.Messages)
	assert.Equal(t, 250, cfg.Demo.TickMS)
	assert.Equal(t, 3, cfg.Demo.FailEvery)
}

func TestLoadFrom_MissingFilesSkipped(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, *cfg)
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.toml", "[demo\nmessages = ")

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestLoadFrom_ExpandsLogFile(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}
	path := writeFile(t, t.TempDir(), "c.toml", "[log]\nfile = \"~/vt.log\"\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "vt.log"), cfg.Log.File)
}

func TestGetLogConfig_Defaults(t *testing.T) {
	cfg := Config{Log: LogConfig{Level: "verbose", Format: "xml"}}

	logCfg := cfg.GetLogConfig()

	assert.Equal(t, "info", logCfg.Level)
	assert.Equal(t, "text", logCfg.Format)
	assert.Equal(t, filepath.Join(xdg.StateHome, "voicetrack", "voicetrack.log"), logCfg.File)
}

func TestGetDemoConfig_Defaults(t *testing.T) {
	cfg := Config{}
	demo := cfg.GetDemoConfig()

	assert.Equal(t, 5, demo.Messages)
	assert.Equal(t, 100, demo.TickMS)
	assert.Equal(t, 8, demo.MessageSeconds)
	assert.Equal(t, 0, demo.FailEvery)
	assert.Equal(t, 100*time.Millisecond, demo.Tick())
	assert.Equal(t, 8*time.Second, demo.MessageLength())
}

func TestGetDemoConfig_InvalidValues(t *testing.T) {
	cfg := Config{
		Demo: DemoConfig{
			Messages:       51, // > 50, should become 5
			TickMS:         5,  // < 10, should become 100
			MessageSeconds: -1, // negative, should become 8
			FailEvery:      -2, // negative, should become 0
		},
	}

	demo := cfg.GetDemoConfig()

	assert.Equal(t, 5, demo.Messages)
	assert.Equal(t, 100, demo.TickMS)
	assert.Equal(t, 8, demo.MessageSeconds)
	assert.Equal(t, 0, demo.FailEvery)
}

func TestGetDemoConfig_CustomValues(t *testing.T) {
	cfg := Config{
		Demo: DemoConfig{Messages: 50, TickMS: 1000, MessageSeconds: 600, FailEvery: 4},
	}

	assert.Equal(t, cfg.Demo, cfg.GetDemoConfig())
}
