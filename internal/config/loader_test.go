package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}

	// Should return defaults
	expected := Default()
	if cfg.Hostname != expected.Hostname {
		t.Errorf("expected hostname %q, got %q", expected.Hostname, cfg.Hostname)
	}
}

func TestLoadValidTOML(t *testing.T) {
	content := `
[chatd]
hostname = "chat.example.com"
log_level = "debug"
command_path = "/usr/local/libexec/chatd:/usr/bin"
store_dir = "/var/lib/chatd"
history_file = ".history"

[chatd.limits]
max_connections = 50

[chatd.timeouts]
connection = "15m"
command = "2m"
idle = "45m"

[[chatd.listeners]]
address = ":4321"

[[chatd.listeners]]
address = ":4322"
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Hostname != "chat.example.com" {
		t.Errorf("hostname = %q, want 'chat.example.com'", cfg.Hostname)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, want 'debug'", cfg.LogLevel)
	}

	if cfg.CommandPath != "/usr/local/libexec/chatd:/usr/bin" {
		t.Errorf("command_path = %q, want '/usr/local/libexec/chatd:/usr/bin'", cfg.CommandPath)
	}

	if cfg.StoreDir != "/var/lib/chatd" {
		t.Errorf("store_dir = %q, want '/var/lib/chatd'", cfg.StoreDir)
	}

	if cfg.HistoryFile != ".history" {
		t.Errorf("history_file = %q, want '.history'", cfg.HistoryFile)
	}

	if cfg.Limits.MaxConnections != 50 {
		t.Errorf("limits.max_connections = %d, want 50", cfg.Limits.MaxConnections)
	}

	if cfg.Timeouts.Connection != "15m" {
		t.Errorf("timeouts.connection = %q, want '15m'", cfg.Timeouts.Connection)
	}

	if cfg.Timeouts.Command != "2m" {
		t.Errorf("timeouts.command = %q, want '2m'", cfg.Timeouts.Command)
	}

	if cfg.Timeouts.Idle != "45m" {
		t.Errorf("timeouts.idle = %q, want '45m'", cfg.Timeouts.Idle)
	}

	if len(cfg.Listeners) != 2 {
		t.Fatalf("expected 2 listeners, got %d", len(cfg.Listeners))
	}

	if cfg.Listeners[0].Address != ":4321" {
		t.Errorf("listener[0] = %+v, want address=':4321'", cfg.Listeners[0])
	}

	if cfg.Listeners[1].Address != ":4322" {
		t.Errorf("listener[1] = %+v, want address=':4322'", cfg.Listeners[1])
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	content := `
[chatd
hostname = "broken
`

	path := createTempConfig(t, content)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML, got nil")
	}
}

func TestLoadPartialConfig(t *testing.T) {
	content := `
[chatd]
hostname = "partial.example.com"
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Provided value should be used
	if cfg.Hostname != "partial.example.com" {
		t.Errorf("hostname = %q, want 'partial.example.com'", cfg.Hostname)
	}

	// Defaults should be preserved for unspecified values
	defaults := Default()
	if cfg.LogLevel != defaults.LogLevel {
		t.Errorf("log_level = %q, want default %q", cfg.LogLevel, defaults.LogLevel)
	}

	if cfg.Limits.MaxConnections != defaults.Limits.MaxConnections {
		t.Errorf("max_connections = %d, want default %d", cfg.Limits.MaxConnections, defaults.Limits.MaxConnections)
	}

	if cfg.StoreDir != defaults.StoreDir {
		t.Errorf("store_dir = %q, want default %q", cfg.StoreDir, defaults.StoreDir)
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := Default()

	flags := &Flags{
		Hostname:       "flag.example.com",
		LogLevel:       "debug",
		MaxConnections: 25,
		CommandPath:    "/flag/bin",
		StoreDir:       "/flag/store",
	}

	result := ApplyFlags(cfg, flags)

	if result.Hostname != "flag.example.com" {
		t.Errorf("hostname = %q, want 'flag.example.com'", result.Hostname)
	}

	if result.LogLevel != "debug" {
		t.Errorf("log_level = %q, want 'debug'", result.LogLevel)
	}

	if result.Limits.MaxConnections != 25 {
		t.Errorf("max_connections = %d, want 25", result.Limits.MaxConnections)
	}

	if result.CommandPath != "/flag/bin" {
		t.Errorf("command_path = %q, want '/flag/bin'", result.CommandPath)
	}

	if result.StoreDir != "/flag/store" {
		t.Errorf("store_dir = %q, want '/flag/store'", result.StoreDir)
	}
}

func TestApplyFlagsEmptyValuesDoNotOverride(t *testing.T) {
	cfg := Default()
	cfg.Hostname = "original.example.com"
	cfg.LogLevel = "warn"
	cfg.Limits.MaxConnections = 50

	// Empty/zero flags should not override
	flags := &Flags{
		Hostname:       "",
		LogLevel:       "",
		MaxConnections: 0,
	}

	result := ApplyFlags(cfg, flags)

	if result.Hostname != "original.example.com" {
		t.Errorf("hostname = %q, want 'original.example.com' (should not be overridden)", result.Hostname)
	}

	if result.LogLevel != "warn" {
		t.Errorf("log_level = %q, want 'warn' (should not be overridden)", result.LogLevel)
	}

	if result.Limits.MaxConnections != 50 {
		t.Errorf("max_connections = %d, want 50 (should not be overridden)", result.Limits.MaxConnections)
	}
}

func TestApplyFlagsListenReplacesAllListeners(t *testing.T) {
	cfg := Default()
	cfg.Listeners = []ListenerConfig{
		{Address: ":4321"},
		{Address: ":4322"},
	}

	flags := &Flags{
		Listen: ":1100",
	}

	result := ApplyFlags(cfg, flags)

	if len(result.Listeners) != 1 {
		t.Fatalf("expected 1 listener, got %d", len(result.Listeners))
	}

	if result.Listeners[0].Address != ":1100" {
		t.Errorf("listener address = %q, want ':1100'", result.Listeners[0].Address)
	}
}

func TestLoadMetricsConfig(t *testing.T) {
	content := `
[chatd]
hostname = "chat.example.com"

[chatd.metrics]
enabled = true
address = ":9200"
path = "/custom-metrics"
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Metrics.Enabled {
		t.Errorf("metrics.enabled = %v, want true", cfg.Metrics.Enabled)
	}

	if cfg.Metrics.Address != ":9200" {
		t.Errorf("metrics.address = %q, want ':9200'", cfg.Metrics.Address)
	}

	if cfg.Metrics.Path != "/custom-metrics" {
		t.Errorf("metrics.path = %q, want '/custom-metrics'", cfg.Metrics.Path)
	}
}

func TestLoadMetricsConfigPartial(t *testing.T) {
	content := `
[chatd]
hostname = "chat.example.com"

[chatd.metrics]
enabled = true
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// enabled should be set from file
	if !cfg.Metrics.Enabled {
		t.Errorf("metrics.enabled = %v, want true", cfg.Metrics.Enabled)
	}

	// address and path should use defaults
	defaults := Default()
	if cfg.Metrics.Address != defaults.Metrics.Address {
		t.Errorf("metrics.address = %q, want default %q", cfg.Metrics.Address, defaults.Metrics.Address)
	}

	if cfg.Metrics.Path != defaults.Metrics.Path {
		t.Errorf("metrics.path = %q, want default %q", cfg.Metrics.Path, defaults.Metrics.Path)
	}
}

func TestFlagPriorityOverConfig(t *testing.T) {
	content := `
[chatd]
hostname = "config.example.com"
log_level = "info"

[chatd.limits]
max_connections = 100
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Flags should override config file values
	flags := &Flags{
		Hostname:       "flag.example.com",
		MaxConnections: 50,
	}

	result := ApplyFlags(cfg, flags)

	// Flag values should win
	if result.Hostname != "flag.example.com" {
		t.Errorf("hostname = %q, want 'flag.example.com' (flag should override)", result.Hostname)
	}

	if result.Limits.MaxConnections != 50 {
		t.Errorf("max_connections = %d, want 50 (flag should override)", result.Limits.MaxConnections)
	}

	// Non-overridden config values should remain
	if result.LogLevel != "info" {
		t.Errorf("log_level = %q, want 'info' (config value should remain)", result.LogLevel)
	}
}

func TestLoadWithFlags(t *testing.T) {
	content := `
[chatd]
hostname = "config.example.com"

[chatd.limits]
max_connections = 10
`
	path := createTempConfig(t, content)

	f := &Flags{
		ConfigPath: path,
		LogLevel:   "debug",
	}

	cfg, err := LoadWithFlags(f)
	if err != nil {
		t.Fatalf("LoadWithFlags() error = %v", err)
	}

	if cfg.Hostname != "config.example.com" {
		t.Errorf("hostname = %q, want 'config.example.com'", cfg.Hostname)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, want 'debug' (from flag)", cfg.LogLevel)
	}
	if cfg.Limits.MaxConnections != 10 {
		t.Errorf("max_connections = %d, want 10 (from file)", cfg.Limits.MaxConnections)
	}
}

func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create temp config: %v", err)
	}
	return path
}
