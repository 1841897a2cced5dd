package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Verify platform defaults
	if cfg.Platform.ResolvConf != "/etc/resolv.conf" {
		t.Errorf("expected resolv.conf '/etc/resolv.conf', got '%s'", cfg.Platform.ResolvConf)
	}
	if cfg.Platform.ProcRoot != "/proc" {
		t.Errorf("expected proc root '/proc', got '%s'", cfg.Platform.ProcRoot)
	}

	// Verify store defaults
	if cfg.Store.Path != "/var/lib/netinfo/db" {
		t.Errorf("expected store path '/var/lib/netinfo/db', got '%s'", cfg.Store.Path)
	}
	if cfg.Store.Retention != 7*24*time.Hour {
		t.Errorf("expected retention 168h, got %s", cfg.Store.Retention)
	}

	if cfg.Store.Interval != time.Minute {
		t.Errorf("expected interval 1m, got %s", cfg.Store.Interval)
	}

	// Verify API defaults
	if cfg.API.Port != 9464 {
		t.Errorf("expected API port 9464, got %d", cfg.API.Port)
	}
	if cfg.API.RateLimitPerMinute != 100 {
		t.Errorf("expected rate limit 100, got %d", cfg.API.RateLimitPerMinute)
	}

	if cfg.Metrics.Namespace != "netinfo" {
		t.Errorf("expected namespace 'netinfo', got '%s'", cfg.Metrics.Namespace)
	}

	// Verify logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got '%s'", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	data := `platform:
  resolv_conf: /run/systemd/resolve/resolv.conf
store:
  path: ` + filepath.Join(tmpDir, "db") + `
  retention: 72h
logging:
  level: debug
  file: ` + filepath.Join(tmpDir, "netinfo.log") + `
`
	if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Platform.ResolvConf != "/run/systemd/resolve/resolv.conf" {
		t.Errorf("expected overridden resolv.conf, got '%s'", cfg.Platform.ResolvConf)
	}
	if cfg.Store.Retention != 72*time.Hour {
		t.Errorf("expected retention 72h, got %s", cfg.Store.Retention)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.Logging.Level)
	}

	// Unset keys keep their defaults
	if cfg.Platform.ProcRoot != "/proc" {
		t.Errorf("expected default proc root, got '%s'", cfg.Platform.ProcRoot)
	}
	if cfg.Metrics.Namespace != "netinfo" {
		t.Errorf("expected default namespace, got '%s'", cfg.Metrics.Namespace)
	}
}

func TestLoadConfigJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	data := `{"metrics": {"namespace": "edge"}, "store": {"retention": "2h"}}`
	if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Metrics.Namespace != "edge" {
		t.Errorf("expected namespace 'edge', got '%s'", cfg.Metrics.Namespace)
	}
	if cfg.Store.Retention != 2*time.Hour {
		t.Errorf("expected retention 2h, got %s", cfg.Store.Retention)
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("logging:\n  level: loud\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected validation error for unknown log level")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Path != DefaultConfig().Store.Path {
		t.Errorf("expected default store path, got '%s'", cfg.Store.Path)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("NETINFO_STORE_PATH", "/tmp/netinfo-db")
	t.Setenv("NETINFO_STORE_RETENTION", "30m")
	t.Setenv("NETINFO_LOG_LEVEL", "warn")
	t.Setenv("NETINFO_API_PORT", "8081")
	t.Setenv("NETINFO_STORE_INTERVAL", "15s")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store.Path != "/tmp/netinfo-db" {
		t.Errorf("expected store path from env, got '%s'", cfg.Store.Path)
	}
	if cfg.Store.Retention != 30*time.Minute {
		t.Errorf("expected retention 30m, got %s", cfg.Store.Retention)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level 'warn', got '%s'", cfg.Logging.Level)
	}
	if cfg.API.Port != 8081 {
		t.Errorf("expected API port 8081, got %d", cfg.API.Port)
	}
	if cfg.Store.Interval != 15*time.Second {
		t.Errorf("expected interval 15s, got %s", cfg.Store.Interval)
	}
}

func TestApplyEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("NETINFO_METRICS_NAMESPACE=lab\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("NETINFO_METRICS_NAMESPACE") })

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(envFile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Metrics.Namespace != "lab" {
		t.Errorf("expected namespace 'lab' from env file, got '%s'", cfg.Metrics.Namespace)
	}
}

func TestApplyEnvInvalidRetention(t *testing.T) {
	t.Setenv("NETINFO_STORE_RETENTION", "soon")

	if err := DefaultConfig().ApplyEnv(""); err == nil {
		t.Error("expected error for unparsable retention")
	}
}

func TestApplyEnvInvalidPort(t *testing.T) {
	t.Setenv("NETINFO_API_PORT", "http")

	if err := DefaultConfig().ApplyEnv(""); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		expectErr bool
	}{
		{
			name:      "valid default config",
			modify:    func(c *Config) {},
			expectErr: false,
		},
		{
			name: "empty store path",
			modify: func(c *Config) {
				c.Store.Path = ""
			},
			expectErr: true,
		},
		{
			name: "retention too short",
			modify: func(c *Config) {
				c.Store.Retention = time.Second
			},
			expectErr: true,
		},
		{
			name: "interval too short",
			modify: func(c *Config) {
				c.Store.Interval = time.Millisecond
			},
			expectErr: true,
		},
		{
			name: "kernel-assigned API port",
			modify: func(c *Config) {
				c.API.Port = 0
			},
			expectErr: false,
		},
		{
			name: "API port out of range",
			modify: func(c *Config) {
				c.API.Port = 70000
			},
			expectErr: true,
		},
		{
			name: "zero rate limit",
			modify: func(c *Config) {
				c.API.RateLimitPerMinute = 0
			},
			expectErr: true,
		},
		{
			name: "empty resolv.conf path",
			modify: func(c *Config) {
				c.Platform.ResolvConf = ""
			},
			expectErr: true,
		},
		{
			name: "empty proc root",
			modify: func(c *Config) {
				c.Platform.ProcRoot = ""
			},
			expectErr: true,
		},
		{
			name: "empty namespace",
			modify: func(c *Config) {
				c.Metrics.Namespace = ""
			},
			expectErr: true,
		},
		{
			name: "invalid log level",
			modify: func(c *Config) {
				c.Logging.Level = "invalid"
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Logging.File = filepath.Join(t.TempDir(), "test.log")
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
