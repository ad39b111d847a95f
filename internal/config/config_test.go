package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-acme/lego/v4/lego"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("ACME_ENV")
	os.Unsetenv("HTTP_ADDR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.Poll.IntervalSec != 2 {
		t.Errorf("Expected poll interval 2, got %d", cfg.Poll.IntervalSec)
	}
	if cfg.Poll.MaxAttempts != 15 {
		t.Errorf("Expected poll max attempts 15, got %d", cfg.Poll.MaxAttempts)
	}
	if cfg.Store.RetentionMinutes != 60 {
		t.Errorf("Expected retention 60 minutes, got %d", cfg.Store.RetentionMinutes)
	}
	if cfg.ACME.DirectoryURL != lego.LEDirectoryStaging {
		t.Errorf("Expected staging directory by default, got %s", cfg.ACME.DirectoryURL)
	}
}

func TestLoad_ProductionDirectory(t *testing.T) {
	os.Setenv("ACME_ENV", "production")
	defer os.Unsetenv("ACME_ENV")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ACME.DirectoryURL != lego.LEDirectoryProduction {
		t.Errorf("Expected production directory, got %s", cfg.ACME.DirectoryURL)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("ACME_POLL_INTERVAL_SEC", "5")
	os.Setenv("REQUEST_RETENTION_MINUTES", "30")
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	defer func() {
		os.Unsetenv("HTTP_ADDR")
		os.Unsetenv("ACME_POLL_INTERVAL_SEC")
		os.Unsetenv("REQUEST_RETENTION_MINUTES")
		os.Unsetenv("REDIS_ADDR")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("Expected :9090, got %s", cfg.HTTPAddr)
	}
	if cfg.Poll.IntervalSec != 5 {
		t.Errorf("Expected poll interval 5, got %d", cfg.Poll.IntervalSec)
	}
	if cfg.Store.RetentionMinutes != 30 {
		t.Errorf("Expected retention 30, got %d", cfg.Store.RetentionMinutes)
	}
	if cfg.Redis.Addr != "redis.example.com:6379" {
		t.Errorf("Expected custom Redis addr, got %s", cfg.Redis.Addr)
	}
}

func TestLoad_AdminRequiresJWTSecret(t *testing.T) {
	os.Setenv("ADMIN_USERNAME", "admin")
	os.Unsetenv("JWT_SECRET")
	defer os.Unsetenv("ADMIN_USERNAME")

	if _, err := Load(); err == nil {
		t.Error("Expected error when admin is configured without JWT_SECRET")
	}
}

func TestLoadFromINI(t *testing.T) {
	iniContent := `
[http]
addr = :7070

[acme]
poll_interval_sec = 3
poll_max_attempts = 20

[store]
retention_minutes = 45
sweeper_enabled = false
`
	path := filepath.Join(t.TempDir(), "certhub.ini")
	if err := os.WriteFile(path, []byte(iniContent), 0o644); err != nil {
		t.Fatalf("Failed to write INI file: %v", err)
	}

	cfg, err := LoadFromINI(path)
	if err != nil {
		t.Fatalf("LoadFromINI() failed: %v", err)
	}

	if cfg.HTTPAddr != ":7070" {
		t.Errorf("Expected :7070, got %s", cfg.HTTPAddr)
	}
	if cfg.Poll.IntervalSec != 3 || cfg.Poll.MaxAttempts != 20 {
		t.Errorf("Unexpected poll config: %+v", cfg.Poll)
	}
	if cfg.Store.RetentionMinutes != 45 {
		t.Errorf("Expected retention 45, got %d", cfg.Store.RetentionMinutes)
	}
	if cfg.Store.SweeperEnabled {
		t.Error("Sweeper should be disabled by INI")
	}
}

func TestLoadFromINI_EnvOverridesINI(t *testing.T) {
	iniContent := `
[http]
addr = :7070
`
	path := filepath.Join(t.TempDir(), "certhub.ini")
	if err := os.WriteFile(path, []byte(iniContent), 0o644); err != nil {
		t.Fatalf("Failed to write INI file: %v", err)
	}

	os.Setenv("HTTP_ADDR", ":6060")
	defer os.Unsetenv("HTTP_ADDR")

	cfg, err := LoadFromINI(path)
	if err != nil {
		t.Fatalf("LoadFromINI() failed: %v", err)
	}

	if cfg.HTTPAddr != ":6060" {
		t.Errorf("Environment should take priority over INI, got %s", cfg.HTTPAddr)
	}
}
