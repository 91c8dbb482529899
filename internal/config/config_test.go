package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "release" {
		t.Errorf("mode = %q", cfg.Mode)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d", cfg.Port)
	}
	if cfg.ReadLimit != 32768 {
		t.Errorf("read_limit = %d", cfg.ReadLimit)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("ping_period = %v", cfg.PingPeriod)
	}
	if cfg.RoomTTL != 30*time.Minute {
		t.Errorf("room_ttl = %v", cfg.RoomTTL)
	}
	if cfg.SweepPeriod != 5*time.Minute {
		t.Errorf("sweep_period = %v", cfg.SweepPeriod)
	}
}

func TestLoadRejectsMalformedConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "test")

	if err := os.MkdirAll("config", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("config/config.test.yaml", []byte("port: [80, 81]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// The caller must get an error here, not a half-filled config.
	if _, err := Load(); err == nil {
		t.Fatal("malformed config must fail to load")
	}
}
