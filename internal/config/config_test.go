package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SnoozeDuration.Std() != 30*time.Minute {
		t.Errorf("snooze = %v", cfg.SnoozeDuration.Std())
	}
	if cfg.SyncInterval.Std() != 6*time.Hour {
		t.Errorf("sync interval = %v", cfg.SyncInterval.Std())
	}

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults, got %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "quickfit.yaml")
	data := "snooze_duration: 1h15m\nsync_interval: 45m\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SnoozeDuration.Std() != 75*time.Minute {
		t.Errorf("snooze = %v", cfg.SnoozeDuration.Std())
	}
	if cfg.SyncInterval.Std() != 45*time.Minute {
		t.Errorf("sync interval = %v", cfg.SyncInterval.Std())
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "quickfit.yaml")
	if err := os.WriteFile(path, []byte("snooze_duration: soon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unparsable duration")
	}
}
