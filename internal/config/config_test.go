package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CachePath != "pantryd.db" {
		t.Errorf("cachePath = %q", cfg.CachePath)
	}
	if cfg.ActiveInterval != 10*time.Second || cfg.HiddenInterval != 60*time.Second {
		t.Errorf("intervals = %v/%v", cfg.ActiveInterval, cfg.HiddenInterval)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("log config = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PANTRYD_ACTIVE_INTERVAL", "5s")
	t.Setenv("PANTRYD_HIDDEN_INTERVAL", "30s")
	t.Setenv("PANTRYD_MAX_INTERVAL", "2m")
	t.Setenv("PANTRYD_LISTS", "abc123, offline-home ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ActiveInterval != 5*time.Second || cfg.MaxInterval != 2*time.Minute {
		t.Errorf("intervals = %v/%v", cfg.ActiveInterval, cfg.MaxInterval)
	}
	if len(cfg.Lists) != 2 || cfg.Lists[0] != "abc123" || cfg.Lists[1] != "offline-home" {
		t.Errorf("lists = %v", cfg.Lists)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("PANTRYD_ACTIVE_INTERVAL", "fast")
	if _, err := Load(); err == nil {
		t.Error("bad duration accepted")
	}
}

func TestLoadRejectsInvertedIntervals(t *testing.T) {
	t.Setenv("PANTRYD_ACTIVE_INTERVAL", "2m")
	t.Setenv("PANTRYD_HIDDEN_INTERVAL", "10s")
	if _, err := Load(); err == nil {
		t.Error("hidden < active accepted")
	}
}
