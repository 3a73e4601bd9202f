package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/listingwatch")
	t.Setenv("REDIS_URL", "localhost:6379")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.PollInterval != 300*time.Second {
		t.Errorf("PollInterval = %v, want 5m", cfg.PollInterval)
	}
	if cfg.MaxItemsPerCheck != 10 {
		t.Errorf("MaxItemsPerCheck = %d, want 10", cfg.MaxItemsPerCheck)
	}
	if cfg.LookbackDays != 7 {
		t.Errorf("LookbackDays = %d, want 7", cfg.LookbackDays)
	}
	if cfg.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", cfg.RetentionDays)
	}
	if cfg.NotifyDelay != time.Second {
		t.Errorf("NotifyDelay = %v, want 1s", cfg.NotifyDelay)
	}
	if cfg.ProxyListFile != "" {
		t.Errorf("ProxyListFile = %q, want empty", cfg.ProxyListFile)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POLL_INTERVAL", "90s")
	t.Setenv("MAX_ITEMS_PER_CHECK", "3")
	t.Setenv("PROXY_LIST_FILE", "/etc/listingwatch/proxies.txt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PollInterval != 90*time.Second {
		t.Errorf("PollInterval = %v, want 90s", cfg.PollInterval)
	}
	if cfg.MaxItemsPerCheck != 3 {
		t.Errorf("MaxItemsPerCheck = %d, want 3", cfg.MaxItemsPerCheck)
	}
	if cfg.ProxyListFile != "/etc/listingwatch/proxies.txt" {
		t.Errorf("ProxyListFile = %q", cfg.ProxyListFile)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "localhost:6379")

	if _, err := Load(); err == nil {
		t.Error("expected an error without DATABASE_URL")
	}
}

func TestLoad_RejectsNonPositiveMaxItems(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_ITEMS_PER_CHECK", "-1")

	if _, err := Load(); err == nil {
		t.Error("expected an error for a negative MAX_ITEMS_PER_CHECK")
	}
}
