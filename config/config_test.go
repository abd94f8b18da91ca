package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `game:
  email: "bot@example.com"
  password: "secret"
  alliance_missions: true
bot:
  check_interval_seconds: 30
  max_missions_per_cycle: 5
  auto_set_status6_on_fail: true
cache:
  path: "cache.json"
logging:
  backend: "sqlite"
  path: "dispatch.db"
metrics:
  prometheus:
    enabled: true
    listen: ":9999"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"email", cfg.Game.Email, "bot@example.com"},
		{"base url default", cfg.Game.BaseURL, "https://www.leitstellenspiel.de"},
		{"alliance", cfg.Game.AllianceMissions, true},
		{"interval", cfg.Bot.CheckIntervalSeconds, 30},
		{"missions per cycle", cfg.Bot.MaxMissionsPerCycle, 5},
		{"status6 flag", cfg.Bot.AutoSetStatus6OnFail, true},
		{"load more default", cfg.Bot.MaxLoadMoreClicks, 50},
		{"cache path", cfg.Cache.Path, "cache.json"},
		{"cache age default", cfg.Cache.MaxAgeHours, 24},
		{"log backend", cfg.Logging.Backend, "sqlite"},
		{"log level default", cfg.Logging.Level, "info"},
		{"prom listen", cfg.Metrics.Prometheus.Listen, ":9999"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `game:
  email: "bot@example.com"
  password: "secret"
`)
	t.Setenv("LSB_GAME__EMAIL", "other@example.com")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Game.Email != "other@example.com" {
		t.Fatalf("env override ignored: %s", cfg.Game.Email)
	}
}

func TestLoadRejectsMissingCredentials(t *testing.T) {
	path := writeConfig(t, `bot:
  check_interval_seconds: 10
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestLoadRejectsUnknownLogBackend(t *testing.T) {
	path := writeConfig(t, `game:
  email: "a@b.c"
  password: "x"
logging:
  backend: "csv"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown log backend")
	}
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	path := writeConfig(t, `game:
  email: "a@b.c"
  password: "x"
logging:
  level: "verbose"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
