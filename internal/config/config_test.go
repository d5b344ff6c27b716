package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimal = "target_players: [alice]\nwebhook_url: https://discord.com/api/webhooks/1/x\nhistory:\n  dsn: sqlite://:memory:\n"

func TestLoad(t *testing.T) {
	t.Run("valid yaml loads", func(t *testing.T) {
		cfg, err := Load(filepath.Join("testdata", "valid.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(cfg.TargetPlayers) != 2 || cfg.TargetPlayers[1] != "carol" {
			t.Fatalf("unexpected target players: %v", cfg.TargetPlayers)
		}
		if cfg.Lookback != 14*24*time.Hour {
			t.Fatalf("expected 336h lookback, got %s", cfg.Lookback)
		}
		if cfg.Dispatch.Workers != 4 || cfg.Dispatch.QueueSize != 256 {
			t.Fatalf("unexpected dispatch config: %+v", cfg.Dispatch)
		}
		if cfg.History.TablePrefix != "co_" {
			t.Fatalf("expected default table prefix, got %q", cfg.History.TablePrefix)
		}
		if cfg.Logging.Format != "console" {
			t.Fatalf("expected console format, got %q", cfg.Logging.Format)
		}
	})

	t.Run("valid toml loads", func(t *testing.T) {
		cfg, err := Load(filepath.Join("testdata", "valid.toml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Lookback != 48*time.Hour {
			t.Fatalf("expected 48h lookback, got %s", cfg.Lookback)
		}
		if cfg.History.TablePrefix != "cp_" {
			t.Fatalf("expected cp_ prefix, got %q", cfg.History.TablePrefix)
		}
		if cfg.Dispatch.Timeout != 5*time.Second || cfg.Dispatch.RatePerSecond != 2.5 {
			t.Fatalf("unexpected dispatch config: %+v", cfg.Dispatch)
		}
		if cfg.Telemetry.TraceExporter != "otlp" {
			t.Fatalf("expected otlp exporter, got %q", cfg.Telemetry.TraceExporter)
		}
	})

	t.Run("defaults apply", func(t *testing.T) {
		cfg, err := Load(writeTempConfig(t, minimal))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Lookback != 28*24*time.Hour {
			t.Fatalf("expected 28 day lookback, got %s", cfg.Lookback)
		}
		if cfg.Gateway.Listen != ":8765" {
			t.Fatalf("expected default listen address, got %q", cfg.Gateway.Listen)
		}
	})

	invalid := []struct {
		name     string
		contents string
		want     string
	}{
		{"missing target players", "webhook_url: https://discord.com/api/webhooks/1/x\nhistory:\n  dsn: sqlite://:memory:\n", "target_players is required"},
		{"empty target players", "target_players: []\nwebhook_url: https://discord.com/api/webhooks/1/x\nhistory:\n  dsn: sqlite://:memory:\n", "target_players is required"},
		{"blank player", "target_players: [alice, '  ']\nwebhook_url: https://discord.com/api/webhooks/1/x\nhistory:\n  dsn: sqlite://:memory:\n", "target_players[1] is blank"},
		{"duplicate player", "target_players: [alice, alice]\nwebhook_url: https://discord.com/api/webhooks/1/x\nhistory:\n  dsn: sqlite://:memory:\n", "duplicate player"},
		{"missing webhook url", "target_players: [alice]\nhistory:\n  dsn: sqlite://:memory:\n", "webhook_url is required"},
		{"plain http webhook", "target_players: [alice]\nwebhook_url: http://discord.com/api/webhooks/1/x\nhistory:\n  dsn: sqlite://:memory:\n", "webhook_url must use https"},
		{"missing dsn", "target_players: [alice]\nwebhook_url: https://discord.com/api/webhooks/1/x\n", "history.dsn is required"},
		{"unknown dsn scheme", "target_players: [alice]\nwebhook_url: https://discord.com/api/webhooks/1/x\nhistory:\n  dsn: mysql://db/co\n", "history.dsn must start with"},
		{"bad table prefix", minimal + "  table_prefix: \"co; drop\"\n", "history.table_prefix may only contain"},
		{"bad log level", minimal + "logging:\n  level: loud\n", "logging.level must be one of"},
		{"zero workers", minimal + "dispatch:\n  workers: 0\n", "dispatch.workers must be at least 1"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tt.contents))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}

	t.Run("file not found", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeTempConfig(t, "target_players: [\n"))
		if err == nil {
			t.Fatalf("expected error")
		}
		if errors.Is(err, ErrInvalid) {
			t.Fatalf("decode errors should not be reported as ErrInvalid: %v", err)
		}
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvWebhookURL, "https://discord.com/api/webhooks/2/from-env")
	t.Setenv(EnvHistoryDSN, "postgres://localhost/co")
	t.Setenv(EnvGatewayToken, "s3cret")

	cfg, err := Load(writeTempConfig(t, "target_players: [alice]\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.WebhookURL != "https://discord.com/api/webhooks/2/from-env" {
		t.Fatalf("webhook url not overridden: %q", cfg.WebhookURL)
	}
	if cfg.History.DSN != "postgres://localhost/co" {
		t.Fatalf("dsn not overridden: %q", cfg.History.DSN)
	}
	if cfg.Gateway.Token != "s3cret" {
		t.Fatalf("token not overridden: %q", cfg.Gateway.Token)
	}
}

func TestHistoryBackend(t *testing.T) {
	tests := []struct {
		dsn  string
		want Backend
	}{
		{"sqlite:///data/database.db", BackendSQLite},
		{"sqlite://:memory:", BackendSQLite},
		{"postgres://localhost/co", BackendPostgres},
		{"postgresql://localhost/co", BackendPostgres},
	}
	for _, tt := range tests {
		got, err := HistoryBackend(tt.dsn)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tt.dsn, err)
		}
		if got != tt.want {
			t.Fatalf("%s: expected %s, got %s", tt.dsn, tt.want, got)
		}
	}
	if _, err := HistoryBackend("file:co.db"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
