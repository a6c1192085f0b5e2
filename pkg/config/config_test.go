package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
server:
  address: "127.0.0.1"
  port: 9090
  db_path: "/var/lib/pagethread"
security:
  cors:
    allowed_origins: ["https://example.com"]
  rate_limit:
    rps: 5
    burst: 10
  api_keys:
    backend: ["bk1"]
    frontend: ["fk1", "fk2"]
    admin: ["ak1"]
logging:
  level: "debug"
limits:
  max_body_bytes: 1024
  max_attachments: 4
retention:
  enabled: true
  cron: "0 3 * * *"
  period: 30d
  dry_run: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pagethread.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadParsesFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Addr(); got != "127.0.0.1:9090" {
		t.Fatalf("addr = %s", got)
	}
	if cfg.Server.DBPath != "/var/lib/pagethread" {
		t.Fatalf("db path = %s", cfg.Server.DBPath)
	}
	if cfg.Security.RateLimit.RPS != 5 || cfg.Security.RateLimit.Burst != 10 {
		t.Fatalf("rate limit = %+v", cfg.Security.RateLimit)
	}
	if cfg.Limits.MaxBodyBytes != 1024 || cfg.Limits.MaxAttachments != 4 {
		t.Fatalf("limits = %+v", cfg.Limits)
	}
	if !cfg.Retention.Enabled || !cfg.Retention.DryRun {
		t.Fatalf("retention = %+v", cfg.Retention)
	}
	if cfg.Retention.Period.Std() != 30*24*time.Hour {
		t.Fatalf("period = %v", cfg.Retention.Period.Std())
	}
}

func TestDurationAcceptsGoSyntax(t *testing.T) {
	cfg, err := Load(writeConfig(t, "retention:\n  period: 90m\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Retention.Period.Std() != 90*time.Minute {
		t.Fatalf("period = %v", cfg.Retention.Period.Std())
	}
}

func TestAddrDefaultsPort(t *testing.T) {
	var cfg Config
	if got := cfg.Addr(); got != ":8080" {
		t.Fatalf("addr = %s", got)
	}
}

func TestLoadEffectiveMissingFileUsesEnv(t *testing.T) {
	t.Setenv("PAGETHREAD_ADDR", "0.0.0.0:7070")
	t.Setenv("PAGETHREAD_DB_PATH", "/tmp/pt-db")
	t.Setenv("PAGETHREAD_FRONTEND_KEYS", "fk-a, fk-b")

	cfg, envUsed, err := LoadEffective(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load effective: %v", err)
	}
	if !envUsed {
		t.Fatal("env not reported as used")
	}
	if got := cfg.Addr(); got != "0.0.0.0:7070" {
		t.Fatalf("addr = %s", got)
	}
	if cfg.Server.DBPath != "/tmp/pt-db" {
		t.Fatalf("db path = %s", cfg.Server.DBPath)
	}
	if len(cfg.Security.APIKeys.Frontend) != 2 {
		t.Fatalf("frontend keys = %v", cfg.Security.APIKeys.Frontend)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("PAGETHREAD_LOG_LEVEL", "warn")
	cfg, _, err := LoadEffective(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load effective: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("level = %s", cfg.Logging.Level)
	}
}

func TestRuntimeKeyDerivation(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rc := cfg.Runtime()
	if _, ok := rc.BackendKeys["bk1"]; !ok {
		t.Fatal("backend key missing")
	}
	if _, ok := rc.FrontendKeys["fk2"]; !ok {
		t.Fatal("frontend key missing")
	}
	// backend and admin keys double as signing keys; frontend keys do not
	if _, ok := rc.SigningKeys["bk1"]; !ok {
		t.Fatal("backend key not registered for signing")
	}
	if _, ok := rc.SigningKeys["ak1"]; !ok {
		t.Fatal("admin key not registered for signing")
	}
	if _, ok := rc.SigningKeys["fk1"]; ok {
		t.Fatal("frontend key must not sign")
	}

	SetRuntime(rc)
	keys := GetSigningKeys()
	if len(keys) != 2 {
		t.Fatalf("signing keys = %v", keys)
	}
}
