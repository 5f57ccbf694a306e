package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
storage:
  type: minio
ai:
  model: test-model
`)
	t.Setenv("AI_API_KEY", "sk-from-env")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port, got %q", cfg.Server.Port)
	}
	if cfg.AI.Model != "test-model" || cfg.AI.APIKey != "sk-from-env" {
		t.Errorf("unexpected ai config %+v", cfg.AI)
	}
	if cfg.AI.Timeout() != 30*time.Second || cfg.AI.Temperature != 0.4 || cfg.AI.MaxTokens != 500 {
		t.Errorf("ai defaults not applied: %+v", cfg.AI)
	}
	if cfg.Practice.LeaderboardTTL() != time.Minute || cfg.Practice.MaxRecordingMB != 20 {
		t.Errorf("practice defaults not applied: %+v", cfg.Practice)
	}
}

func TestLoadConfigRejectsWeakSecretInRelease(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
storage:
  type: minio
jwt:
  secret: short
`)
	if _, err := LoadConfig(dir); err == nil {
		t.Fatal("expected an error for a short secret in release mode")
	}
}

func TestPracticeLocation(t *testing.T) {
	if (PracticeConfig{}).Location() != time.Local {
		t.Error("empty timezone should use the local zone")
	}
	if (PracticeConfig{Timezone: "Not/AZone"}).Location() != time.Local {
		t.Error("invalid timezone should fall back to the local zone")
	}
	loc := (PracticeConfig{Timezone: "UTC"}).Location()
	if loc.String() != "UTC" {
		t.Errorf("expected UTC, got %s", loc)
	}
}
