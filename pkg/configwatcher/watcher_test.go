package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"prepace_backend/internal/config"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("ai:\n  model: first\nstorage:\n  type: minio\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *config.Config, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := Watch(ctx, dir, func(cfg *config.Config) { reloaded <- cfg }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(path, []byte("ai:\n  model: second\nstorage:\n  type: minio\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.AI.Model != "second" {
			t.Errorf("expected reloaded model 'second', got %q", cfg.AI.Model)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestIsConfigFile(t *testing.T) {
	if !isConfigFile("/etc/prepace/config.yaml") || isConfigFile("/etc/prepace/config.yaml~") {
		t.Error("unexpected config file match")
	}
}
