package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Images.Workers != 12 {
		t.Errorf("workers = %d, want 12", cfg.Images.Workers)
	}
	if cfg.List.ChunkSize != 20 || cfg.List.ChunkInterval != 8*time.Millisecond {
		t.Errorf("list = %+v, want chunk 20 / 8ms", cfg.List)
	}
	if cfg.Catalog.SoonDaysMovies != 30 || cfg.Catalog.SoonDaysSeries != 7 {
		t.Errorf("soon thresholds = %d/%d, want 30/7", cfg.Catalog.SoonDaysMovies, cfg.Catalog.SoonDaysSeries)
	}
	if cfg.Catalog.FetchTimeout != 30*time.Second {
		t.Errorf("fetch timeout = %v, want 30s", cfg.Catalog.FetchTimeout)
	}
	if cfg.List.RecentLimit != 10 {
		t.Errorf("recent limit = %d, want 10", cfg.List.RecentLimit)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
storage:
  data_dir: /srv/reelkeep
catalog:
  api_key: secret
  fetch_timeout: 10s
list:
  chunk_size: 40
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.DataDir != "/srv/reelkeep" {
		t.Errorf("data dir = %q", cfg.Storage.DataDir)
	}
	if cfg.Catalog.APIKey != "secret" {
		t.Errorf("api key = %q", cfg.Catalog.APIKey)
	}
	if cfg.Catalog.FetchTimeout != 10*time.Second {
		t.Errorf("fetch timeout = %v, want 10s", cfg.Catalog.FetchTimeout)
	}
	if cfg.List.ChunkSize != 40 {
		t.Errorf("chunk size = %d, want 40", cfg.List.ChunkSize)
	}
	// Untouched keys keep their defaults.
	if cfg.Storage.DatabaseFile != "library.db" {
		t.Errorf("database file = %q", cfg.Storage.DatabaseFile)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("REELKEEP_IMAGES_WORKERS", "4")
	t.Setenv("REELKEEP_LOGGING_LEVEL", "DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Images.Workers != 4 {
		t.Errorf("workers = %d, want env override 4", cfg.Images.Workers)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("level = %q, want DEBUG", cfg.Logging.Level)
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.DataDir = "/data"
	if got := cfg.DatabasePath(); got != filepath.Join("/data", "library.db") {
		t.Errorf("DatabasePath = %q", got)
	}
}
