// Package database is the persistence layer: schema definition, additive
// column migrations with backfill, CRUD for movies, series, seasons and
// episodes, raw bulk readers for list views, status-flag accessors and
// manual-id allocation. Backed by a single-file embedded store.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"

	"reelkeep/models"
)

const languageCacheSize = 256

// Config configures the database connection and the managed data root used
// for record-owned image files.
type Config struct {
	DatabasePath string
	// DataDir is the managed data root holding poster/, background/ and
	// series/ image trees. Defaults to the database file's directory.
	DataDir string
	// FS is the filesystem the data root lives on. Defaults to the OS fs;
	// tests inject a memory fs.
	FS afero.Fs
	Logger *slog.Logger
}

// DB owns the store connection and exposes the repository of operations.
type DB struct {
	sql        *sql.DB
	Repository *Repository
}

// NewDB opens (creating if necessary) the store at cfg.DatabasePath, ensures
// the schema exists and applies any pending column migrations. Safe to call
// on every startup.
func NewDB(cfg Config) (*DB, error) {
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Dir(cfg.DatabasePath)
	}
	if cfg.FS == nil {
		cfg.FS = afero.NewOsFs()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Foreign keys are off by default per connection; the cascade from
	// series to seasons/episodes depends on them.
	dsn := cfg.DatabasePath + "?_foreign_keys=on"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	langs, err := lru.New[string, *models.Language](languageCacheSize)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("language cache: %w", err)
	}

	repo := &Repository{
		db:      conn,
		fs:      cfg.FS,
		dataDir: cfg.DataDir,
		log:     cfg.Logger,
		langs:   langs,
	}

	if err := repo.CreateSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if err := repo.ApplyMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &DB{sql: conn, Repository: repo}, nil
}

// Close releases the store connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Repository carries all persistence operations. Methods are independent;
// there is no ambient transaction beyond the series insert batch.
type Repository struct {
	db      *sql.DB
	fs      afero.Fs
	dataDir string
	log     *slog.Logger

	// manualMu serializes manual-id allocation (scan and increment).
	manualMu sync.Mutex

	langs *lru.Cache[string, *models.Language]
}

// DataDir returns the managed data root.
func (r *Repository) DataDir() string { return r.dataDir }

// FS returns the filesystem the data root lives on.
func (r *Repository) FS() afero.Fs { return r.fs }
