// Package config loads application settings from an optional YAML file with
// REELKEEP_* environment overrides on top of built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Images  ImagesConfig  `mapstructure:"images"`
	List    ListConfig    `mapstructure:"list"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig locates the database and the image tree.
type StorageConfig struct {
	DataDir       string `mapstructure:"data_dir"`
	DatabaseFile  string `mapstructure:"database_file"`
	PosterDir     string `mapstructure:"poster_dir"`
	BackgroundDir string `mapstructure:"background_dir"`
	SeriesDir     string `mapstructure:"series_dir"`
}

// CatalogConfig holds remote catalog access settings.
type CatalogConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Language       string        `mapstructure:"language"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	SoonDaysMovies int           `mapstructure:"soon_days_movies"`
	SoonDaysSeries int           `mapstructure:"soon_days_series"`
}

// ImagesConfig tunes the image loader.
type ImagesConfig struct {
	Workers         int           `mapstructure:"workers"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

// ListConfig tunes chunked list population.
type ListConfig struct {
	ChunkSize     int           `mapstructure:"chunk_size"`
	ChunkInterval time.Duration `mapstructure:"chunk_interval"`
	RecentLimit   int           `mapstructure:"recent_limit"`
}

// LoggingConfig holds log sink settings. A non-empty File enables the
// rotating file sink.
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DatabasePath returns the full path of the store file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataDir, c.Storage.DatabaseFile)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir:       defaultDataPath(),
			DatabaseFile:  "library.db",
			PosterDir:     "poster",
			BackgroundDir: "background",
			SeriesDir:     "series",
		},
		Catalog: CatalogConfig{
			Language:       "en",
			FetchTimeout:   30 * time.Second,
			SoonDaysMovies: 30,
			SoonDaysSeries: 7,
		},
		Images: ImagesConfig{
			Workers:         12,
			DownloadTimeout: 30 * time.Second,
		},
		List: ListConfig{
			ChunkSize:     20,
			ChunkInterval: 8 * time.Millisecond,
			RecentLimit:   10,
		},
		Logging: LoggingConfig{
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reelkeep")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reelkeep")
	}
}

func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reelkeep")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "reelkeep")
	}
}

// Load reads configuration from path (or the default search locations when
// path is empty) and applies environment overrides. A missing config file is
// fine; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("REELKEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so environment-only overrides are visible
// to Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("storage.data_dir", d.Storage.DataDir)
	v.SetDefault("storage.database_file", d.Storage.DatabaseFile)
	v.SetDefault("storage.poster_dir", d.Storage.PosterDir)
	v.SetDefault("storage.background_dir", d.Storage.BackgroundDir)
	v.SetDefault("storage.series_dir", d.Storage.SeriesDir)
	v.SetDefault("catalog.base_url", d.Catalog.BaseURL)
	v.SetDefault("catalog.api_key", d.Catalog.APIKey)
	v.SetDefault("catalog.language", d.Catalog.Language)
	v.SetDefault("catalog.fetch_timeout", d.Catalog.FetchTimeout)
	v.SetDefault("catalog.soon_days_movies", d.Catalog.SoonDaysMovies)
	v.SetDefault("catalog.soon_days_series", d.Catalog.SoonDaysSeries)
	v.SetDefault("images.workers", d.Images.Workers)
	v.SetDefault("images.download_timeout", d.Images.DownloadTimeout)
	v.SetDefault("list.chunk_size", d.List.ChunkSize)
	v.SetDefault("list.chunk_interval", d.List.ChunkInterval)
	v.SetDefault("list.recent_limit", d.List.RecentLimit)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
}
