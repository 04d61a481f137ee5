package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// PlaceholderLocator is the bundled fallback art used when a download or
// decode fails. It is never a file on disk and never deleted.
const PlaceholderLocator = "resource://placeholder-poster"

const downloadTimeout = 30 * time.Second

// Store downloads catalog art into the managed data directory and hands back
// file:// locators for the persistence layer to keep.
type Store struct {
	fs      afero.Fs
	dataDir string
	httpc   *http.Client
	timeout time.Duration
	log     *slog.Logger
}

// StoreConfig configures a Store.
type StoreConfig struct {
	FS      afero.Fs
	DataDir string
	HTTPC   *http.Client
	// DownloadTimeout bounds each network fetch. Defaults to 30s.
	DownloadTimeout time.Duration
	Logger          *slog.Logger
}

// NewStore builds a Store rooted at cfg.DataDir.
func NewStore(cfg StoreConfig) *Store {
	fs := cfg.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	timeout := cfg.DownloadTimeout
	if timeout <= 0 {
		timeout = downloadTimeout
	}
	httpc := cfg.HTTPC
	if httpc == nil {
		httpc = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Store{fs: fs, dataDir: cfg.DataDir, httpc: httpc, timeout: timeout, log: log}
}

// Poster downloads a movie or series poster. Returns the placeholder
// locator on any failure.
func (s *Store) Poster(ctx context.Context, url string) string {
	return s.fetch(ctx, url, "poster")
}

// Backdrop downloads a backdrop image. Failures yield an empty locator:
// the display shows no backdrop rather than a placeholder.
func (s *Store) Backdrop(ctx context.Context, url string) string {
	if url == "" {
		return ""
	}
	loc, err := s.download(ctx, url, "background")
	if err != nil {
		s.log.Warn("images.store.backdrop_failed", "url", url, "error", err)
		return ""
	}
	return loc
}

// SeasonArt downloads season posters and episode stills into the per-show
// tree series/<show-id>/<season-number>/. Failures yield the placeholder.
func (s *Store) SeasonArt(ctx context.Context, url, showID string, seasonNumber int) string {
	return s.fetch(ctx, url, filepath.Join("series", showID, fmt.Sprintf("%d", seasonNumber)))
}

func (s *Store) fetch(ctx context.Context, url, subdir string) string {
	if url == "" {
		return PlaceholderLocator
	}
	loc, err := s.download(ctx, url, subdir)
	if err != nil {
		s.log.Warn("images.store.download_failed", "url", url, "error", err)
		return PlaceholderLocator
	}
	return loc
}

// download fetches the image into subdir under the data root. The file is
// named by a fresh UUID with an extension sniffed from the content, so two
// records with the same remote filename never collide.
func (s *Store) download(ctx context.Context, url, subdir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("download %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	ext := ".jpg"
	if mt := mimetype.Detect(data); mt.Extension() != "" {
		ext = mt.Extension()
	}

	dir := filepath.Join(s.dataDir, subdir)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	// Write through a temp file and rename so a crash mid-write never
	// leaves a half-downloaded image at the final path.
	path := filepath.Join(dir, uuid.NewString()+ext)
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return "", err
	}

	s.log.Debug("images.store.saved", "url", url, "path", path)
	return "file://" + path, nil
}
