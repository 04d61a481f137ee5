package images

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestStore_PosterDownload(t *testing.T) {
	data := encodePNG(t, 20, 30, color.RGBA{R: 0x80, A: 0xff})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	store := NewStore(StoreConfig{FS: fs, DataDir: "/data", HTTPC: srv.Client()})

	loc := store.Poster(context.Background(), srv.URL+"/w500/abc.jpg")
	if !strings.HasPrefix(loc, "file:///data/poster/") {
		t.Fatalf("expected locator under the poster dir, got %q", loc)
	}
	if !strings.HasSuffix(loc, ".png") {
		t.Errorf("expected extension sniffed from content, got %q", loc)
	}

	saved, err := afero.ReadFile(fs, strings.TrimPrefix(loc, "file://"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if len(saved) != len(data) {
		t.Errorf("expected %d bytes saved, got %d", len(data), len(saved))
	}
}

func TestStore_PosterFailureYieldsPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	store := NewStore(StoreConfig{FS: afero.NewMemMapFs(), DataDir: "/data", HTTPC: srv.Client()})

	if loc := store.Poster(context.Background(), srv.URL+"/missing.jpg"); loc != PlaceholderLocator {
		t.Errorf("expected placeholder locator, got %q", loc)
	}
	if loc := store.Poster(context.Background(), ""); loc != PlaceholderLocator {
		t.Errorf("expected placeholder for empty url, got %q", loc)
	}
}

func TestStore_BackdropFailureYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	store := NewStore(StoreConfig{FS: afero.NewMemMapFs(), DataDir: "/data", HTTPC: srv.Client()})

	if loc := store.Backdrop(context.Background(), srv.URL+"/missing.jpg"); loc != "" {
		t.Errorf("expected empty locator, got %q", loc)
	}
}

func TestStore_DownloadTimeoutApplies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("too late"))
	}))
	defer srv.Close()

	store := NewStore(StoreConfig{
		FS:              afero.NewMemMapFs(),
		DataDir:         "/data",
		HTTPC:           srv.Client(),
		DownloadTimeout: 20 * time.Millisecond,
	})

	if loc := store.Poster(context.Background(), srv.URL+"/slow.jpg"); loc != PlaceholderLocator {
		t.Errorf("expected placeholder after timeout, got %q", loc)
	}
}

func TestStore_SavedFileLeavesNoTemp(t *testing.T) {
	data := encodePNG(t, 8, 8, color.RGBA{G: 0x40, A: 0xff})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	store := NewStore(StoreConfig{FS: fs, DataDir: "/data", HTTPC: srv.Client()})

	loc := store.Poster(context.Background(), srv.URL+"/abc.jpg")
	if loc == PlaceholderLocator {
		t.Fatal("expected a saved locator")
	}

	entries, err := afero.ReadDir(fs, "/data/poster")
	if err != nil {
		t.Fatalf("read poster dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single saved file, got %d entries", len(entries))
	}
	if strings.HasSuffix(entries[0].Name(), ".tmp") {
		t.Errorf("temp file left behind: %q", entries[0].Name())
	}
}

func TestStore_SeasonArtTree(t *testing.T) {
	data := encodePNG(t, 8, 8, color.RGBA{A: 0xff})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	store := NewStore(StoreConfig{FS: fs, DataDir: "/data", HTTPC: srv.Client()})

	loc := store.SeasonArt(context.Background(), srv.URL+"/s1.jpg", "1399", 1)
	if !strings.HasPrefix(loc, "file:///data/series/1399/1/") {
		t.Errorf("expected locator under the per-show season dir, got %q", loc)
	}
}
