package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestCache_PutOnce(t *testing.T) {
	cache := NewCache()
	first := image.NewRGBA(image.Rect(0, 0, 1, 1))
	second := image.NewRGBA(image.Rect(0, 0, 2, 2))

	cache.Put("file:///a.png", first)
	cache.Put("file:///a.png", second)

	got, ok := cache.Get("file:///a.png")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != first {
		t.Error("expected the first write to win")
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", cache.Len())
	}
}

func TestLoader_BundledResolvesSynchronously(t *testing.T) {
	loader := NewLoader(LoaderConfig{FS: afero.NewMemMapFs()})
	defer loader.Close()

	var got image.Image
	slot := &Slot{}
	loader.Load(slot, PlaceholderLocator, func(img image.Image) { got = img })
	if got == nil {
		t.Fatal("expected bundled placeholder applied before Load returned")
	}
}

func TestLoader_LoadsLocalFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := encodePNG(t, 10, 10, color.RGBA{R: 0xff, A: 0xff})
	if err := afero.WriteFile(fs, "/data/poster/a.png", data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	loader := NewLoader(LoaderConfig{FS: fs, Workers: 2})
	defer loader.Close()

	done := make(chan image.Image, 1)
	loader.Load(&Slot{}, "file:///data/poster/a.png", func(img image.Image) { done <- img })

	select {
	case img := <-done:
		if img.Bounds().Dx() != 10 {
			t.Errorf("expected decoded 10px image, got %v", img.Bounds())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for load")
	}

	// second load of the same locator hits the cache synchronously
	var cached image.Image
	loader.Load(&Slot{}, "file:///data/poster/a.png", func(img image.Image) { cached = img })
	if cached == nil {
		t.Error("expected synchronous apply on cache hit")
	}
}

func TestLoader_FailureYieldsPlaceholder(t *testing.T) {
	loader := NewLoader(LoaderConfig{FS: afero.NewMemMapFs(), Workers: 2})
	defer loader.Close()

	done := make(chan image.Image, 1)
	loader.Load(&Slot{}, "file:///does/not/exist.png", func(img image.Image) { done <- img })

	select {
	case img := <-done:
		if img == nil {
			t.Fatal("expected placeholder, got nil")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for load")
	}
}

func TestLoader_DownloadTimeoutApplies(t *testing.T) {
	data := encodePNG(t, 4, 4, color.RGBA{A: 0xff})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write(data)
	}))
	defer srv.Close()

	loader := NewLoader(LoaderConfig{
		FS:              afero.NewMemMapFs(),
		HTTPC:           srv.Client(),
		DownloadTimeout: 20 * time.Millisecond,
		Workers:         1,
	})
	defer loader.Close()

	done := make(chan image.Image, 1)
	loader.Load(&Slot{}, srv.URL+"/slow.png", func(img image.Image) { done <- img })

	select {
	case img := <-done:
		if img != loader.fallback {
			t.Error("expected the fallback image after the fetch timed out")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for load")
	}
}

func TestLoader_RecycledSlotDiscardsResult(t *testing.T) {
	release := make(chan struct{})
	data := encodePNG(t, 4, 4, color.RGBA{A: 0xff})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write(data)
	}))
	defer srv.Close()

	loader := NewLoader(LoaderConfig{
		FS:      afero.NewMemMapFs(),
		HTTPC:   srv.Client(),
		Workers: 1,
	})

	applied := make(chan struct{}, 1)
	slot := &Slot{}
	loader.Load(slot, srv.URL+"/poster.png", func(image.Image) { applied <- struct{}{} })

	// recycle while the fetch is blocked in the server handler
	slot.Recycle()
	close(release)
	loader.Close()

	select {
	case <-applied:
		t.Fatal("expected stale result discarded after recycle")
	default:
	}

	// the decode itself still lands in the cache for the next binder
	if _, ok := loader.cache.Get(srv.URL + "/poster.png"); !ok {
		t.Error("expected decoded image cached despite discarded apply")
	}
}
