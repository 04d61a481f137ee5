package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	// decoders for every format the catalog serves
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"log/slog"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	_ "golang.org/x/image/webp"
)

const defaultWorkers = 12

const fetchTimeout = 30 * time.Second

// Slot is the cancellation handle one display cell holds. Recycling bumps
// the generation; a load started against an older generation discards its
// result instead of binding stale art to the reused cell.
type Slot struct {
	gen atomic.Uint64
}

// Recycle invalidates every load in flight for this slot.
func (s *Slot) Recycle() {
	s.gen.Add(1)
}

// Generation returns the slot's current generation.
func (s *Slot) Generation() uint64 {
	return s.gen.Load()
}

// Loader resolves locators to decoded images through the shared cache.
// Bundled locators resolve synchronously; file and network locators go
// through a bounded worker pool.
type Loader struct {
	cache    *Cache
	fs       afero.Fs
	httpc    *http.Client
	timeout  time.Duration
	log      *slog.Logger
	bundled  map[string]image.Image
	fallback image.Image

	// Dispatch marshals the apply callback to the display thread. The
	// default runs it on the worker.
	dispatch func(func())

	mu     sync.Mutex
	pool   *pool.Pool
	closed bool
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	Cache *Cache
	FS    afero.Fs
	HTTPC *http.Client
	// DownloadTimeout bounds each network fetch. Defaults to 30s.
	DownloadTimeout time.Duration
	Workers         int
	Logger          *slog.Logger
	Dispatch        func(func())
}

// NewLoader builds a Loader with the bundled placeholder registered.
func NewLoader(cfg LoaderConfig) *Loader {
	cache := cfg.Cache
	if cache == nil {
		cache = NewCache()
	}
	fs := cfg.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	timeout := cfg.DownloadTimeout
	if timeout <= 0 {
		timeout = fetchTimeout
	}
	httpc := cfg.HTTPC
	if httpc == nil {
		httpc = &http.Client{Timeout: timeout}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	dispatch := cfg.Dispatch
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}

	fallback := placeholderImage()
	l := &Loader{
		cache:    cache,
		fs:       fs,
		httpc:    httpc,
		timeout:  timeout,
		log:      log,
		bundled:  map[string]image.Image{PlaceholderLocator: fallback},
		fallback: fallback,
		dispatch: dispatch,
		pool:     pool.New().WithMaxGoroutines(workers),
	}
	return l
}

// RegisterBundled adds a resource:// locator resolved without any I/O.
func (l *Loader) RegisterBundled(locator string, img image.Image) {
	l.bundled[locator] = img
}

// Load resolves a locator for a slot and hands the image to apply via the
// dispatcher. Cache hits and bundled locators complete synchronously;
// everything else runs on the pool. If the slot is recycled before the
// fetch completes, the result is dropped.
func (l *Loader) Load(slot *Slot, locator string, apply func(image.Image)) {
	gen := slot.gen.Load()

	if img, ok := l.bundled[locator]; ok {
		apply(img)
		return
	}
	if img, ok := l.cache.Get(locator); ok {
		apply(img)
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.pool.Go(func() {
		img := l.resolve(locator)
		l.cache.Put(locator, img)
		if slot.gen.Load() != gen {
			return
		}
		l.dispatch(func() {
			// re-check on the display thread: the slot may have been
			// recycled while the callback sat in the queue
			if slot.gen.Load() != gen {
				return
			}
			apply(img)
		})
	})
	l.mu.Unlock()
}

// Close drains the worker pool. Loads submitted after Close are dropped.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.pool.Wait()
}

// resolve fetches and decodes one locator. Any failure yields the
// placeholder; errors never reach the display consumer.
func (l *Loader) resolve(locator string) image.Image {
	data, err := l.read(locator)
	if err != nil {
		l.log.Warn("images.loader.fetch_failed", "locator", locator, "error", err)
		return l.fallback
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		l.log.Warn("images.loader.decode_failed", "locator", locator, "error", err)
		return l.fallback
	}
	return img
}

func (l *Loader) read(locator string) ([]byte, error) {
	switch {
	case strings.HasPrefix(locator, "file://"):
		return afero.ReadFile(l.fs, strings.TrimPrefix(locator, "file://"))
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("fetch %s: %s", locator, resp.Status)
		}
		return io.ReadAll(resp.Body)
	default:
		return nil, fmt.Errorf("unsupported locator %q", locator)
	}
}

// placeholderImage is a flat neutral-gray card shown while art is missing.
func placeholderImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 200, 300))
	gray := color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}
	for y := 0; y < 300; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, gray)
		}
	}
	return img
}
