// Package listview feeds long media lists to a display surface without
// blocking it: rows are fetched and turned into models on a background
// goroutine, then appended to the backing store in small chunks on the
// interactive-thread dispatcher so scrolling stays responsive while
// thousands of records stream in.
package listview

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"reelkeep/services/images"
)

// State is the lifecycle of one list population.
type State int32

const (
	StateLoading State = iota
	StateFilled
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateFilled:
		return "filled"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Dispatcher runs closures on the interactive thread. Store mutations and
// state callbacks only ever happen through it.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a plain function to the Dispatcher interface.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Source produces the full item list for one population, in display order.
type Source[T any] func(ctx context.Context) ([]T, error)

// CountSource reports the total record count behind a truncated list, for
// dashboards that show the newest N items plus an overall tally.
type CountSource func(ctx context.Context) (int, error)

// Consumer is the display-side recycling contract. Setup prepares a fresh
// slot once, Bind populates it for an item, Unbind is called when the slot
// scrolls out of view and must Recycle the slot so an image fetch still in
// flight cannot paint a reused cell.
type Consumer[T any] interface {
	Setup(slot *images.Slot)
	Bind(item T, slot *images.Slot)
	Unbind(slot *images.Slot)
}

// Config tunes the chunked insertion. Zero values fall back to defaults.
type Config struct {
	ChunkSize     int           // items appended per dispatcher pass
	ChunkInterval time.Duration // pause between passes
	Logger        *slog.Logger

	// OnState is invoked on the dispatcher whenever the state changes.
	OnState func(State)
	// OnTotal is invoked on the dispatcher with the CountSource result.
	OnTotal func(int)
}

const (
	defaultChunkSize     = 20
	defaultChunkInterval = 8 * time.Millisecond
)

// Controller populates a Store from a Source in chunks. A generation counter
// serves as the cancellation token: Refresh bumps it, and every dispatched
// step re-checks it, so a superseded population can never touch the store
// again no matter how far its goroutine already got.
type Controller[T any] struct {
	store  *Store[T]
	source Source[T]
	count  CountSource
	disp   Dispatcher
	cfg    Config
	log    *slog.Logger

	gen   atomic.Uint64
	state atomic.Int32
}

// New builds a controller. count may be nil when the source already returns
// everything there is.
func New[T any](store *Store[T], source Source[T], count CountSource, disp Dispatcher, cfg Config) *Controller[T] {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.ChunkInterval <= 0 {
		cfg.ChunkInterval = defaultChunkInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller[T]{
		store:  store,
		source: source,
		count:  count,
		disp:   disp,
		cfg:    cfg,
		log:    cfg.Logger,
	}
}

// State reports the current lifecycle state.
func (c *Controller[T]) State() State { return State(c.state.Load()) }

// Load starts a population, superseding any population still in flight.
// Fetching and model construction run on a background goroutine; only the
// chunked appends touch the dispatcher.
func (c *Controller[T]) Load(ctx context.Context) {
	c.begin(ctx, false)
}

// Refresh cancels whatever population is in flight, clears the store and
// starts over. Chunks already dispatched but not yet run are discarded by
// the token check, so no stale item becomes visible after the clear.
func (c *Controller[T]) Refresh(ctx context.Context) {
	c.begin(ctx, true)
}

// begin allocates a fresh token, which invalidates every step of any
// earlier population.
func (c *Controller[T]) begin(ctx context.Context, clear bool) {
	token := c.gen.Add(1)
	if clear {
		c.apply(token, func() { c.store.clear() })
	}
	c.setState(token, StateLoading)
	go c.run(ctx, token)
}

func (c *Controller[T]) run(ctx context.Context, token uint64) {
	items, err := c.source(ctx)
	if err != nil {
		// An empty list beats a spinner that never resolves.
		c.log.Warn("listview.load.failed", "error", err)
		c.setState(token, StateEmpty)
		return
	}
	if c.count != nil {
		if total, err := c.count(ctx); err != nil {
			c.log.Warn("listview.count.failed", "error", err)
		} else {
			c.apply(token, func() {
				if c.cfg.OnTotal != nil {
					c.cfg.OnTotal(total)
				}
			})
		}
	}
	if len(items) == 0 {
		c.setState(token, StateEmpty)
		return
	}

	for start := 0; start < len(items); start += c.cfg.ChunkSize {
		if c.gen.Load() != token {
			return
		}
		end := start + c.cfg.ChunkSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]
		c.apply(token, func() { c.store.append(batch) })

		if end < len(items) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.ChunkInterval):
			}
		}
	}
	// Filled is dispatched after the last chunk, so when the state callback
	// fires the store already holds every item.
	c.setState(token, StateFilled)
}

// apply dispatches fn, re-checking the token on the dispatcher so a step
// queued before a Refresh cannot run after it.
func (c *Controller[T]) apply(token uint64, fn func()) {
	c.disp.Dispatch(func() {
		if c.gen.Load() == token {
			fn()
		}
	})
}

func (c *Controller[T]) setState(token uint64, s State) {
	c.apply(token, func() {
		c.state.Store(int32(s))
		if c.cfg.OnState != nil {
			c.cfg.OnState(s)
		}
	})
}
