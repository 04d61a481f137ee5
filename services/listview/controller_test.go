package listview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"reelkeep/services/images"
)

// serialDispatcher runs closures inline, one at a time. It stands in for an
// interactive-thread work queue in tests; holding its lock while inspecting
// results gives a consistent snapshot.
type serialDispatcher struct {
	mu sync.Mutex
}

func (d *serialDispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

type insert struct {
	start, count int
}

type harness struct {
	disp    *serialDispatcher
	store   *Store[string]
	inserts []insert
	clears  int
	states  []State
	filled  chan struct{} // closed when every expected item landed
	settled chan State    // receives terminal state transitions
	want    int
}

func makeHarness(wantItems int) *harness {
	h := &harness{
		disp:    &serialDispatcher{},
		filled:  make(chan struct{}),
		settled: make(chan State, 8),
		want:    wantItems,
	}
	h.store = NewStore[string](
		func(start, count int) {
			h.inserts = append(h.inserts, insert{start, count})
			if h.store.Len() == h.want && h.want > 0 {
				close(h.filled)
			}
		},
		func() { h.clears++ },
	)
	return h
}

func rows(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("row-%d", i)
	}
	return out
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestLoad_ChunkedInsertionPreservesOrder(t *testing.T) {
	h := makeHarness(1400)
	source := func(ctx context.Context) ([]string, error) { return rows(1400), nil }

	filled := make(chan struct{})
	ctrl := New(h.store, source, nil, h.disp, Config{
		ChunkInterval: time.Millisecond,
		OnState: func(s State) {
			h.states = append(h.states, s)
			if s == StateFilled {
				close(filled)
			}
		},
	})
	ctrl.Load(context.Background())
	waitFor(t, filled, "filled state")

	h.disp.mu.Lock()
	defer h.disp.mu.Unlock()

	if len(h.inserts) != 70 {
		t.Fatalf("chunks = %d, want 70", len(h.inserts))
	}
	for i, ins := range h.inserts {
		if ins.start != i*20 || ins.count != 20 {
			t.Fatalf("chunk %d = {start %d, count %d}, want {start %d, count 20}", i, ins.start, ins.count, i*20)
		}
	}
	for i, item := range h.store.Items() {
		if item != fmt.Sprintf("row-%d", i) {
			t.Fatalf("item %d = %q, out of order", i, item)
		}
	}
	if len(h.states) < 2 || h.states[0] != StateLoading || h.states[len(h.states)-1] != StateFilled {
		t.Errorf("states = %v, want Loading then Filled", h.states)
	}
}

func TestLoad_FilledFiresAfterLastChunk(t *testing.T) {
	h := makeHarness(100)
	source := func(ctx context.Context) ([]string, error) { return rows(100), nil }

	filled := make(chan struct{})
	visibleAtFilled := -1
	ctrl := New(h.store, source, nil, h.disp, Config{
		ChunkInterval: time.Millisecond,
		OnState: func(s State) {
			if s == StateFilled {
				// Runs on the dispatcher, so this is the view's snapshot
				// at the moment it is told the list is complete.
				visibleAtFilled = h.store.Len()
				close(filled)
			}
		},
	})
	ctrl.Load(context.Background())
	waitFor(t, filled, "filled state")

	if visibleAtFilled != 100 {
		t.Fatalf("store held %d items when the filled state fired, want 100", visibleAtFilled)
	}
}

func TestLoad_SupersedesEarlierLoad(t *testing.T) {
	h := makeHarness(10)

	var mu sync.Mutex
	calls := 0
	started := make(chan struct{})
	release := make(chan struct{})
	source := func(ctx context.Context) ([]string, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
			return []string{"stale-0", "stale-1"}, nil
		}
		return rows(10), nil
	}

	ctrl := New(h.store, source, nil, h.disp, Config{})
	ctrl.Load(context.Background())
	waitFor(t, started, "first fetch")
	ctrl.Load(context.Background())
	waitFor(t, h.filled, "second population")

	// Let the first population run to completion; its token is stale so
	// none of its appends may land.
	close(release)
	time.Sleep(50 * time.Millisecond)

	h.disp.mu.Lock()
	defer h.disp.mu.Unlock()
	if n := h.store.Len(); n != 10 {
		t.Fatalf("len = %d, a superseded load appended items", n)
	}
	for i, item := range h.store.Items() {
		if item != fmt.Sprintf("row-%d", i) {
			t.Fatalf("item %d = %q, stale rows interleaved", i, item)
		}
	}
}

func TestLoad_EmptySource(t *testing.T) {
	h := makeHarness(0)
	done := make(chan struct{})
	ctrl := New(h.store, func(ctx context.Context) ([]string, error) { return nil, nil }, nil, h.disp, Config{
		OnState: func(s State) {
			if s == StateEmpty {
				close(done)
			}
		},
	})
	ctrl.Load(context.Background())
	waitFor(t, done, "empty state")

	if n := h.store.Len(); n != 0 {
		t.Errorf("len = %d, want 0", n)
	}
	if ctrl.State() != StateEmpty {
		t.Errorf("state = %v, want empty", ctrl.State())
	}
}

func TestLoad_FetchErrorLandsOnEmpty(t *testing.T) {
	h := makeHarness(0)
	done := make(chan struct{})
	source := func(ctx context.Context) ([]string, error) { return nil, errors.New("store offline") }
	ctrl := New(h.store, source, nil, h.disp, Config{
		OnState: func(s State) {
			if s == StateEmpty {
				close(done)
			}
		},
	})
	ctrl.Load(context.Background())
	waitFor(t, done, "empty state after error")

	if ctrl.State() != StateEmpty {
		t.Errorf("state = %v, want empty (never a stuck spinner)", ctrl.State())
	}
}

func TestRefresh_CancelsInFlightPopulation(t *testing.T) {
	h := makeHarness(0)

	var mu sync.Mutex
	data := rows(200)
	source := func(ctx context.Context) ([]string, error) {
		mu.Lock()
		defer mu.Unlock()
		return data, nil
	}

	started := make(chan struct{})
	var once sync.Once
	h.store.onInsert = func(start, count int) {
		once.Do(func() { close(started) })
	}

	empty := make(chan struct{})
	ctrl := New(h.store, source, nil, h.disp, Config{
		ChunkInterval: 5 * time.Millisecond,
		OnState: func(s State) {
			if s == StateEmpty {
				close(empty)
			}
		},
	})
	ctrl.Load(context.Background())
	waitFor(t, started, "first chunk")

	// Swap the source mid-flight; after Refresh nothing from the first
	// population may remain visible.
	mu.Lock()
	data = nil
	mu.Unlock()
	ctrl.Refresh(context.Background())
	waitFor(t, empty, "refresh to settle")

	h.disp.mu.Lock()
	count := h.store.Len()
	clears := h.clears
	h.disp.mu.Unlock()
	if count != 0 {
		t.Fatalf("len = %d after refresh, stale chunks leaked through", count)
	}
	if clears == 0 {
		t.Error("refresh never cleared the store")
	}

	// Give any straggler chunk goroutine time to misbehave.
	time.Sleep(50 * time.Millisecond)
	h.disp.mu.Lock()
	count = h.store.Len()
	h.disp.mu.Unlock()
	if count != 0 {
		t.Fatalf("len = %d, a cancelled chunk landed after the clear", count)
	}
}

func TestLoad_DashboardTotal(t *testing.T) {
	h := makeHarness(10)
	totalCh := make(chan int, 1)
	source := func(ctx context.Context) ([]string, error) { return rows(10), nil }
	count := func(ctx context.Context) (int, error) { return 137, nil }

	ctrl := New(h.store, source, count, h.disp, Config{
		OnTotal: func(total int) { totalCh <- total },
	})
	ctrl.Load(context.Background())
	waitFor(t, h.filled, "recent items")

	select {
	case total := <-totalCh:
		if total != 137 {
			t.Errorf("total = %d, want 137", total)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for total")
	}
}

// recordingConsumer exercises the display recycling contract: Unbind must
// recycle the slot so a pending image bind cannot paint a reused cell.
type recordingConsumer struct {
	bound []string
}

func (c *recordingConsumer) Setup(slot *images.Slot)             {}
func (c *recordingConsumer) Bind(item string, slot *images.Slot) { c.bound = append(c.bound, item) }
func (c *recordingConsumer) Unbind(slot *images.Slot)            { slot.Recycle() }

func TestConsumer_UnbindRecyclesSlot(t *testing.T) {
	var _ Consumer[string] = (*recordingConsumer)(nil)

	c := &recordingConsumer{}
	slot := &images.Slot{}
	gen := slot.Generation()
	c.Bind("row-0", slot)
	c.Unbind(slot)
	if slot.Generation() == gen {
		t.Error("unbind did not recycle the slot")
	}
}
