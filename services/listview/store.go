package listview

// Store is the ordered backing list a view renders from. It is confined to
// the dispatcher thread: every mutation happens inside a dispatched closure,
// so observers never see a partial update and no locking is needed.
type Store[T any] struct {
	items    []T
	onInsert func(start, count int)
	onClear  func()
}

// NewStore builds a store with optional observer callbacks. Either callback
// may be nil.
func NewStore[T any](onInsert func(start, count int), onClear func()) *Store[T] {
	return &Store[T]{onInsert: onInsert, onClear: onClear}
}

// Len reports the number of items currently visible.
func (s *Store[T]) Len() int { return len(s.items) }

// At returns the item at position i.
func (s *Store[T]) At(i int) T { return s.items[i] }

// Items returns the backing slice. Callers must not mutate it.
func (s *Store[T]) Items() []T { return s.items }

func (s *Store[T]) append(batch []T) {
	start := len(s.items)
	s.items = append(s.items, batch...)
	if s.onInsert != nil {
		s.onInsert(start, len(batch))
	}
}

func (s *Store[T]) clear() {
	s.items = s.items[:0]
	if s.onClear != nil {
		s.onClear()
	}
}
