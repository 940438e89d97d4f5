package core

import "sync"

// Entity is any record cached by a Store, keyed by an opaque identifier.
type Entity interface {
	EntityID() string
}

// Store is the client-side cache for one entity type. It owns a list of
// records, a loading flag and an error slot, and reacts to the three phases
// of every request declared for it: Begin -> Resolve*/Reject.
//
// Every dispatch is stamped with a monotonic sequence; a settlement whose
// operation is no longer the newest dispatch is ignored entirely, so a stale
// response can never overwrite fresher data.
type Store[T Entity] struct {
	mu        sync.Mutex
	items     []T
	loading   bool
	err       error
	seq       uint64
	listeners []func()
}

// Op is one in-flight operation on a Store.
type Op[T Entity] struct {
	store *Store[T]
	seq   uint64
}

// Begin starts a new operation: loading becomes true and any previous error
// is cleared. Error clearing is store-owned; it happens here and nowhere else.
func (s *Store[T]) Begin() *Op[T] {
	s.mu.Lock()
	s.seq++
	op := &Op[T]{store: s, seq: s.seq}
	s.loading = true
	s.err = nil
	s.mu.Unlock()
	s.notify()
	return op
}

// settle applies a terminal outcome. It reports false when a newer Begin
// superseded this operation, in which case nothing is touched.
func (o *Op[T]) settle(apply func(s *Store[T])) bool {
	s := o.store
	s.mu.Lock()
	if o.seq != s.seq {
		s.mu.Unlock()
		return false
	}
	s.loading = false
	if apply != nil {
		apply(s)
	}
	s.mu.Unlock()
	s.notify()
	return true
}

// ResolveList replaces the cached list wholesale; last write wins.
func (o *Op[T]) ResolveList(items []T) bool {
	return o.settle(func(s *Store[T]) {
		s.items = append([]T(nil), items...)
	})
}

// ResolveOne upserts a single record: a record with the same id is replaced
// in place, otherwise the record is prepended.
func (o *Op[T]) ResolveOne(item T) bool {
	return o.settle(func(s *Store[T]) {
		for i := range s.items {
			if s.items[i].EntityID() == item.EntityID() {
				s.items[i] = item
				return
			}
		}
		s.items = append([]T{item}, s.items...)
	})
}

// ResolveDelete removes the record matching id, if present.
func (o *Op[T]) ResolveDelete(id string) bool {
	return o.settle(func(s *Store[T]) {
		for i := range s.items {
			if s.items[i].EntityID() == id {
				s.items = append(s.items[:i], s.items[i+1:]...)
				return
			}
		}
	})
}

// ResolveWith applies a custom transition to the cached list. It exists for
// the few cross-record invariants maintained client-side (eg. academic-year
// activation marking sibling years inactive).
func (o *Op[T]) ResolveWith(fn func(items []T) []T) bool {
	return o.settle(func(s *Store[T]) {
		s.items = fn(s.items)
	})
}

// Resolve settles the operation without touching the cached list.
func (o *Op[T]) Resolve() bool {
	return o.settle(nil)
}

// Reject records err; the cached list is left untouched, so a failed fetch
// never clears data from a previous successful one.
func (o *Op[T]) Reject(err error) bool {
	return o.settle(func(s *Store[T]) {
		s.err = err
	})
}

// Items returns a snapshot copy of the cached list.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}

func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.EntityID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Seed replaces the cached list outside any operation. It is meant for
// bootstrap hydration only; fetched data always overwrites seeded data.
func (s *Store[T]) Seed(items []T) {
	s.mu.Lock()
	s.items = append([]T(nil), items...)
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers fn to run after every applied transition.
func (s *Store[T]) Subscribe(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store[T]) notify() {
	s.mu.Lock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
