package binding

import (
	"runtime"
	"sync"
	"weak"

	"golang.org/x/net/html"
)

// Store associates one caller value with an element, keyed by element
// identity. Keys are weak: once an element is unreachable its entry is
// dropped, so callers never have to clear data for discarded trees. A value
// that references its own element keeps that element alive.
type Store struct {
	mu      sync.Mutex
	entries map[weak.Pointer[html.Node]]*storeEntry
}

type storeEntry struct {
	value   any
	cleanup runtime.Cleanup
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[weak.Pointer[html.Node]]*storeEntry)}
}

// elementData is the store every Template uses, so an element carries at most
// one value no matter which accessor wraps it.
var elementData = NewStore()

// ElementData returns the store shared by all templates.
func ElementData() *Store {
	return elementData
}

// Set stores v for el and returns the value it replaced.
func (s *Store) Set(el *html.Node, v any) (prev any, had bool) {
	if el == nil {
		return nil, false
	}
	key := weak.Make(el)

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok {
		prev = entry.value
		entry.value = v
		return prev, true
	}
	s.entries[key] = &storeEntry{
		value:   v,
		cleanup: runtime.AddCleanup(el, s.forget, key),
	}
	return nil, false
}

// Get returns the value stored for el.
func (s *Store) Get(el *html.Node) (any, bool) {
	if el == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[weak.Make(el)]
	if !ok {
		return nil, false
	}
	return entry.value, true
}

// Delete forgets el.
func (s *Store) Delete(el *html.Node) {
	if el == nil {
		return
	}
	key := weak.Make(el)

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok {
		entry.cleanup.Stop()
		delete(s.entries, key)
	}
}

// Len returns the number of elements with data.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

func (s *Store) forget(key weak.Pointer[html.Node]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// typed narrows a stored value to U. A nil value is a present zero U; a
// value of another type reads as absent.
func typed[U any](v any, ok bool) (U, bool) {
	var zero U
	if !ok {
		return zero, false
	}
	if v == nil {
		return zero, true
	}
	u, isU := v.(U)
	if !isU {
		return zero, false
	}
	return u, true
}
