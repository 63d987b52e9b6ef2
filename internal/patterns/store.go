package patterns

import (
	"sync/atomic"
)

// Store holds the active pattern set and swaps it atomically.
// Readers call Current once per evaluation and keep that snapshot, so an
// evaluation never sees a mix of two versions.
type Store struct {
	current atomic.Pointer[Set]
	version atomic.Uint64
}

// NewStore creates a store seeded with initial (defaults when nil)
func NewStore(initial *Set) *Store {
	if initial == nil {
		initial = MustCompileDefaults()
	}
	s := &Store{}
	s.Swap(initial)
	return s
}

// Current returns the active snapshot
func (s *Store) Current() *Set {
	return s.current.Load()
}

// Swap publishes next as the active set and returns the previous one.
// The published copy gets the next version number; next itself is not modified.
func (s *Store) Swap(next *Set) *Set {
	published := *next
	published.Version = s.version.Add(1)
	return s.current.Swap(&published)
}

// Version returns the version of the active set
func (s *Store) Version() uint64 {
	return s.Current().Version
}
