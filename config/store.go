package config

import "sync/atomic"

// Store holds the active snapshot. Reload is build-then-swap: a new
// snapshot is fully constructed and validated before Swap publishes it as
// a single atomic reference; readers at a tick boundary see either the old
// or the new snapshot, never a mix.
type Store struct {
	snap atomic.Pointer[Snapshot]
}

// NewStore creates a store holding the given validated snapshot.
func NewStore(s *Snapshot) *Store {
	st := &Store{}
	st.snap.Store(s)
	return st
}

// Load returns the active snapshot.
func (st *Store) Load() *Snapshot { return st.snap.Load() }

// Swap publishes a new validated snapshot and returns the previous one.
func (st *Store) Swap(s *Snapshot) *Snapshot { return st.snap.Swap(s) }
