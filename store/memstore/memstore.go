// Package memstore is an in-memory eris.Store backed by a guarded map. It
// is intended for tests and short-lived tools; nothing is persisted past
// process exit.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/erisproto/eris"
)

// Store is an in-memory eris.Store. The zero value is not usable; use New.
type Store struct {
	mu     sync.RWMutex
	blocks map[eris.Reference][]byte
}

// New creates an empty in-memory Store.
func New() *Store {
	return &Store{blocks: make(map[eris.Reference][]byte)}
}

// Get returns the block stored under ref, or an error wrapping
// eris.ErrNotFound if nothing is stored there.
func (s *Store) Get(_ context.Context, ref eris.Reference) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	block, ok := s.blocks[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", eris.ErrNotFound, ref)
	}

	// Return a copy so that callers mutating the returned slice (the
	// decrypt-in-place path in the core package) can't corrupt the
	// stored ciphertext for other readers.
	out := make([]byte, len(block))
	copy(out, block)
	return out, nil
}

// Put stores block under ref. Since ref is always the hash of block's own
// bytes, a second Put for the same ref is a harmless no-op overwrite.
func (s *Store) Put(_ context.Context, ref eris.Reference, block []byte) error {
	cp := make([]byte, len(block))
	copy(cp, block)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[ref] = cp
	return nil
}

// Close releases the Store's resources. For Store, this just drops all
// blocks so the garbage collector can reclaim them.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = nil
	return nil
}

// Len reports how many blocks are currently stored. It's mainly useful in
// tests that want to assert on store growth.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocks)
}
