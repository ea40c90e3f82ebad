// Package boltstore is an on-disk eris.Store backed by a bbolt database:
// one bucket, keyed by the 32-byte reference.
package boltstore

import (
	"context"
	"fmt"

	"github.com/erisproto/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

var blocksBucket = []byte("blocks")

// Store is an on-disk eris.Store backed by a single bbolt database file.
type Store struct {
	db  *bbolt.DB
	log zerolog.Logger
}

// Open opens (creating if necessary) a bbolt-backed Store at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blocksBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating blocks bucket: %w", err)
	}

	return &Store{db: db, log: log.With().Str("component", "boltstore").Str("path", path).Logger()}, nil
}

// Get returns the block stored under ref, or an error wrapping
// eris.ErrNotFound if nothing is stored there.
func (s *Store) Get(_ context.Context, ref eris.Reference) ([]byte, error) {
	var block []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(blocksBucket).Get(ref[:])
		if v == nil {
			return fmt.Errorf("%w: %s", eris.ErrNotFound, ref)
		}
		block = make([]byte, len(v))
		copy(block, v)
		return nil
	})
	if err != nil {
		s.log.Debug().Stringer("ref", ref).Err(err).Msg("get miss")
		return nil, err
	}
	return block, nil
}

// Put stores block under ref, overwriting any existing value (which, since
// ref is the hash of block, is always byte-identical).
func (s *Store) Put(_ context.Context, ref eris.Reference, block []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(blocksBucket).Put(ref[:], block)
	})
	if err != nil {
		return fmt.Errorf("putting block %s: %w", ref, err)
	}
	s.log.Trace().Stringer("ref", ref).Int("size", len(block)).Msg("put")
	return nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}
