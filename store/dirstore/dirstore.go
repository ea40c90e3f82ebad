// Package dirstore is an eris.Store backed by a plain directory: each
// block is one file, named by the unpadded base32 encoding of its
// reference. This mirrors how ERIS content is commonly laid out on
// ordinary cloud object storage, where the reference doubles as the
// object key.
package dirstore

import (
	"context"
	"encoding/base32"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/erisproto/eris"
)

var base32Enc = base32.StdEncoding.WithPadding(base32.NoPadding)

// Store is a directory-backed eris.Store.
type Store struct {
	dir string
}

// Open returns a Store rooted at dir, which must already exist.
func Open(dir string) (*Store, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening store directory: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("store path %q is not a directory", dir)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) pathForRef(ref eris.Reference) string {
	return filepath.Join(s.dir, base32Enc.EncodeToString(ref[:]))
}

// Get reads the block stored under ref, or returns an error wrapping
// eris.ErrNotFound if no file exists for it.
func (s *Store) Get(_ context.Context, ref eris.Reference) ([]byte, error) {
	block, err := os.ReadFile(s.pathForRef(ref))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", eris.ErrNotFound, ref)
	}
	if err != nil {
		return nil, err
	}
	return block, nil
}

// Put writes block to a file named for ref. Since ref is the hash of
// block's own bytes, a file that already exists for this ref is always
// byte-identical, so Put treats an existing file as success rather than
// rewriting it.
func (s *Store) Put(_ context.Context, ref eris.Reference, block []byte) error {
	f, err := os.OpenFile(s.pathForRef(ref), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(block); err != nil {
		return err
	}
	return nil
}

// Close is a no-op for Store; there is no handle to release.
func (s *Store) Close() error {
	return nil
}

var _ io.Closer = (*Store)(nil)
