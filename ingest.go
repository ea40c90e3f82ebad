package eris

import (
	"context"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
)

// Ingest is a push-based, store-backed encoder: bytes arrive incrementally
// via Append, and Cap can be called at any point to obtain a read
// capability for everything appended so far, without disturbing further
// Appends. This is the API a network protocol or an os.File tailer wants;
// for pulling every block of a known-length io.Reader in one pass, see
// Encoder or EncodeAll.
type Ingest struct {
	store     Store
	secret    Secret
	blockSize int

	blakeHasher hash.Hash

	// buf is the working buffer for the block currently being filled.
	// Only buf[:pos%blockSize] holds meaningful plaintext; the rest is
	// unspecified until written.
	buf []byte
	pos int64

	// leafPairs holds the reference-key pair of every full block
	// committed to the store so far, in input order.
	leafPairs []ReferenceKeyPair
}

// NewIngest creates an Ingest that writes blocks to store, encrypted under
// secret, of size blockSize.
func NewIngest(store Store, secret Secret, blockSize int) *Ingest {
	hasher, err := blake2b.New256(secret[:])
	if extraChecks && err != nil {
		panic(err)
	}
	return &Ingest{
		store:       store,
		secret:      secret,
		blockSize:   blockSize,
		blakeHasher: hasher,
		buf:         make([]byte, blockSize),
	}
}

// Position returns the number of bytes appended since construction.
func (g *Ingest) Position() int64 {
	return g.pos
}

// Append copies p into the working buffer, committing every block that
// fills along the way. Append suspends until each triggered store put
// completes.
func (g *Ingest) Append(ctx context.Context, p []byte) error {
	for len(p) > 0 {
		off := int(g.pos % int64(g.blockSize))
		n := copy(g.buf[off:], p)
		p = p[n:]
		g.pos += int64(n)

		if off+n == g.blockSize {
			block, refKey := encryptLeafNode(g.blakeHasher, g.buf, g.secret)
			if err := g.store.Put(ctx, refKey.Reference, block); err != nil {
				return fmt.Errorf("storing leaf %d: %w", len(g.leafPairs), err)
			}
			g.leafPairs = append(g.leafPairs, refKey)
		}
	}
	return nil
}

// Cap returns the read capability for everything appended so far, without
// invalidating further Append calls.
//
// This pads and encrypts a snapshot of the current partial block -- never
// the live working buffer -- so there is nothing to restore afterward: the
// buffer's valid plaintext prefix, buf[:pos%blockSize], is left untouched
// and the next Append resumes writing into it exactly as if Cap had never
// been called.
func (g *Ingest) Cap(ctx context.Context) (ReadCapability, error) {
	off := int(g.pos % int64(g.blockSize))

	padded := make([]byte, g.blockSize)
	copy(padded, g.buf[:off])
	padded[off] = 0x80

	block, paddingPair := encryptLeafNode(g.blakeHasher, padded, g.secret)
	if err := g.store.Put(ctx, paddingPair.Reference, block); err != nil {
		return ReadCapability{}, fmt.Errorf("storing padding leaf: %w", err)
	}

	if len(g.leafPairs) == 0 {
		return ReadCapability{BlockSize: g.blockSize, Level: 0, Root: paddingPair}, nil
	}

	pairs := make([]ReferenceKeyPair, len(g.leafPairs), len(g.leafPairs)+1)
	copy(pairs, g.leafPairs)
	pairs = append(pairs, paddingPair)

	level, root, err := reduceToRoot(ctx, g.store, pairs, g.blockSize, g.secret)
	if err != nil {
		return ReadCapability{}, err
	}
	return ReadCapability{BlockSize: g.blockSize, Level: level, Root: root}, nil
}

// EncodeAll is a single-shot convenience wrapper: it reads r to completion,
// storing every block in store, and returns the resulting read capability.
func EncodeAll(ctx context.Context, store Store, r io.Reader, secret Secret, blockSize int) (ReadCapability, error) {
	ing := NewIngest(store, secret, blockSize)

	buf := make([]byte, blockSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if aerr := ing.Append(ctx, buf[:n]); aerr != nil {
				return ReadCapability{}, aerr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return ReadCapability{}, err
		}
	}

	return ing.Cap(ctx)
}
