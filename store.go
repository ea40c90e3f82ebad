package eris

import "context"

// Store is the abstract async key→blob map the core ERIS encoder/decoder
// consumes. It is the only collaborator the core requires; how blocks are
// actually persisted (in memory, on disk, over the network) is entirely up
// to the implementation. See the store/memstore and store/boltstore
// subpackages for two concrete backends.
//
// Store must be safe for concurrent Get/Put from multiple ingests and
// readers. Put must be idempotent for a given reference: since the
// reference is the hash of the block's own ciphertext, two Puts for the
// same reference always carry identical bytes, so last-writer-wins is
// always safe.
type Store interface {
	// Get returns the stored ciphertext for ref, or an error wrapping
	// ErrNotFound if no block is stored under that reference. Get
	// performs no verification or decryption; that is the caller's job.
	Get(ctx context.Context, ref Reference) ([]byte, error)

	// Put stores block under ref. block is exactly one of the two
	// defined block sizes in length. Put returns once the write is
	// durable enough for the caller's purposes.
	Put(ctx context.Context, ref Reference, block []byte) error

	// Close releases any resources held by the store.
	Close() error
}

// FetchFunc is the function signature for a function that fetches an
// encrypted block of data from some sort of storage given a block
// reference. The buf parameter is a slice that is guaranteed to be at
// least the size of a block; the function can reuse this storage if it
// wants, or it can allocate and return a new slice.
type FetchFunc func(ctx context.Context, ref Reference, buf []byte) ([]byte, error)

// FetchFromStore adapts a Store into a FetchFunc for use with
// DecodeRecursive, Decoder, and StreamReader. The provided buf is ignored,
// since Store.Get always returns its own backing slice.
func FetchFromStore(store Store) FetchFunc {
	return func(ctx context.Context, ref Reference, _ []byte) ([]byte, error) {
		return store.Get(ctx, ref)
	}
}
