// Package eris implements the Encoding for Robust Immutable Storage (ERIS)
// encoding, revision erisx3.
//
// ERIS is an encoding of arbitrary content into a set of uniformly sized,
// encrypted and content-addressed blocks as well as a short identifier
// (a "read capability") that can be encoded as a URN. The content can be
// reassembled from the blocks only with this capability. The encoding is
// defined independent of any storage and transport layer or any specific
// application: content with identical bytes and identical convergence
// secret always produces identical blocks, so unrelated parties storing
// the same content converge on the same ciphertext.
//
// This package does not implement a durable storage layer itself; it only
// concerns itself with the encoding and decoding of content against the
// Store interface. Three backing stores are provided in the store/memstore,
// store/boltstore, and store/dirstore subpackages, and a small CLI built on
// top of them is in cmd/eris.
//
// Encoder and Ingest both turn content into blocks; Encoder pulls from a
// fixed io.Reader and yields every block for the caller to handle, while
// Ingest is pushed bytes incrementally and can produce a capability for
// everything seen so far without losing its place. DecodeRecursive, Decoder,
// and StreamReader go the other way, turning a capability plus a Store (or
// any FetchFunc) back into content.
package eris
