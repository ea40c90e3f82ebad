package eris

import (
	"context"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

// dereferenceNode fetches, verifies, and decrypts a single block addressed
// by refKey at the given tree level, using buf as scratch space to pass to
// fetch (fetch may return buf back filled, or a freshly allocated slice).
func dereferenceNode(
	ctx context.Context,
	fetch FetchFunc,
	buf []byte,
	refKey ReferenceKeyPair,
	level, blockSize int,
) ([]byte, error) {
	block, err := fetch(ctx, refKey.Reference, buf)
	if err != nil {
		return nil, err
	}

	if len(block) != blockSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidBlockSize, len(block), blockSize)
	}

	// The reference is the unkeyed BLAKE2b-256 hash of the ciphertext;
	// this is the only integrity check a fetched block gets before being
	// decrypted.
	if got := blake2b.Sum256(block); got != refKey.Reference {
		return nil, fmt.Errorf("%w: reference mismatch for block at level %d", ErrInvalidBlock, level)
	}

	nonce := nonceForLevel(level)
	cipher, err := chacha20.NewUnauthenticatedCipher(refKey.Key[:], nonce[:])
	if err != nil {
		return nil, err
	}
	cipher.XORKeyStream(block, block)
	return block, nil
}

// decodeInternalNode parses a decrypted interior node block into its
// ordered list of present children. The first all-zero 64-byte slot
// terminates the node; constructInternalNodes never emits an all-zero pair
// followed by a non-zero one, so any non-zero byte past the terminator is
// corruption.
func decodeInternalNode(data []byte, blockSize int) (refs []ReferenceKeyPair, err error) {
	if extraChecks && len(data) != blockSize {
		panic("invalid data length")
	}

	for i := 0; i < len(data); i += referenceKeyLen {
		var ref Reference
		copy(ref[:], data[i:i+ReferenceSize])

		if ref.isZero() {
			for j := i + ReferenceSize; j < len(data); j++ {
				if data[j] != 0 {
					return nil, fmt.Errorf("%w: non-zero byte after empty child slot", ErrInvalidPadding)
				}
			}
			break
		}

		var key Key
		copy(key[:], data[i+ReferenceSize:i+referenceKeyLen])
		refs = append(refs, ReferenceKeyPair{Reference: ref, Key: key})
	}
	return refs, nil
}

// DecodeRecursive decodes the entire content addressed by rc and returns
// it, or an error if the content could not be decoded.
//
// fetch is called to retrieve blocks from some backing store; see the
// documentation on FetchFunc for the exact semantics. DecodeRecursive walks
// and decrypts the whole tree eagerly; StreamReader offers the same walk
// lazily, with random access.
func DecodeRecursive(ctx context.Context, fetch FetchFunc, rc ReadCapability) ([]byte, error) {
	blockSize := rc.BlockSize

	var walk func(level int, refKey ReferenceKeyPair) ([]byte, error)
	walk = func(level int, refKey ReferenceKeyPair) ([]byte, error) {
		node, err := dereferenceNode(ctx, fetch, make([]byte, blockSize), refKey, level, blockSize)
		if err != nil {
			return nil, err
		}

		if level == 0 {
			return node, nil
		}

		refs, err := decodeInternalNode(node, blockSize)
		if err != nil {
			return nil, err
		}

		var output []byte
		for _, ref := range refs {
			child, err := walk(level-1, ref)
			if err != nil {
				return nil, err
			}
			output = append(output, child...)
		}
		return output, nil
	}

	padded, err := walk(rc.Level, rc.Root)
	if err != nil {
		return nil, err
	}
	return removePadding(padded, blockSize)
}
