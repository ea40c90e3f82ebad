package eris

import (
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

// extraChecks enables additional invariant assertions that are cheap
// relative to the surrounding crypto operations and catch programmer
// error (not attacker-controlled input) during development.
const extraChecks = true

// appendPadWithZeroes appends enough zero bytes to the given byte slice to
// make it have a given length.
func appendPadWithZeroes(buf []byte, length int) []byte {
	if len(buf) > length {
		panic("buffer too large")
	} else if len(buf) == length {
		return buf
	}
	return append(buf, make([]byte, length-len(buf))...)
}

// encryptLeafNode encrypts the given leaf node (already padded to
// blockSize) under the convergence secret, returning the ciphertext block
// and the reference-key pair that addresses it.
//
// keyHasher, if non-nil, is a keyed BLAKE2b-256 hasher already configured
// with secret as its key; callers that encrypt many leaves (the streaming
// encoder) pass one in and Reset it between calls to avoid re-deriving the
// keyed hash state on every leaf.
func encryptLeafNode(keyHasher hash.Hash, node []byte, secret Secret) (block []byte, refKey ReferenceKeyPair) {
	if keyHasher == nil {
		var err error
		keyHasher, err = blake2b.New256(secret[:])
		if extraChecks && err != nil {
			panic(err)
		}
	} else {
		keyHasher.Reset()
	}
	if _, err := keyHasher.Write(node); err != nil {
		panic(err)
	}

	keySlice := keyHasher.Sum(refKey.Key[:0])
	if extraChecks && len(keySlice) != KeySize {
		panic("keyed hash has wrong length")
	}

	nonce := nonceForLevel(0)
	cipher, err := chacha20.NewUnauthenticatedCipher(refKey.Key[:], nonce[:])
	if extraChecks && err != nil {
		panic(err)
	}

	block = make([]byte, len(node))
	cipher.XORKeyStream(block, node)

	refKey.Reference = blake2b.Sum256(block)
	return block, refKey
}

// encryptInternalNode encrypts an internal (level >= 1) node: a packed,
// zero-padded run of child pairs. Convergence across interior nodes is
// unconditional -- the BLAKE2b key is always the all-zero secret -- but
// the ChaCha20 nonce's last byte carries level, domain-separating
// identical node content at different depths.
func encryptInternalNode(node []byte, level int, secret Secret) (block []byte, refKey ReferenceKeyPair) {
	if level <= 0 {
		panic("level must be at least 1")
	}
	if extraChecks && level > 255 {
		panic("level too large")
	}

	var zeroSecret Secret
	keyHasher, err := blake2b.New256(zeroSecret[:])
	if extraChecks && err != nil {
		panic(err)
	}
	if _, err := keyHasher.Write(node); err != nil {
		panic(err)
	}
	keyHasher.Sum(refKey.Key[:0])

	nonce := nonceForLevel(level)
	cipher, err := chacha20.NewUnauthenticatedCipher(refKey.Key[:], nonce[:])
	if extraChecks && err != nil {
		panic(err)
	}

	block = make([]byte, len(node))
	cipher.XORKeyStream(block, node)

	refKey.Reference = blake2b.Sum256(block)
	return block, refKey
}

// constructInternalNodes takes a non-empty, ordered list of reference-key
// pairs and packs them into node buffers of blockSize, arity pairs per
// node, left to right; the last node is zero-padded if short.
func constructInternalNodes(referenceKeyPairs []ReferenceKeyPair, blockSize int) [][]byte {
	if extraChecks && len(referenceKeyPairs) == 0 {
		panic("no reference-key pairs")
	}

	a := arity(blockSize)
	var nodes [][]byte

	for len(referenceKeyPairs) > 0 {
		var chunk []ReferenceKeyPair
		if len(referenceKeyPairs) <= a {
			chunk, referenceKeyPairs = referenceKeyPairs, nil
		} else {
			chunk, referenceKeyPairs = referenceKeyPairs[:a], referenceKeyPairs[a:]
		}

		node := make([]byte, 0, len(chunk)*referenceKeyLen)
		for _, refKey := range chunk {
			node = refKey.appendTo(node)
		}
		node = appendPadWithZeroes(node, blockSize)

		nodes = append(nodes, node)
	}

	return nodes
}
