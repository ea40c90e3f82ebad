package eris

import (
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

const (
	// ReferenceSize is the size of the reference hash.
	ReferenceSize = blake2b.Size256

	// KeySize is the size of the encryption key.
	KeySize = chacha20.KeySize

	// ConvergenceSecretSize is the length of the convergence secret.
	ConvergenceSecretSize = 32

	// referenceKeyLen is the size, in bytes, of a Reference immediately
	// followed by a Key: the on-disk layout of one child slot inside a
	// node block.
	referenceKeyLen = ReferenceSize + KeySize

	// BlockSize1KiB and BlockSize32KiB are the only two block sizes the
	// erisx3 revision defines.
	BlockSize1KiB  = 1024
	BlockSize32KiB = 32 * 1024
)

// Secret is the convergence secret: a salt mixed into the keyed hash used
// to derive leaf encryption keys. The all-zero Secret is the public
// convergence mode, where any two parties encoding identical bytes arrive
// at identical blocks.
type Secret [ConvergenceSecretSize]byte

// arity returns the number of child pairs that fit in one interior node
// block of the given size.
func arity(blockSize int) int {
	return blockSize / referenceKeyLen
}

// validBlockSize reports whether blockSize is one of the two sizes this
// revision permits.
func validBlockSize(blockSize int) bool {
	return blockSize == BlockSize1KiB || blockSize == BlockSize32KiB
}

// blockSizeByte returns the one-byte wire encoding (the base-2 logarithm
// of blockSize) for a valid block size.
func blockSizeByte(blockSize int) (byte, bool) {
	switch blockSize {
	case BlockSize1KiB:
		return 0x0a, true
	case BlockSize32KiB:
		return 0x0f, true
	default:
		return 0, false
	}
}

// blockSizeFromByte is the inverse of blockSizeByte.
func blockSizeFromByte(b byte) (int, bool) {
	size := 1 << b
	if !validBlockSize(size) {
		return 0, false
	}
	return size, true
}

// nonceForLevel returns the 12-byte ChaCha20 nonce used to encrypt or
// decrypt a block at the given tree level. The nonce is all-zero except
// for its last byte, which carries the level; leaves (level 0) therefore
// use the all-zero nonce.
func nonceForLevel(level int) [chacha20.NonceSize]byte {
	var nonce [chacha20.NonceSize]byte
	nonce[chacha20.NonceSize-1] = byte(level)
	return nonce
}
