package eris

import "errors"

// Sentinel errors, one per kind of failure a caller needs to distinguish.
// Call sites wrap these with fmt.Errorf("...: %w", ErrXxx) so that
// errors.Is keeps working while still reporting which operation failed.
var (
	// ErrInvalidBlockSize is a Corruption error: a fetched block's length
	// does not match the block size recorded in its capability.
	ErrInvalidBlockSize = errors.New("eris: invalid block size")

	// ErrInvalidBlock is a Corruption error: a fetched block's BLAKE2b-256
	// hash does not match the reference under which it was fetched.
	ErrInvalidBlock = errors.New("eris: invalid block")

	// ErrInvalidPadding is a Corruption error: leaf unpadding encountered
	// a byte other than 0x00 before the 0x80 terminator or found no 0x80
	// at all, or an interior node has non-zero bytes after its first
	// empty child slot.
	ErrInvalidPadding = errors.New("eris: invalid padding")

	// ErrInvalidFormat is a Format error: a malformed capability payload,
	// URN prefix, or wire value.
	ErrInvalidFormat = errors.New("eris: invalid format")

	// ErrInvalidURN is a Format error specific to URN parsing.
	ErrInvalidURN = errors.New("eris: invalid URN")

	// ErrInvalidArgument is an Argument error: a caller-supplied value
	// (such as a capability block size that is neither 1024 nor 32768, or
	// an invalid seek) cannot be used for the requested operation.
	ErrInvalidArgument = errors.New("eris: invalid argument")

	// ErrNotFound is an IO/NotFound error: a Store could not return the
	// block for a given reference.
	ErrNotFound = errors.New("eris: block not found")
)
