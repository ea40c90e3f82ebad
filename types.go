package eris

import (
	"crypto/subtle"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Reference is a hash of an encrypted block of data. It is defined in the
// ERIS specification as:
//
//	The reference is the unkeyed Blake2b hash of the encrypted block (32 bytes)
type Reference [ReferenceSize]byte

// isZero returns true if the reference is all zeros. A genuine Reference
// is a BLAKE2b digest, so the odds of a real block ever hashing to all
// zeros are negligible; this is only ever used to detect the encoder's own
// zero-padding of a short trailing node block, never to distinguish an
// "empty" slot from a coincidentally-zero one.
func (r Reference) isZero() bool {
	for _, b := range r {
		if b != 0 {
			return false
		}
	}
	return true
}

// String implements the fmt.Stringer interface.
func (r Reference) String() string {
	return fmt.Sprintf("%x", r[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (r Reference) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Key is the encryption key required to decrypt the block of data. It is
// defined in the ERIS specification as:
//
//	key is the ChaCha20 key to decrypt the block (32 bytes)
type Key [KeySize]byte

// String implements the fmt.Stringer interface.
func (k Key) String() string {
	return fmt.Sprintf("%x", k[:])
}

// ReferenceKeyPair represents a pairing of a block reference and the key
// required to decrypt the block: the "Pair" of the specification. A run of
// Pairs is laid out contiguously so that it can be copied byte-for-byte
// into a node block; the pair order inside a node block is the tree order.
type ReferenceKeyPair struct {
	Reference Reference
	Key       Key
}

// Equal returns true if the two ReferenceKeyPairs are equal.
func (rk ReferenceKeyPair) Equal(other ReferenceKeyPair) bool {
	// Use crypto/subtle to do a constant-time comparison of the two
	// values, just to be safe.
	return subtle.ConstantTimeCompare(rk.Reference[:], other.Reference[:]) == 1 &&
		subtle.ConstantTimeCompare(rk.Key[:], other.Key[:]) == 1
}

// appendTo appends the 64-byte wire image of the pair (Reference ‖ Key) to
// data and returns the result.
func (rk ReferenceKeyPair) appendTo(data []byte) []byte {
	data = append(data, rk.Reference[:]...)
	data = append(data, rk.Key[:]...)
	return data
}

// ReadCapability is all the information required to read a piece of content
// that has been split and encrypted as per the ERIS specification: the
// block size, the level of the root node, and the reference-key pair
// needed to fetch and decrypt it.
type ReadCapability struct {
	// BlockSize is the size of the blocks that the content has been split
	// into.
	BlockSize int
	// Level is the level of the root node of the tree. Level 0 means the
	// root is itself a leaf.
	Level int
	// Root is the reference-key pair for the root node of the tree.
	Root ReferenceKeyPair
}

// Equal returns true if the two ReadCapabilities are equal.
func (rc ReadCapability) Equal(other ReadCapability) bool {
	return rc.BlockSize == other.BlockSize &&
		rc.Level == other.Level &&
		rc.Root.Equal(other.Root)
}

// capabilityPayloadLen is the length, in bytes, of the binary payload of a
// ReadCapability: one block-size byte, one level byte, a 32-byte reference,
// and a 32-byte key.
const capabilityPayloadLen = 1 + 1 + ReferenceSize + KeySize

// AppendBinary appends the binary representation of the ReadCapability to
// the given byte slice and returns it, or any error that occurs.
//
// The binary representation of a ReadCapability is as per the ERIS
// specification: block_size_byte ‖ level ‖ reference[32] ‖ key[32].
func (rc ReadCapability) AppendBinary(data []byte) ([]byte, error) {
	sizeByte, ok := blockSizeByte(rc.BlockSize)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported block size %d", ErrInvalidArgument, rc.BlockSize)
	}
	data = append(data, sizeByte)

	// The level is a single byte; error if it's too large. Any byte value
	// is otherwise syntactically valid -- the specification only bounds
	// level by what the content actually requires.
	if rc.Level < 0 || rc.Level > 255 {
		return nil, fmt.Errorf("%w: level %d out of range", ErrInvalidArgument, rc.Level)
	}
	data = append(data, byte(rc.Level))

	data = rc.Root.appendTo(data)
	return data, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (rc ReadCapability) MarshalBinary() (data []byte, err error) {
	return rc.AppendBinary(nil)
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (rc *ReadCapability) UnmarshalBinary(data []byte) error {
	if len(data) < capabilityPayloadLen {
		return fmt.Errorf("%w: capability payload too short: %d bytes", ErrInvalidFormat, len(data))
	}

	size, ok := blockSizeFromByte(data[0])
	if !ok {
		return fmt.Errorf("%w: unsupported block size byte 0x%02x", ErrInvalidFormat, data[0])
	}
	rc.BlockSize = size
	rc.Level = int(data[1])

	copy(rc.Root.Reference[:], data[2:2+ReferenceSize])
	copy(rc.Root.Key[:], data[2+ReferenceSize:capabilityPayloadLen])
	return nil
}

// capabilityCBORTag is the CBOR tag number reserved for an ERIS read
// capability on the wire: the 66-byte binary payload above, tagged 276.
const capabilityCBORTag = 276

// MarshalCBOR implements the cbor.Marshaler interface, encoding the
// capability as CBOR tag 276 wrapping the 66-byte binary payload.
func (rc ReadCapability) MarshalCBOR() ([]byte, error) {
	payload, err := rc.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(cbor.Tag{Number: capabilityCBORTag, Content: payload})
}

// UnmarshalCBOR implements the cbor.Unmarshaler interface.
func (rc *ReadCapability) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("%w: decoding capability CBOR: %v", ErrInvalidFormat, err)
	}
	if tag.Number != capabilityCBORTag {
		return fmt.Errorf("%w: unexpected CBOR tag %d, want %d", ErrInvalidFormat, tag.Number, capabilityCBORTag)
	}
	payload, ok := tag.Content.([]byte)
	if !ok {
		return fmt.Errorf("%w: CBOR tag %d content is not a byte string", ErrInvalidFormat, capabilityCBORTag)
	}
	return rc.UnmarshalBinary(payload)
}

// urnNamespace and urnPrefix are the URN namespace identifier for this
// revision of ERIS and the literal prefix that precedes the base32
// payload. The inline doc-comment in the upstream specification begins
// "urn:erisx2:", but "urn:erisx3:" is the authoritative, current form.
const (
	urnNamespace = "erisx3"
	urnPrefix    = "urn:" + urnNamespace + ":"
)

// base32Enc is the unpadded standard Base32 alphabet [RFC4648] used for the
// URN's namespace-specific string.
var base32Enc = base32.StdEncoding.WithPadding(base32.NoPadding)

// URN returns the URN for the ReadCapability, as defined by the ERIS
// specification: "urn:erisx3:" followed by the unpadded Base32 encoding of
// the 66-byte binary capability (106 characters).
func (rc ReadCapability) URN() (string, error) {
	data, err := rc.MarshalBinary()
	if err != nil {
		return "", err
	}
	return urnPrefix + base32Enc.EncodeToString(data), nil
}

// MustURN is like URN, but panics if an error occurs.
func (rc ReadCapability) MustURN() string {
	urn, err := rc.URN()
	if err != nil {
		panic(err)
	}
	return urn
}

// urnPayloadChars is the number of base32 characters in the namespace
// specific string of an erisx3 URN: ceil(66 * 8 / 5).
const urnPayloadChars = 106

// ParseReadCapabilityURN parses a URN for a ReadCapability, as defined by
// the ERIS specification. Parsers accept exactly three colon-separated
// parts with the first two equal to "urn" and "erisx3", and a base32
// payload of at least 106 characters; only the first 106 characters are
// decoded, so trailing data (if any) is ignored.
func ParseReadCapabilityURN(urn string) (rc ReadCapability, err error) {
	parts := strings.SplitN(urn, ":", 3)
	if len(parts) != 3 || parts[0] != "urn" || parts[1] != urnNamespace {
		return rc, fmt.Errorf("%w: invalid URN %q", ErrInvalidURN, urn)
	}
	if len(parts[2]) < urnPayloadChars {
		return rc, fmt.Errorf("%w: URN payload too short: %d chars", ErrInvalidURN, len(parts[2]))
	}

	data, err := base32Enc.DecodeString(parts[2][:urnPayloadChars])
	if err != nil {
		return rc, fmt.Errorf("%w: decoding URN payload: %v", ErrInvalidURN, err)
	}
	if err := rc.UnmarshalBinary(data); err != nil {
		return rc, err
	}
	return rc, nil
}
