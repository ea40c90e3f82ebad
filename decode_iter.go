package eris

import (
	"context"
)

// decodeNode is a wrapper type that represents a node in an ERIS-encoded
// tree along with the level of the node.
type decodeNode struct {
	ref   ReferenceKeyPair
	level int
}

// Decoder is a streaming decoder that turns an ERIS-encoded tree back into
// the original content, one leaf block at a time. It is agnostic to how
// encrypted blocks are fetched or how output is consumed; for random access
// into the decoded content, see StreamReader instead.
type Decoder struct {
	fetch FetchFunc
	rc    ReadCapability

	err error

	// buf is scratch storage of blockSize that can be reused across
	// fetches.
	buf []byte

	// block is the most recently decoded block of original content. It
	// may alias buf, depending on what fetch returns.
	block []byte

	// stack holds the nodes left to visit, deepest-first so that popping
	// the tail walks the tree left to right.
	stack []decodeNode

	didInit bool
}

// NewDecoder creates a new Decoder for the content addressed by rc, fetched
// through fetch.
func NewDecoder(fetch FetchFunc, rc ReadCapability) *Decoder {
	return &Decoder{
		fetch: fetch,
		rc:    rc,
		buf:   make([]byte, rc.BlockSize),
	}
}

// Next fetches and decrypts blocks of the ERIS-encoded tree until it
// produces a block of the original content or an error occurs.
//
// Next returns false when decoding is finished or an error occurred; the
// caller should check Err to distinguish the two. When Next returns true,
// Block returns the next chunk of original content.
func (d *Decoder) Next(ctx context.Context) bool {
	if d.err != nil {
		return false
	}

	if !d.didInit {
		d.stack = append(d.stack, decodeNode{ref: d.rc.Root, level: d.rc.Level})
		d.didInit = true
	}

	for len(d.stack) > 0 {
		lastIdx := len(d.stack) - 1
		curr := d.stack[lastIdx]
		d.stack = d.stack[:lastIdx]
		isFinal := len(d.stack) == 0

		if extraChecks && curr.level < 0 {
			panic("invalid level")
		}

		buf, err := d.dereferenceNode(ctx, curr.ref, curr.level)
		if err != nil {
			d.err = err
			return false
		}

		if curr.level == 0 {
			d.block = buf

			if isFinal {
				var err error
				d.block, err = removePadding(d.block, d.rc.BlockSize)
				if err != nil {
					d.err = err
					return false
				}

				// An empty final block means there was no content left
				// once padding was stripped; nothing more to emit.
				if len(d.block) == 0 {
					return false
				}
			}
			return true
		}

		if err := d.decodeInternalNode(buf, curr.level-1); err != nil {
			d.err = err
			return false
		}

		if extraChecks && len(d.stack) == 0 {
			panic("no internal nodes decoded")
		}
	}

	return false
}

// decodeInternalNode decodes an internal node and pushes all of its
// children onto the stack in left-to-right processing order.
func (d *Decoder) decodeInternalNode(node []byte, atLevel int) error {
	if extraChecks && atLevel < 0 {
		panic("invalid level")
	}

	refs, err := decodeInternalNode(node, d.rc.BlockSize)
	if err != nil {
		return err
	}

	for i := len(refs) - 1; i >= 0; i-- {
		d.stack = append(d.stack, decodeNode{ref: refs[i], level: atLevel})
	}
	return nil
}

func (d *Decoder) dereferenceNode(ctx context.Context, ref ReferenceKeyPair, level int) ([]byte, error) {
	return dereferenceNode(ctx, d.fetch, d.buf, ref, level, d.rc.BlockSize)
}

// Block returns the most recently decoded block of original content.
func (d *Decoder) Block() []byte {
	if d.err != nil {
		if extraChecks {
			panic("cannot call Block() after error")
		}
		return nil
	}
	return d.block
}

// Err returns the error that occurred during decoding, if any.
func (d *Decoder) Err() error {
	return d.err
}
