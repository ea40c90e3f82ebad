package eris

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// defaultReaderConcurrency bounds how many sibling subtrees a StreamReader
// expands at once during lazy initialization.
const defaultReaderConcurrency = 8

// StreamReader provides random access to the content addressed by a read
// capability: Read, Seek, Tell, Length, and ReadLine, all in terms of the
// decoded (unpadded) byte stream. The tree is walked once, lazily, on the
// first access.
type StreamReader struct {
	fetch FetchFunc
	rc    ReadCapability

	pos     int64
	stopped bool

	// leaves is the flat, left-to-right list of leaf pairs, populated by
	// the lazy tree walk.
	leaves []ReferenceKeyPair

	// lastLeafLen is the unpadded length of the final leaf, computed
	// once the tree walk and a decrypt of that leaf have both happened.
	lastLeafLen int
	length      int64

	initialized bool
}

// NewStreamReader creates a StreamReader over the content addressed by rc,
// fetched through fetch. The tree is not walked until the first call to one
// of the reader's methods.
func NewStreamReader(fetch FetchFunc, rc ReadCapability) *StreamReader {
	return &StreamReader{fetch: fetch, rc: rc}
}

// expandNode recursively expands a node at the given level into the flat,
// left-to-right list of leaf pairs beneath it. Sibling subtrees below the
// top level are expanded concurrently, bounded by defaultReaderConcurrency.
func expandNode(ctx context.Context, fetch FetchFunc, refKey ReferenceKeyPair, level, blockSize int) ([]ReferenceKeyPair, error) {
	if level == 0 {
		return []ReferenceKeyPair{refKey}, nil
	}

	node, err := dereferenceNode(ctx, fetch, make([]byte, blockSize), refKey, level, blockSize)
	if err != nil {
		return nil, err
	}

	children, err := decodeInternalNode(node, blockSize)
	if err != nil {
		return nil, err
	}

	results := make([][]ReferenceKeyPair, len(children))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultReaderConcurrency)

	for i, child := range children {
		i, child := i, child
		g.Go(func() error {
			leaves, err := expandNode(gctx, fetch, child, level-1, blockSize)
			if err != nil {
				return err
			}
			results[i] = leaves
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []ReferenceKeyPair
	for _, leaves := range results {
		out = append(out, leaves...)
	}
	return out, nil
}

func (r *StreamReader) init(ctx context.Context) error {
	if r.initialized {
		return nil
	}

	leaves, err := expandNode(ctx, r.fetch, r.rc.Root, r.rc.Level, r.rc.BlockSize)
	if err != nil {
		return err
	}
	if extraChecks && len(leaves) == 0 {
		panic("no leaves")
	}

	last, err := dereferenceNode(ctx, r.fetch, make([]byte, r.rc.BlockSize), leaves[len(leaves)-1], 0, r.rc.BlockSize)
	if err != nil {
		return err
	}
	unpadded, err := removePadding(last, r.rc.BlockSize)
	if err != nil {
		return err
	}

	r.leaves = leaves
	r.lastLeafLen = len(unpadded)
	r.length = int64(len(leaves)-1)*int64(r.rc.BlockSize) + int64(r.lastLeafLen)
	r.initialized = true
	return nil
}

// Length returns the total decoded length of the content. It may fetch and
// decrypt blocks on first call.
func (r *StreamReader) Length(ctx context.Context) (int64, error) {
	if err := r.init(ctx); err != nil {
		return 0, err
	}
	return r.length, nil
}

// Tell returns the reader's current position.
func (r *StreamReader) Tell() int64 {
	return r.pos
}

// Seek implements io.Seeker in terms of the current position, backed by
// SeekContext with context.Background.
func (r *StreamReader) Seek(offset int64, whence int) (int64, error) {
	return r.SeekContext(context.Background(), offset, whence)
}

// SeekContext moves the reader's position and clears the stopped flag.
func (r *StreamReader) SeekContext(ctx context.Context, offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		r.pos = offset
	case io.SeekCurrent:
		r.pos += offset
	case io.SeekEnd:
		length, err := r.Length(ctx)
		if err != nil {
			return 0, err
		}
		r.pos = length + offset
	default:
		return 0, fmt.Errorf("%w: invalid whence %d", ErrInvalidArgument, whence)
	}

	if r.pos < 0 {
		return 0, fmt.Errorf("%w: negative position", ErrInvalidArgument)
	}

	r.stopped = false
	return r.pos, nil
}

// Read implements io.Reader in terms of the current position, backed by
// ReadContext with context.Background.
func (r *StreamReader) Read(p []byte) (int, error) {
	return r.ReadContext(context.Background(), p)
}

// ReadContext serves up to len(p) bytes from the current position,
// fetching and decrypting leaves as needed, and advances the position by
// however many bytes were read.
func (r *StreamReader) ReadContext(ctx context.Context, p []byte) (int, error) {
	if err := r.init(ctx); err != nil {
		return 0, err
	}
	if r.stopped {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	blockSize := int64(r.rc.BlockSize)
	total := 0

	for total < len(p) {
		blkIndex := int(r.pos / blockSize)
		blkOff := int(r.pos % blockSize)

		if blkIndex >= len(r.leaves) {
			r.stopped = true
			break
		}

		block, err := dereferenceNode(ctx, r.fetch, make([]byte, r.rc.BlockSize), r.leaves[blkIndex], 0, r.rc.BlockSize)
		if err != nil {
			return total, err
		}

		isLast := blkIndex == len(r.leaves)-1
		blockLen := len(block)
		if isLast {
			blockLen = r.lastLeafLen
			if blockLen <= blkOff {
				r.stopped = true
				break
			}
		}

		n := copy(p[total:], block[blkOff:blockLen])
		total += n
		r.pos += int64(n)

		if n == 0 {
			r.stopped = true
			break
		}
	}

	if total == 0 {
		return 0, io.EOF
	}
	return total, nil
}

// ReadLine reads from the current position up to (but not including) the
// next '\n' or '\r', or until EOF. It is backed by ReadLineContext with
// context.Background.
func (r *StreamReader) ReadLine() ([]byte, error) {
	return r.ReadLineContext(context.Background())
}

// ReadLineContext is like ReadContext, but reads byte-by-byte until a line
// terminator or EOF, returning the accumulated line without the
// terminator.
func (r *StreamReader) ReadLineContext(ctx context.Context) ([]byte, error) {
	var line bytes.Buffer
	var b [1]byte

	for {
		n, err := r.ReadContext(ctx, b[:])
		if n == 1 {
			if b[0] == '\n' || b[0] == '\r' {
				return line.Bytes(), nil
			}
			line.WriteByte(b[0])
		}
		if err != nil {
			if err == io.EOF {
				if line.Len() == 0 {
					return nil, io.EOF
				}
				return line.Bytes(), nil
			}
			return nil, err
		}
	}
}
