package eris

import (
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
)

// encoderPhase tracks which part of the tree an Encoder is currently
// emitting blocks for.
type encoderPhase int

const (
	phaseLeaves encoderPhase = iota
	phaseInterior
	phaseDone
)

// Encoder is a pull-based streaming encoder: repeated calls to Next produce
// every block of the encoded tree, leaves first and then each interior
// level in turn, without ever holding the whole tree in memory at once. It
// is agnostic to how blocks get stored; the caller is expected to persist
// Block() somewhere (or discard it, for benchmarking) after every Next call
// that returns true.
//
// For push-based ingestion, where content arrives incrementally and a
// capability is only needed once the caller decides to stop, see Ingest.
type Encoder struct {
	content   io.Reader
	blockSize int
	secret    Secret

	blakeHasher hash.Hash
	splitter    *splitter

	phase encoderPhase

	// leafPairs accumulates the reference-key pair for every leaf block
	// as it's produced; once the splitter is exhausted this becomes the
	// level-0 pair list the interior tree is built from.
	leafPairs []ReferenceKeyPair

	level          int
	curLevelNodes  [][]byte
	curLevelIdx    int
	nextLevelPairs []ReferenceKeyPair

	curBlock []byte
	curRef   ReferenceKeyPair

	capability ReadCapability
	err        error
}

// NewEncoder creates an Encoder that reads content from r, splitting it
// into blocks of blockSize and encrypting each one under secret.
func NewEncoder(r io.Reader, secret Secret, blockSize int) *Encoder {
	hasher, err := blake2b.New256(secret[:])
	if extraChecks && err != nil {
		panic(err)
	}
	return &Encoder{
		content:     r,
		blockSize:   blockSize,
		secret:      secret,
		blakeHasher: hasher,
		splitter:    newSplitter(r, blockSize),
	}
}

// Next advances the encoder to the next block of the tree. It returns
// false once every block has been produced or an error occurs; the caller
// should check Err to distinguish the two. When Next returns true, Block
// and Reference describe the block just produced.
func (e *Encoder) Next() bool {
	if e.err != nil || e.phase == phaseDone {
		return false
	}

	switch e.phase {
	case phaseLeaves:
		if e.splitter.Next() {
			block, refKey := encryptLeafNode(e.blakeHasher, e.splitter.Block(), e.secret)
			e.leafPairs = append(e.leafPairs, refKey)
			e.curBlock, e.curRef = block, refKey
			return true
		}
		if err := e.splitter.Err(); err != nil {
			e.err = err
			return false
		}

		if extraChecks && len(e.leafPairs) == 0 {
			panic("no reference-key pairs")
		}
		if len(e.leafPairs) == 1 {
			e.finish(0, e.leafPairs[0])
			return false
		}

		e.level = 1
		e.curLevelNodes = constructInternalNodes(e.leafPairs, e.blockSize)
		e.curLevelIdx = 0
		e.nextLevelPairs = make([]ReferenceKeyPair, 0, len(e.curLevelNodes))
		e.phase = phaseInterior
		return e.Next()

	case phaseInterior:
		if e.curLevelIdx < len(e.curLevelNodes) {
			node := e.curLevelNodes[e.curLevelIdx]
			e.curLevelIdx++

			block, refKey := encryptInternalNode(node, e.level, e.secret)
			e.nextLevelPairs = append(e.nextLevelPairs, refKey)
			e.curBlock, e.curRef = block, refKey
			return true
		}

		if len(e.nextLevelPairs) == 1 {
			e.finish(e.level, e.nextLevelPairs[0])
			return false
		}

		e.level++
		e.curLevelNodes = constructInternalNodes(e.nextLevelPairs, e.blockSize)
		e.curLevelIdx = 0
		e.nextLevelPairs = make([]ReferenceKeyPair, 0, len(e.curLevelNodes))
		return e.Next()
	}

	return false
}

func (e *Encoder) finish(level int, root ReferenceKeyPair) {
	e.capability = ReadCapability{BlockSize: e.blockSize, Level: level, Root: root}
	e.phase = phaseDone
}

// Block returns the block produced by the most recent call to Next.
func (e *Encoder) Block() []byte {
	return e.curBlock
}

// Reference returns the reference-key pair addressing the block produced
// by the most recent call to Next.
func (e *Encoder) Reference() ReferenceKeyPair {
	return e.curRef
}

// Err returns the error that stopped encoding, if any.
func (e *Encoder) Err() error {
	return e.err
}

// Capability returns the completed read capability. It is only valid once
// Next has returned false and Err is nil.
func (e *Encoder) Capability() ReadCapability {
	return e.capability
}

// reset reuses the Encoder to encode new content from r, under the same
// secret and block size. It clears all state from the previous run.
func (e *Encoder) reset(r io.Reader) {
	e.content = r
	e.splitter.Reset(r)

	e.phase = phaseLeaves
	e.leafPairs = nil
	e.level = 0
	e.curLevelNodes = nil
	e.curLevelIdx = 0
	e.nextLevelPairs = nil
	e.curBlock = nil
	e.curRef = ReferenceKeyPair{}
	e.capability = ReadCapability{}
	e.err = nil
}
