// Package storetest is a conformance suite for eris.Store implementations,
// run against each concrete backend from that backend's own package. The
// pattern mirrors a shared chunk-store test suite embedding
// testify's suite.Suite and parameterized by a store factory.
package storetest

import (
	"bytes"
	"context"
	"crypto/rand"

	"github.com/erisproto/eris"
	"github.com/stretchr/testify/suite"
)

// Suite is a conformance suite exercising the Get/Put/Close contract that
// every eris.Store implementation must satisfy. Set NewStore and run it
// with suite.Run from the backend's own test package:
//
//	func TestMemstoreConformance(t *testing.T) {
//		suite.Run(t, &storetest.Suite{
//			NewStore: func() (eris.Store, error) { return memstore.New(), nil },
//		})
//	}
type Suite struct {
	suite.Suite

	// NewStore constructs a fresh, empty Store for a single test. It is
	// called once per test method.
	NewStore func() (eris.Store, error)

	store eris.Store
}

// SetupTest constructs a fresh store before every test method.
func (s *Suite) SetupTest() {
	store, err := s.NewStore()
	s.Require().NoError(err)
	s.store = store
}

// TearDownTest closes the store after every test method.
func (s *Suite) TearDownTest() {
	if s.store != nil {
		s.Require().NoError(s.store.Close())
	}
}

func randomBlock(s *Suite, n int) []byte {
	buf := make([]byte, n)
	_, err := rand.Read(buf)
	s.Require().NoError(err)
	return buf
}

func randomRef(s *Suite) eris.Reference {
	var ref eris.Reference
	_, err := rand.Read(ref[:])
	s.Require().NoError(err)
	return ref
}

// TestPutThenGetRoundTrips checks that a block put under a reference comes
// back unchanged.
func (s *Suite) TestPutThenGetRoundTrips() {
	ctx := context.Background()
	ref := randomRef(s)
	block := randomBlock(s, eris.BlockSize1KiB)

	s.Require().NoError(s.store.Put(ctx, ref, block))

	got, err := s.store.Get(ctx, ref)
	s.Require().NoError(err)
	s.Require().True(bytes.Equal(block, got), "round-tripped block differs from what was put")
}

// TestGetMissingReturnsErrNotFound checks that fetching a reference that
// was never stored fails with eris.ErrNotFound, not a panic or an
// unrelated error.
func (s *Suite) TestGetMissingReturnsErrNotFound() {
	ctx := context.Background()
	ref := randomRef(s)

	_, err := s.store.Get(ctx, ref)
	s.Require().Error(err)
	s.Require().ErrorIs(err, eris.ErrNotFound)
}

// TestPutIsIdempotent checks that putting the same reference and bytes
// twice (the only case that ever legitimately happens, since the
// reference is the hash of the block) succeeds both times and leaves the
// stored content intact.
func (s *Suite) TestPutIsIdempotent() {
	ctx := context.Background()
	ref := randomRef(s)
	block := randomBlock(s, eris.BlockSize32KiB)

	s.Require().NoError(s.store.Put(ctx, ref, block))
	s.Require().NoError(s.store.Put(ctx, ref, block))

	got, err := s.store.Get(ctx, ref)
	s.Require().NoError(err)
	s.Require().True(bytes.Equal(block, got))
}

// TestGetReturnsIndependentCopy checks that mutating a slice returned by
// Get can't corrupt the store's own copy of the block.
func (s *Suite) TestGetReturnsIndependentCopy() {
	ctx := context.Background()
	ref := randomRef(s)
	block := randomBlock(s, eris.BlockSize1KiB)
	s.Require().NoError(s.store.Put(ctx, ref, block))

	first, err := s.store.Get(ctx, ref)
	s.Require().NoError(err)
	for i := range first {
		first[i] ^= 0xFF
	}

	second, err := s.store.Get(ctx, ref)
	s.Require().NoError(err)
	s.Require().True(bytes.Equal(block, second), "mutating a Get result corrupted the stored block")
}

// TestDistinctReferencesDoNotCollide checks that two different references
// are stored and retrieved independently.
func (s *Suite) TestDistinctReferencesDoNotCollide() {
	ctx := context.Background()
	refA, refB := randomRef(s), randomRef(s)
	blockA := randomBlock(s, eris.BlockSize1KiB)
	blockB := randomBlock(s, eris.BlockSize1KiB)

	s.Require().NoError(s.store.Put(ctx, refA, blockA))
	s.Require().NoError(s.store.Put(ctx, refB, blockB))

	gotA, err := s.store.Get(ctx, refA)
	s.Require().NoError(err)
	gotB, err := s.store.Get(ctx, refB)
	s.Require().NoError(err)

	s.Require().True(bytes.Equal(blockA, gotA))
	s.Require().True(bytes.Equal(blockB, gotB))
}
