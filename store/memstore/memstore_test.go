package memstore_test

import (
	"context"
	"testing"

	"github.com/erisproto/eris"
	"github.com/erisproto/eris/store/memstore"
	"github.com/erisproto/eris/store/storetest"
	"github.com/stretchr/testify/suite"
)

func TestMemstoreConformance(t *testing.T) {
	suite.Run(t, &storetest.Suite{
		NewStore: func() (eris.Store, error) { return memstore.New(), nil },
	})
}

func TestMemstoreLen(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	if got := s.Len(); got != 0 {
		t.Fatalf("Len() on empty store = %d, want 0", got)
	}

	var ref eris.Reference
	ref[0] = 1
	if err := s.Put(ctx, ref, make([]byte, eris.BlockSize1KiB)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got := s.Len(); got != 1 {
		t.Fatalf("Len() after one Put = %d, want 1", got)
	}

	// Putting the same reference again must not grow the store.
	if err := s.Put(ctx, ref, make([]byte, eris.BlockSize1KiB)); err != nil {
		t.Fatalf("Put (repeat): %v", err)
	}
	if got := s.Len(); got != 1 {
		t.Fatalf("Len() after repeated Put = %d, want 1", got)
	}
}
