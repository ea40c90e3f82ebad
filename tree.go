package eris

import (
	"context"
	"fmt"
)

// reduceToRoot builds interior node blocks, level by level, from an
// ordered, non-empty list of reference-key pairs until a single pair
// remains, storing every interior block it produces along the way. It
// returns the level at which the single remaining pair lives (0 if pairs
// already had length 1, meaning no interior nodes were built) and that
// pair itself.
//
// This is the store-backed counterpart to constructInternalNodes: the
// pull-based Encoder hands blocks to its caller instead (it has no Store
// of its own), but Ingest.Cap and EncodeAll need the tree's interior
// blocks durably written as they're produced.
func reduceToRoot(ctx context.Context, store Store, pairs []ReferenceKeyPair, blockSize int, secret Secret) (level int, root ReferenceKeyPair, err error) {
	if len(pairs) == 0 {
		return 0, ReferenceKeyPair{}, fmt.Errorf("%w: no reference-key pairs to reduce", ErrInvalidArgument)
	}

	for len(pairs) > 1 {
		level++
		nodes := constructInternalNodes(pairs, blockSize)

		next := make([]ReferenceKeyPair, 0, len(nodes))
		for _, node := range nodes {
			block, refKey := encryptInternalNode(node, level, secret)
			if err := store.Put(ctx, refKey.Reference, block); err != nil {
				return 0, ReferenceKeyPair{}, fmt.Errorf("storing level-%d node: %w", level, err)
			}
			next = append(next, refKey)
		}
		pairs = next
	}

	return level, pairs[0], nil
}
