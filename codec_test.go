package eris

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/blake2b"
)

func TestEncryptLeafNode_Convergence(t *testing.T) {
	node := bytes.Repeat([]byte{0x42}, BlockSize1KiB)
	secret := Secret{}

	block1, refKey1 := encryptLeafNode(nil, node, secret)
	block2, refKey2 := encryptLeafNode(nil, node, secret)

	if !bytes.Equal(block1, block2) {
		t.Errorf("identical plaintext under identical secret produced different ciphertext")
	}
	if !refKey1.Equal(refKey2) {
		t.Errorf("identical plaintext under identical secret produced different reference-key pairs")
	}

	differentSecret := Secret{1}
	block3, refKey3 := encryptLeafNode(nil, node, differentSecret)
	if bytes.Equal(block1, block3) {
		t.Errorf("different secrets produced identical ciphertext")
	}
	if refKey1.Equal(refKey3) {
		t.Errorf("different secrets produced identical reference-key pairs")
	}
}

func TestEncryptLeafNode_ReusableHasher(t *testing.T) {
	node := bytes.Repeat([]byte{0x7}, BlockSize1KiB)
	secret := Secret{}

	hasher, err := blake2b.New256(secret[:])
	if err != nil {
		t.Fatalf("blake2b.New256: %v", err)
	}

	block1, refKey1 := encryptLeafNode(hasher, node, secret)
	block2, refKey2 := encryptLeafNode(hasher, node, secret)

	if !bytes.Equal(block1, block2) || !refKey1.Equal(refKey2) {
		t.Errorf("reusing the hasher across calls changed the result")
	}

	freshBlock, freshRefKey := encryptLeafNode(nil, node, secret)
	if !bytes.Equal(block1, freshBlock) || !refKey1.Equal(freshRefKey) {
		t.Errorf("reused-hasher result differs from a fresh-hasher result")
	}
}

func TestEncryptInternalNode_LevelDomainSeparation(t *testing.T) {
	node := bytes.Repeat([]byte{0x9}, BlockSize1KiB)
	secret := Secret{}

	block1, refKey1 := encryptInternalNode(node, 1, secret)
	block2, refKey2 := encryptInternalNode(node, 2, secret)

	// The key is a hash of the plaintext node under the all-zero secret,
	// independent of level, so it's identical across levels...
	if refKey1.Key != refKey2.Key {
		t.Errorf("interior node key unexpectedly depends on level")
	}
	// ...but the nonce's last byte carries the level, so the ciphertext
	// and therefore the reference must differ.
	if bytes.Equal(block1, block2) {
		t.Errorf("blocks at different levels have identical ciphertext")
	}
	if refKey1.Reference == refKey2.Reference {
		t.Errorf("blocks at different levels have identical reference")
	}
}

func TestConstructInternalNodes_LastNodeZeroPadded(t *testing.T) {
	blockSize := BlockSize1KiB
	a := arity(blockSize)

	// One more pair than fits in a single node: two nodes, the second
	// holding exactly one pair and all-zero padding beyond it.
	pairs := make([]ReferenceKeyPair, a+1)
	for i := range pairs {
		pairs[i].Reference[0] = byte(i + 1)
		pairs[i].Key[0] = byte(i + 1)
	}

	nodes := constructInternalNodes(pairs, blockSize)
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}

	second := nodes[1]
	if len(second) != blockSize {
		t.Fatalf("second node length = %d, want %d", len(second), blockSize)
	}
	for i := referenceKeyLen; i < len(second); i++ {
		if second[i] != 0 {
			t.Errorf("second node byte %d = 0x%02x, want 0x00", i, second[i])
		}
	}

	refs, err := decodeInternalNode(second, blockSize)
	if err != nil {
		t.Fatalf("decodeInternalNode: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("decoded %d refs from second node, want 1", len(refs))
	}
	if !refs[0].Equal(pairs[a]) {
		t.Errorf("decoded ref %+v != expected %+v", refs[0], pairs[a])
	}
}

func TestNonceForLevel(t *testing.T) {
	n0 := nonceForLevel(0)
	for i, b := range n0 {
		if b != 0 {
			t.Errorf("level-0 nonce byte %d = 0x%02x, want 0x00", i, b)
		}
	}

	n5 := nonceForLevel(5)
	for i := 0; i < len(n5)-1; i++ {
		if n5[i] != 0 {
			t.Errorf("level-5 nonce byte %d = 0x%02x, want 0x00", i, n5[i])
		}
	}
	if n5[len(n5)-1] != 5 {
		t.Errorf("level-5 nonce last byte = %d, want 5", n5[len(n5)-1])
	}
}
