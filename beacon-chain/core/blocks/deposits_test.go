package blocks

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyMerkleProof(t *testing.T) {
	leaf := sha256.Sum256([]byte("leaf"))
	sibling0 := sha256.Sum256([]byte("sibling0"))
	sibling1 := sha256.Sum256([]byte("sibling1"))

	// index 0 is a left child at both levels: node = H(node||sibling).
	level1 := sha256.Sum256(append(leaf[:], sibling0[:]...))
	root := sha256.Sum256(append(level1[:], sibling1[:]...))

	proof := [][32]byte{sibling0, sibling1}
	assert.True(t, verifyMerkleProof(leaf, proof, 0, root))
	assert.False(t, verifyMerkleProof(leaf, proof, 1, root))

	other := sha256.Sum256([]byte("not the leaf"))
	assert.False(t, verifyMerkleProof(other, proof, 0, root))
}

func TestPutUint64LE(t *testing.T) {
	buf := make([]byte, 8)
	putUint64LE(buf, 1)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, buf)

	putUint64LE(buf, 256)
	assert.Equal(t, []byte{0, 1, 0, 0, 0, 0, 0, 0}, buf)
}
