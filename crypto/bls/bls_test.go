package bls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureSetAppendAndLen(t *testing.T) {
	s := NewSet()
	assert.Equal(t, 0, s.Len())

	s.Append("proposer", [32]byte{1}, PublicKey{}, []byte{0xaa})
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, [32]byte{1}, s.Messages[0])
	assert.Equal(t, "proposer", s.labels[0])
}

func TestSignatureSetJoin(t *testing.T) {
	a := NewSet()
	a.Append("a", [32]byte{1}, PublicKey{}, []byte{1})

	b := NewSet()
	b.Append("b", [32]byte{2}, PublicKey{}, []byte{2})

	a.Join(b)
	require.Equal(t, 2, a.Len())
	assert.Equal(t, []string{"a", "b"}, a.labels)
	assert.Equal(t, [32]byte{2}, a.Messages[1])
}

func TestSignatureSetJoinNil(t *testing.T) {
	a := NewSet()
	a.Append("a", [32]byte{1}, PublicKey{}, []byte{1})

	a.Join(nil)
	assert.Equal(t, 1, a.Len())
}

func TestEmptySetVerifiesTrivially(t *testing.T) {
	s := NewSet()
	ok, err := s.Verify()
	require.NoError(t, err)
	assert.True(t, ok)
}
