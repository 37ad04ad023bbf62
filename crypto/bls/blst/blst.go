// Package blst wraps github.com/supranational/blst, the BLS12-381
// implementation the teacher vendors for consensus signature
// verification.
package blst

import (
	"crypto/rand"
	"fmt"
	"sync"

	blst "github.com/supranational/blst/bindings/go"
)

const (
	scalarBytes     = 32
	randBitsEntropy = 64
)

// dstEth2 is the BLS signature domain separation tag used by the
// Ethereum consensus spec.
var dstEth2 = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

// PublicKey is a group-checked BLS12-381 G1 point.
type PublicKey struct {
	affine *blst.P1Affine
}

// PublicKeyFromBytes deserializes and group-checks a 48-byte
// compressed public key.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != 48 {
		return PublicKey{}, fmt.Errorf("bls: invalid public key length %d, want 48", len(b))
	}
	p := new(blst.P1Affine).Uncompress(b)
	if p == nil {
		return PublicKey{}, fmt.Errorf("bls: could not deserialize public key")
	}
	if !p.KeyValidate() {
		return PublicKey{}, fmt.Errorf("bls: public key failed group check")
	}
	return PublicKey{affine: p}, nil
}

// Copy returns a value copy of the public key.
func (p PublicKey) Copy() PublicKey {
	cp := *p.affine
	return PublicKey{affine: &cp}
}

// AggregatePublicKeys sums a set of group-checked public keys into a
// single aggregate, the step IndexedAttestation verification takes
// before a single (aggregate pubkey, message, signature) pairing
// check: an aggregate BLS signature over one message is verified
// against the sum of the signers' public keys, not a batch of
// per-signer entries.
func AggregatePublicKeys(keys []PublicKey) (PublicKey, error) {
	if len(keys) == 0 {
		return PublicKey{}, fmt.Errorf("bls: cannot aggregate zero public keys")
	}
	agg := new(blst.P1Aggregate)
	affines := make([]*blst.P1Affine, len(keys))
	for i, k := range keys {
		affines[i] = k.affine
	}
	agg.Aggregate(affines, false)
	return PublicKey{affine: agg.ToAffine()}, nil
}

// Bytes returns the 48-byte compressed encoding.
func (p PublicKey) Bytes() []byte {
	return p.affine.Compress()
}

// VerifyMultipleSignatures verifies a non-singular batch of
// (signature, message, pubkey) triples with a single aggregate
// pairing check, using random linear combination to protect against
// the rogue-key attack on naive signature aggregation.
//
// S* = sum(S_i * r_i); verify e(S*, G) == prod_i e(P_i * r_i, M_i).
func VerifyMultipleSignatures(sigs [][]byte, msgs [][32]byte, pubKeys []PublicKey) (bool, error) {
	if len(sigs) == 0 || len(pubKeys) == 0 {
		return false, nil
	}
	length := len(sigs)
	if length != len(pubKeys) || length != len(msgs) {
		return false, fmt.Errorf(
			"bls: signatures, pubkeys and messages have differing lengths: s=%d p=%d m=%d",
			length, len(pubKeys), len(msgs))
	}

	rawSigs := new(blst.P2Affine).BatchUncompress(sigs)
	if len(rawSigs) != length {
		return false, fmt.Errorf("bls: could not deserialize all signatures in batch")
	}

	p1Affines := make([]*blst.P1Affine, length)
	rawMsgs := make([]blst.Message, length)
	for i := 0; i < length; i++ {
		p1Affines[i] = pubKeys[i].affine
		rawMsgs[i] = msgs[i][:]
	}

	randLock := new(sync.Mutex)
	randFunc := func(scalar *blst.Scalar) {
		var rbytes [scalarBytes]byte
		randLock.Lock()
		_, _ = rand.Read(rbytes[:])
		randLock.Unlock()
		// Guard against the generator returning all zero bytes.
		rbytes[len(rbytes)-1] |= 0x01
		scalar.FromBEndian(rbytes[:])
	}

	dummySig := new(blst.P2Affine)
	return dummySig.MultipleAggregateVerify(rawSigs, true, p1Affines, false, rawMsgs, dstEth2, randFunc, randBitsEntropy), nil
}
