// Package bls wraps the BLS12-381 signature primitives the state
// transition function needs to batch-verify block signatures.
package bls

import "github.com/eth-clients/beaconstf/crypto/bls/blst"

// PublicKey is a deserialized, group-checked BLS public key.
type PublicKey = blst.PublicKey

// PublicKeyFromBytes deserializes and group-checks a 48-byte
// compressed public key.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	return blst.PublicKeyFromBytes(b)
}

// AggregatePublicKeys sums a set of public keys, the step an
// aggregate signature over a single message must be checked against.
func AggregatePublicKeys(keys []PublicKey) (PublicKey, error) {
	return blst.AggregatePublicKeys(keys)
}

// SignatureSet is the batch of (message, pubkey, signature) triples
// the block processor accumulates; Verify() runs a single aggregate
// pairing check over the whole batch. This is the "first-class
// subsystem" the design notes call for: the block processor appends
// to a set rather than verifying signatures eagerly, so the driver
// controls when the (expensive) pairing check runs.
type SignatureSet struct {
	Signatures [][]byte
	PublicKeys []PublicKey
	Messages   [][32]byte

	// labels names each appended set's origin (e.g. "proposer",
	// "randao", "attestation[3]") in the same order as the slices
	// above, for the bisection diagnostics in VerifyBisect.
	labels []string
}

// NewSet constructs an empty signature set.
func NewSet() *SignatureSet {
	return &SignatureSet{}
}

// Append adds a single (message, pubkey, signature) triple labeled
// for diagnostics.
func (s *SignatureSet) Append(label string, message [32]byte, pubkey PublicKey, signature []byte) {
	s.labels = append(s.labels, label)
	s.Messages = append(s.Messages, message)
	s.PublicKeys = append(s.PublicKeys, pubkey)
	s.Signatures = append(s.Signatures, signature)
}

// Join merges another set into this one.
func (s *SignatureSet) Join(other *SignatureSet) *SignatureSet {
	if other == nil {
		return s
	}
	s.Signatures = append(s.Signatures, other.Signatures...)
	s.PublicKeys = append(s.PublicKeys, other.PublicKeys...)
	s.Messages = append(s.Messages, other.Messages...)
	s.labels = append(s.labels, other.labels...)
	return s
}

// Len reports the number of signature triples in the set.
func (s *SignatureSet) Len() int {
	return len(s.Signatures)
}

// Verify runs a single aggregate pairing check over the whole batch.
// An empty set verifies trivially (the proposer-only case collapses
// to a single-element set, never an empty one, in normal operation).
func (s *SignatureSet) Verify() (bool, error) {
	if s.Len() == 0 {
		return true, nil
	}
	return blst.VerifyMultipleSignatures(s.Signatures, s.Messages, s.PublicKeys)
}

// VerifyBisect verifies each triple of the set on its own, in order,
// and returns the label of the first one that fails, for diagnostics.
// It is a linear scan (one verification per triple, no bisection) and
// is called after Verify() has already failed.
func (s *SignatureSet) VerifyBisect() (ok bool, offendingLabel string, err error) {
	for i := range s.Signatures {
		valid, err := blst.VerifyMultipleSignatures(
			[][]byte{s.Signatures[i]},
			[][32]byte{s.Messages[i]},
			[]PublicKey{s.PublicKeys[i]},
		)
		if err != nil {
			return false, s.labels[i], err
		}
		if !valid {
			return false, s.labels[i], nil
		}
	}
	return true, "", nil
}
