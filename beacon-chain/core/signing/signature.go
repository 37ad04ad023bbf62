// Package signing computes BLS signing domains and signing roots, the
// inputs every signature set in the block processor needs.
package signing

import (
	"crypto/sha256"
	"encoding/binary"

	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
)

// Domain is a 32-byte value mixing a 4-byte domain type with the fork
// version active at the given epoch plus the genesis validators root,
// per compute_domain.
type Domain [32]byte

// ComputeDomain mixes domainType with forkVersion and
// genesisValidatorsRoot, matching the consensus spec's
// compute_domain.
func ComputeDomain(domainType [4]byte, forkVersion [4]byte, genesisValidatorsRoot [32]byte) Domain {
	forkDataRoot := computeForkDataRoot(forkVersion, genesisValidatorsRoot)
	var d Domain
	copy(d[:4], domainType[:])
	copy(d[4:], forkDataRoot[:28])
	return d
}

// computeForkDataRoot hashes the (fork_version, genesis_validators_root)
// pair the way SSZ would Merkleize the two-field ForkData container:
// hash(fork_version || zero-pad(28) || genesis_validators_root).
func computeForkDataRoot(forkVersion [4]byte, genesisValidatorsRoot [32]byte) [32]byte {
	var left [32]byte
	copy(left[:4], forkVersion[:])
	h := sha256.New()
	h.Write(left[:])
	h.Write(genesisValidatorsRoot[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ComputeSigningRoot mixes a pre-computed object root with a signing
// domain, per compute_signing_root: the SigningData container's tree
// root is hash(objectRoot || domain).
func ComputeSigningRoot(objectRoot [32]byte, domain Domain) [32]byte {
	h := sha256.New()
	h.Write(objectRoot[:])
	h.Write(domain[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ComputeEpochAtDomain is a small helper used by callers that derive
// the active fork version from a slot before calling ComputeDomain.
func ComputeEpochAtDomain(slot types.Slot, slotsPerEpoch types.Slot) types.Epoch {
	return types.Epoch(uint64(slot) / uint64(slotsPerEpoch))
}

// uint64LE encodes n as little-endian bytes, the SSZ basic-type
// serialization every fixed-width field uses before hashing.
func uint64LE(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	return b
}
