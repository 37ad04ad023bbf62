package blocks

import (
	"crypto/sha256"
	"encoding/binary"

	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
)

func validatorIndexFromUint64(i uint64) types.ValidatorIndex {
	return types.ValidatorIndex(i)
}

// epochObjectRoot is the object root RANDAO's signing root is computed
// over: the sha256 of the epoch number written little-endian into a
// 32-byte chunk. It is this module's own root for a bare uint64, not
// the SSZ hash-tree-root (which would be the chunk itself).
func epochObjectRoot(epoch types.Epoch) [32]byte {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(epoch))
	return sha256.Sum256(buf[:])
}

// attestationDataRoot hashes an AttestationData's seven fields
// together, the object root every attestation and indexed-attestation
// signature is computed over.
func attestationDataRoot(d *rawblocks.AttestationData) [32]byte {
	hh := sha256.New()
	var slotBuf, committeeBuf [8]byte
	binary.LittleEndian.PutUint64(slotBuf[:], uint64(d.Slot))
	binary.LittleEndian.PutUint64(committeeBuf[:], d.CommitteeIndex)
	hh.Write(slotBuf[:])
	hh.Write(committeeBuf[:])
	hh.Write(d.BeaconBlockRoot[:])

	var srcEpoch, tgtEpoch [8]byte
	binary.LittleEndian.PutUint64(srcEpoch[:], uint64(d.Source.Epoch))
	binary.LittleEndian.PutUint64(tgtEpoch[:], uint64(d.Target.Epoch))
	hh.Write(srcEpoch[:])
	hh.Write(d.Source.Root[:])
	hh.Write(tgtEpoch[:])
	hh.Write(d.Target.Root[:])

	var out [32]byte
	copy(out[:], hh.Sum(nil))
	return out
}

// voluntaryExitObjectRoot hashes a voluntary exit's two fields, the
// object root the exit's signature is computed over.
func voluntaryExitObjectRoot(exit *rawblocks.SignedVoluntaryExit) [32]byte {
	hh := sha256.New()
	var epochBuf, idxBuf [8]byte
	binary.LittleEndian.PutUint64(epochBuf[:], uint64(exit.Epoch))
	binary.LittleEndian.PutUint64(idxBuf[:], uint64(exit.ValidatorIndex))
	hh.Write(epochBuf[:])
	hh.Write(idxBuf[:])
	var out [32]byte
	copy(out[:], hh.Sum(nil))
	return out
}
