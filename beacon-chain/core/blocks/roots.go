package blocks

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/eth-clients/beaconstf/beacon-chain/core/helpers"
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
)

// expectedProposerIndex computes the proposer index for the state's
// current slot from the current epoch's active validator set and
// shuffling seed.
func expectedProposerIndex(st *state.CachedBeaconState) (types.ValidatorIndex, error) {
	epoch := btime.CurrentEpoch(st.Slot())
	indices, err := helpers.ActiveValidatorIndices(st, epoch)
	if err != nil {
		return 0, err
	}
	seed, err := proposerSeed(st, epoch)
	if err != nil {
		return 0, err
	}
	return helpers.ComputeProposerIndex(st, indices, seed)
}

// proposerSeed mixes the committee seed with the current slot, per
// compute_proposer_index's caller convention (get_beacon_proposer_index
// seeds on slot, not epoch, so a different proposer can be chosen
// each slot within the same epoch).
func proposerSeed(st *state.CachedBeaconState, epoch types.Epoch) ([32]byte, error) {
	base, err := helpers.SeedForCommittee(st, epoch)
	if err != nil {
		return [32]byte{}, err
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(st.Slot()))
	mixed := sha256.Sum256(append(base[:], buf...))
	return mixed, nil
}

// blockHeaderRoot hashes a BeaconBlockHeader's five fields, the same
// shape every caller needing "the root of the previous header" uses.
func blockHeaderRoot(h *rawblocks.BeaconBlockHeader) ([32]byte, error) {
	hh := sha256.New()
	var slotBuf, propBuf [8]byte
	binary.LittleEndian.PutUint64(slotBuf[:], uint64(h.Slot))
	binary.LittleEndian.PutUint64(propBuf[:], uint64(h.ProposerIndex))
	hh.Write(slotBuf[:])
	hh.Write(propBuf[:])
	hh.Write(h.ParentRoot[:])
	hh.Write(h.StateRoot[:])
	hh.Write(h.BodyRoot[:])
	var out [32]byte
	copy(out[:], hh.Sum(nil))
	return out, nil
}

// bodyRoot hashes a block body's operation lists and fixed fields.
// This module's signing/root helpers approximate container
// Merkleization with a single sha256 over a field-ordered
// concatenation rather than a full SSZ Merkle tree (the fork-data
// root in beacon-chain/core/signing is the exception: it is the
// two-chunk SSZ container root). CachedBeaconState.HashTreeRoot, by
// contrast, uses real SSZ Merkleization via fastssz, since that root
// is the one consensus-critical value other clients must reproduce
// bit-for-bit; header/body roots only need to be internally
// self-consistent within this module.
func bodyRoot(b *rawblocks.BeaconBlockBody) ([32]byte, error) {
	hh := sha256.New()
	hh.Write(b.RandaoReveal[:])
	hh.Write(b.Eth1Data.DepositRoot[:])
	hh.Write(b.Eth1Data.BlockHash[:])
	hh.Write(b.Graffiti[:])
	for _, ps := range b.ProposerSlashings {
		hh.Write(ps.Header1.Header.BodyRoot[:])
		hh.Write(ps.Header2.Header.BodyRoot[:])
	}
	for _, as := range b.AttesterSlashings {
		for _, idx := range as.Attestation1.AttestingIndices {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], uint64(idx))
			hh.Write(buf[:])
		}
	}
	for _, a := range b.Attestations {
		hh.Write(a.AggregationBits)
		hh.Write(a.Data.BeaconBlockRoot[:])
	}
	for _, d := range b.Deposits {
		hh.Write(d.Data.PublicKey[:])
	}
	for _, ve := range b.VoluntaryExits {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(ve.ValidatorIndex))
		hh.Write(buf[:])
	}
	if b.SyncAggregate != nil {
		hh.Write(b.SyncAggregate.SyncCommitteeBits)
		hh.Write(b.SyncAggregate.SyncCommitteeSignature[:])
	}
	if b.ExecutionPayload != nil {
		hh.Write(b.ExecutionPayload.BlockHash[:])
	}
	var out [32]byte
	copy(out[:], hh.Sum(nil))
	return out, nil
}

// blockRoot hashes slot, proposer index, parent root, state root and
// the body root together, the object root ComputeSigningRoot mixes
// with the proposer domain.
func blockRoot(b *rawblocks.BeaconBlock) ([32]byte, error) {
	body, err := bodyRoot(&b.Body)
	if err != nil {
		return [32]byte{}, err
	}
	hh := sha256.New()
	var slotBuf, propBuf [8]byte
	binary.LittleEndian.PutUint64(slotBuf[:], uint64(b.Slot))
	binary.LittleEndian.PutUint64(propBuf[:], uint64(b.ProposerIndex))
	hh.Write(slotBuf[:])
	hh.Write(propBuf[:])
	hh.Write(b.ParentRoot[:])
	hh.Write(b.StateRoot[:])
	hh.Write(body[:])
	var out [32]byte
	copy(out[:], hh.Sum(nil))
	return out, nil
}
