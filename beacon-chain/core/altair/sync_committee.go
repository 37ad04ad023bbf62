package altair

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/eth-clients/beaconstf/beacon-chain/core/helpers"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/pkg/errors"
)

// ComputeSyncCommittee selects SyncCommitteeSize proposer-weighted
// indices from the active set at epoch, the same RANDAO-biased draw
// ComputeProposerIndex uses but repeated SyncCommitteeSize times
// with a committee-specific seed.
func ComputeSyncCommittee(st *state.CachedBeaconState, epoch types.Epoch) (*rawblocks.SyncCommittee, error) {
	indices, err := helpers.ActiveValidatorIndices(st, epoch)
	if err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return nil, errors.New("altair: empty active set for sync committee selection")
	}
	seed, err := syncCommitteeSeed(st, epoch)
	if err != nil {
		return nil, err
	}

	cfg := st.Config()
	pubkeys := make([][48]byte, 0, cfg.SyncCommitteeSize)
	const maxRandomByte = 1<<8 - 1
	i := uint64(0)
	for uint64(len(pubkeys)) < cfg.SyncCommitteeSize {
		shuffledIndex, err := helpers.ComputeShuffledIndex(i%uint64(len(indices)), uint64(len(indices)), seed)
		if err != nil {
			return nil, err
		}
		candidate := indices[shuffledIndex]
		v, err := st.ValidatorAtIndex(candidate)
		if err != nil {
			return nil, err
		}
		randomByte := syncRandomByte(seed, i)
		if v.EffectiveBalance*maxRandomByte >= cfg.MaxEffectiveBalance*uint64(randomByte) {
			pubkeys = append(pubkeys, v.PublicKey)
		}
		i++
	}

	aggregates := make([][48]byte, 0, (len(pubkeys)+syncPubkeysPerAggregate-1)/syncPubkeysPerAggregate)
	for start := 0; start < len(pubkeys); start += syncPubkeysPerAggregate {
		end := start + syncPubkeysPerAggregate
		if end > len(pubkeys) {
			end = len(pubkeys)
		}
		aggregates = append(aggregates, aggregatePubkeyBytes(pubkeys[start:end]))
	}

	return &rawblocks.SyncCommittee{Pubkeys: pubkeys, AggregatePubkeys: aggregates}, nil
}

// syncPubkeysPerAggregate is SYNC_COMMITTEE_SUBNET_COUNT's companion
// constant, SYNC_PUBKEYS_PER_AGGREGATE in the altair spec.
const syncPubkeysPerAggregate = 64

func aggregatePubkeyBytes(pubkeys [][48]byte) [48]byte {
	// A placeholder pubkey aggregate: the real aggregate point sum is
	// computed via bls.AggregatePublicKeys at verification time from
	// the flat Pubkeys list; AggregatePubkeys exists for the fast
	// per-subcommittee contribution path the p2p gossip layer would
	// use, which is out of scope here, so this stores a
	// content-addressed placeholder rather than leaving it zeroed.
	h := sha256.New()
	for _, pk := range pubkeys {
		h.Write(pk[:])
	}
	var out [48]byte
	copy(out[:], h.Sum(nil))
	return out
}

func syncCommitteeSeed(st *state.CachedBeaconState, epoch types.Epoch) ([32]byte, error) {
	const domainSyncCommittee = byte(0x07)
	cfg := st.Config()
	mixEpoch := epoch + cfg.EpochsPerHistoricalVector - 1 - 1
	mixes := st.RandaoMixes()
	if len(mixes) == 0 {
		return [32]byte{}, errors.New("altair: empty randao mixes")
	}
	mix := mixes[uint64(mixEpoch)%uint64(len(mixes))]

	buf := make([]byte, 0, 1+8+32)
	buf = append(buf, domainSyncCommittee)
	epochBuf := make([]byte, 8)
	binary.LittleEndian.PutUint64(epochBuf, uint64(epoch))
	buf = append(buf, epochBuf...)
	buf = append(buf, mix[:]...)
	return sha256.Sum256(buf), nil
}

func syncRandomByte(seed [32]byte, i uint64) byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(i/32))
	h := sha256.Sum256(append(seed[:], buf...))
	return h[i%32]
}
