package helpers

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/eth-clients/beaconstf/beacon-chain/state"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/pkg/errors"
)

// maxShuffleListSize bounds the index list the shuffle operates on,
// mirroring the teacher's sanity check before the swap-or-not rounds.
const maxShuffleListSize = 1 << 40

// shuffleRounds is the fixed round count the spec's
// compute_shuffled_index uses.
const shuffleRounds = 90

// ComputeShuffledIndex applies the swap-or-not shuffle to a single
// index within a list of the given size, seeded by seed, the way
// compute_shuffled_index does it: hash-derived pivots and bit flips
// instead of materializing the whole permutation.
func ComputeShuffledIndex(index uint64, listSize uint64, seed [32]byte) (uint64, error) {
	if listSize == 0 || index >= listSize {
		return 0, errors.Errorf("helpers: index %d out of bounds for list size %d", index, listSize)
	}
	if listSize > maxShuffleListSize {
		return 0, errors.Errorf("helpers: list size %d exceeds shuffle bound", listSize)
	}

	for round := uint8(0); round < shuffleRounds; round++ {
		pivotBuf := append(append([]byte{}, seed[:]...), round)
		pivotHash := sha256.Sum256(pivotBuf)
		pivot := binary.LittleEndian.Uint64(pivotHash[:8]) % listSize
		flip := (pivot + listSize - index) % listSize
		position := index
		if flip > position {
			position = flip
		}

		source := append(append([]byte{}, seed[:]...), round)
		source = append(source, uint32ToBytes(uint32(position/256))...)
		sourceHash := sha256.Sum256(source)
		byteVal := sourceHash[(position%256)/8]
		bit := (byteVal >> (position % 8)) & 1

		if bit == 1 {
			index = flip
		}
	}
	return index, nil
}

func uint32ToBytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// ComputeCommittee returns the subset of indices assigned to slot
// slices [index, index+1) of count, shuffled by seed — i.e. the
// indices whose shuffled positions fall in that slice.
func ComputeCommittee(indices []types.ValidatorIndex, seed [32]byte, index, count uint64) ([]types.ValidatorIndex, error) {
	listSize := uint64(len(indices))
	start := (listSize * index) / count
	end := (listSize * (index + 1)) / count

	out := make([]types.ValidatorIndex, 0, end-start)
	for i := start; i < end; i++ {
		shuffled, err := ComputeShuffledIndex(i, listSize, seed)
		if err != nil {
			return nil, err
		}
		out = append(out, indices[shuffled])
	}
	return out, nil
}

// CommitteeCount returns the number of committees active in an
// epoch, clamped to at least one per slot and at most one committee
// per 128 active validators' worth of slots.
func CommitteeCount(st *state.CachedBeaconState, epoch types.Epoch) uint64 {
	cfg := st.Config()
	active := ActiveValidatorCount(st, epoch)
	perSlot := active / uint64(cfg.SlotsPerEpoch) / targetCommitteeSize
	if perSlot > maxCommitteesPerSlot {
		perSlot = maxCommitteesPerSlot
	}
	if perSlot < 1 {
		perSlot = 1
	}
	return perSlot * uint64(cfg.SlotsPerEpoch)
}

const (
	targetCommitteeSize  = 128
	maxCommitteesPerSlot = 64
)

// BeaconCommittee returns the committee assigned to (slot,
// committeeIndex), combining the active-validator shuffling for the
// slot's epoch with ComputeCommittee.
func BeaconCommittee(st *state.CachedBeaconState, slot types.Slot, committeeIndex uint64) ([]types.ValidatorIndex, error) {
	epoch := epochAtSlot(st, slot)
	indices, err := ActiveValidatorIndices(st, epoch)
	if err != nil {
		return nil, err
	}
	seed, err := SeedForCommittee(st, epoch)
	if err != nil {
		return nil, err
	}

	committeesPerSlot := CommitteeCount(st, epoch) / uint64(st.Config().SlotsPerEpoch)
	slotsPerEpoch := uint64(st.Config().SlotsPerEpoch)
	slotOffset := uint64(slot) % slotsPerEpoch
	index := slotOffset*committeesPerSlot + committeeIndex
	count := committeesPerSlot * slotsPerEpoch

	return ComputeCommittee(indices, seed, index, count)
}

func epochAtSlot(st *state.CachedBeaconState, slot types.Slot) types.Epoch {
	cfg := st.Config()
	return types.Epoch(uint64(slot) / uint64(cfg.SlotsPerEpoch))
}

// ComputeProposerIndex selects the proposer among indices using the
// RANDAO-biased selection algorithm: repeatedly draw a candidate and
// accept it with probability proportional to its effective balance.
func ComputeProposerIndex(st *state.CachedBeaconState, indices []types.ValidatorIndex, seed [32]byte) (types.ValidatorIndex, error) {
	if len(indices) == 0 {
		return 0, errors.New("helpers: empty proposer candidate list")
	}
	cfg := st.Config()
	const maxRandomByte = 1<<8 - 1
	i := uint64(0)
	total := uint64(len(indices))
	for {
		candidateIndex := indices[computeShuffledCandidate(i, total, seed)]
		v, err := st.ValidatorAtIndex(candidateIndex)
		if err != nil {
			return 0, err
		}
		randomByte := hashRandomByte(seed, i)
		if v.EffectiveBalance*maxRandomByte >= cfg.MaxEffectiveBalance*uint64(randomByte) {
			return candidateIndex, nil
		}
		i++
	}
}

func computeShuffledCandidate(i, total uint64, seed [32]byte) uint64 {
	idx, err := ComputeShuffledIndex(i%total, total, seed)
	if err != nil {
		return i % total
	}
	return idx
}

func hashRandomByte(seed [32]byte, i uint64) byte {
	buf := append(append([]byte{}, seed[:]...), uint32ToBytes(uint32(i/32))...)
	h := sha256.Sum256(buf)
	return h[i%32]
}

// SeedForCommittee derives the per-epoch shuffling seed from the
// randao mix lagged by MIN_SEED_LOOKAHEAD epochs, mixed with the
// domain-separation tag and the epoch itself.
func SeedForCommittee(st *state.CachedBeaconState, epoch types.Epoch) ([32]byte, error) {
	const domainBeaconAttester = byte(0x01)
	cfg := st.Config()
	const minSeedLookahead = 1
	mixEpoch := epoch + cfg.EpochsPerHistoricalVector - minSeedLookahead - 1
	mixes := st.RandaoMixes()
	if len(mixes) == 0 {
		return [32]byte{}, errors.New("helpers: empty randao mixes")
	}
	mix := mixes[uint64(mixEpoch)%uint64(len(mixes))]

	buf := make([]byte, 0, 1+8+32)
	buf = append(buf, domainBeaconAttester)
	buf = append(buf, uint64ToBytes(uint64(epoch))...)
	buf = append(buf, mix[:]...)
	return sha256.Sum256(buf), nil
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
