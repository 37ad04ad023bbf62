// Package transition implements the top-level state transition
// function: advancing slots (with epoch processing and fork upgrades
// at the right boundaries), dispatching block processing to the
// fork-appropriate package, and the ExecuteStateTransition driver
// that ties slot advancement, block processing, and signature/state-root
// verification into one call.
package transition

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/eth-clients/beaconstf/beacon-chain/core/altair"
	"github.com/eth-clients/beaconstf/beacon-chain/core/bellatrix"
	"github.com/eth-clients/beaconstf/beacon-chain/core/epoch"
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/eth-clients/beaconstf/monitoring/metrics"
	"github.com/eth-clients/beaconstf/runtime/version"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// ProcessSlot caches the pre-state root into the state-root ring
// buffer, fills the latest block header's state root with it if that
// root is still zero, and caches the header's root into the block-root
// ring buffer, mirroring process_slot.
func ProcessSlot(st *state.CachedBeaconState, preStateRoot [32]byte) error {
	cfg := st.Config()
	idx := uint64(st.Slot()) % uint64(cfg.SlotsPerHistoricalRoot)
	if err := st.UpdateStateRootAtIndex(idx, preStateRoot); err != nil {
		return err
	}

	header := st.LatestBlockHeader()
	if header.StateRoot == [32]byte{} {
		header.StateRoot = preStateRoot
		if err := st.SetLatestBlockHeader(header); err != nil {
			return err
		}
	}

	return st.UpdateBlockRootAtIndex(idx, latestBlockHeaderRoot(st.LatestBlockHeader()))
}

// latestBlockHeaderRoot hashes a BeaconBlockHeader's five fields, the
// same simplified internal-only Merkleization core/blocks/roots.go
// uses for the equivalent computation; duplicated here rather than
// imported to keep core/blocks's root helpers unexported.
func latestBlockHeaderRoot(h rawblocks.BeaconBlockHeader) [32]byte {
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
	return out
}

// ProcessSlots advances st from its current slot until st.Slot() ==
// targetSlot (ProcessSlot runs for each slot before targetSlot, not for
// targetSlot itself), running epoch processing on every epoch
// boundary crossed and upgrading the state's fork schema the instant
// the Altair/Bellatrix fork epoch is reached. st must be in transient
// mode; the caller owns cloning and mode management. sink may be nil,
// treated the same as metrics.NoopSink{}.
func ProcessSlots(ctx context.Context, st *state.CachedBeaconState, targetSlot types.Slot, sink metrics.Sink) error {
	ctx, span := trace.StartSpan(ctx, "transition.ProcessSlots")
	defer span.End()
	if sink == nil {
		sink = metrics.NoopSink{}
	}

	if targetSlot < st.Slot() {
		return &SlotInPastError{Current: uint64(st.Slot()), Requested: uint64(targetSlot)}
	}

	for st.Slot() < targetSlot {
		root, err := hashTreeRoot(st)
		if err != nil {
			return err
		}
		if err := ProcessSlot(st, root); err != nil {
			return err
		}

		if btime.CanProcessEpoch(st.Slot()) {
			if err := processEpochForVersion(ctx, st); err != nil {
				return errors.Wrap(err, "transition: epoch processing failed")
			}
			safeObserve(func() { sink.IncEpochsProcessed(st.Version().String()) })
		}

		if err := st.SetSlot(st.Slot() + 1); err != nil {
			return err
		}

		if btime.CanUpgradeToAltair(st.Slot()) {
			if err := altair.UpgradeToAltair(ctx, st); err != nil {
				return errors.Wrap(err, "transition: altair upgrade failed")
			}
		}
		if btime.CanUpgradeToBellatrix(st.Slot()) {
			if err := bellatrix.UpgradeToBellatrix(ctx, st); err != nil {
				return errors.Wrap(err, "transition: bellatrix upgrade failed")
			}
		}
	}
	return nil
}

// hashTreeRoot computes st's real SSZ hash tree root, flipping it to
// persistent mode (the only mode HashTreeRoot accepts) and back to
// transient so the caller can keep mutating. The flip back is a full
// deep copy, the price ProcessSlot pays once per slot for a
// consensus-correct previous_state_root, same as a real client would.
func hashTreeRoot(st *state.CachedBeaconState) ([32]byte, error) {
	st.SetCachesPersistent()
	root, err := st.HashTreeRoot()
	st.SetCachesTransient()
	return root, err
}

func processEpochForVersion(ctx context.Context, st *state.CachedBeaconState) error {
	if st.Version() == version.Phase0 {
		return epoch.ProcessEpoch(ctx, st)
	}
	return altair.ProcessEpoch(ctx, st)
}

// skipSlotCache memoizes the post-slot-processing (pre-block) state
// for a (parentRoot, targetSlot) pair, the same optimization a
// validator client leans on when it needs to evaluate forks ending at
// the same empty slots repeatedly without re-running ProcessSlots
// from scratch each time.
type skipSlotCacheKey struct {
	parentRoot [32]byte
	slot       types.Slot
}

type SkipSlotCache struct {
	mu    sync.Mutex
	cache map[skipSlotCacheKey]*state.CachedBeaconState
}

// NewSkipSlotCache returns an empty cache.
func NewSkipSlotCache() *SkipSlotCache {
	return &SkipSlotCache{cache: make(map[skipSlotCacheKey]*state.CachedBeaconState)}
}

// Get returns a persistent-mode clone of the cached state for
// (parentRoot, slot), if present.
func (c *SkipSlotCache) Get(parentRoot [32]byte, slot types.Slot) (*state.CachedBeaconState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached, ok := c.cache[skipSlotCacheKey{parentRoot, slot}]
	if !ok {
		return nil, false
	}
	return cached.Clone(), true
}

// Put stores a persistent-mode snapshot of st under (parentRoot,
// slot), for later Get calls to clone from.
func (c *SkipSlotCache) Put(parentRoot [32]byte, slot types.Slot, st *state.CachedBeaconState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := st.Clone()
	snap.SetCachesPersistent()
	c.cache[skipSlotCacheKey{parentRoot, slot}] = snap
}
