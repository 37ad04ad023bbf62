// Package state implements the Cached Beacon State (CBS): the
// pre/post state value the transition function operates on, augmented
// with derived caches and a transient/persistent storage-mode toggle.
package state

import (
	"github.com/eth-clients/beaconstf/config/params"
	"github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	rawstate "github.com/eth-clients/beaconstf/consensus-types/state"
	"github.com/eth-clients/beaconstf/runtime/version"
	"github.com/pkg/errors"
)

// CachedBeaconState wraps a raw BeaconState with the config it was
// built against, pubkey/committee caches, and the current storage
// mode. It is the only type the transition function's exported
// surface operates on.
type CachedBeaconState struct {
	mode   StorageMode
	state  *rawstate.BeaconState
	config *params.BeaconChainConfig

	pubkeyToIndex map[[48]byte]types.ValidatorIndex

	shufflingCache map[types.Epoch][]types.ValidatorIndex
	committeeCache map[committeeCacheKey][]types.ValidatorIndex
}

type committeeCacheKey struct {
	epoch types.Epoch
	slot  types.Slot
	index uint64
}

// New wraps raw in a CachedBeaconState in persistent mode, building
// the pubkey index from scratch. Genesis construction and
// deserialization both funnel through here.
func New(raw *rawstate.BeaconState, cfg *params.BeaconChainConfig) (*CachedBeaconState, error) {
	if raw == nil {
		return nil, errors.New("state: nil raw state")
	}
	if cfg == nil {
		cfg = params.BeaconConfig()
	}
	cbs := &CachedBeaconState{
		mode:   Persistent,
		state:  raw,
		config: cfg,
	}
	cbs.rebuildPubkeyIndex()
	return cbs, nil
}

func (c *CachedBeaconState) rebuildPubkeyIndex() {
	c.pubkeyToIndex = make(map[[48]byte]types.ValidatorIndex, len(c.state.Validators))
	for i, v := range c.state.Validators {
		c.pubkeyToIndex[v.PublicKey] = types.ValidatorIndex(i)
	}
}

// Mode reports the current storage mode.
func (c *CachedBeaconState) Mode() StorageMode { return c.mode }

// Config returns the read-only consensus-constant table this state
// was built against.
func (c *CachedBeaconState) Config() *params.BeaconChainConfig { return c.config }

// Version reports which fork's schema this state currently holds.
func (c *CachedBeaconState) Version() version.Fork { return c.state.Version }

// Clone returns a new CachedBeaconState. In persistent mode this is
// O(1): the raw state is immutable while shared, so the clone shares
// the same pointer (structural sharing). In transient mode the raw
// state is exclusively owned and about to be mutated, so Clone does a
// full deep copy to give the new instance its own copy.
func (c *CachedBeaconState) Clone() *CachedBeaconState {
	out := &CachedBeaconState{
		mode:   c.mode,
		config: c.config,
	}
	if c.mode == Persistent {
		out.state = c.state
		out.pubkeyToIndex = c.pubkeyToIndex // shared, read-only map while persistent
	} else {
		out.state = c.state.Clone()
		out.rebuildPubkeyIndex()
	}
	// Shuffling/committee caches are epoch-scoped and cheap to
	// recompute; invalidate rather than copy.
	return out
}

// SetCachesTransient flips the state into the mutation-friendly
// representation. If the state is shared (persistent), this performs
// the one deep copy that gives this instance exclusive ownership; it
// is a no-op if already transient.
func (c *CachedBeaconState) SetCachesTransient() {
	if c.mode == Transient {
		return
	}
	c.state = c.state.Clone()
	c.rebuildPubkeyIndex()
	c.mode = Transient
}

// SetCachesPersistent flips the state into the cheap-to-clone,
// hashable representation. Callers must not mutate this instance's
// raw state again without first calling SetCachesTransient; the
// STF driver enforces this by discarding its mutable handle once it
// calls this method.
func (c *CachedBeaconState) SetCachesPersistent() {
	c.mode = Persistent
}

// requireTransient returns BadStateMode if the state is not
// currently mutable, the guard every setter and bulk-mutation helper
// runs first.
func (c *CachedBeaconState) requireTransient(op string) error {
	if c.mode != Transient {
		return badMode(op, Transient, c.mode)
	}
	return nil
}

// requirePersistent returns BadStateMode if the state is not
// currently hashable.
func (c *CachedBeaconState) requirePersistent(op string) error {
	if c.mode != Persistent {
		return badMode(op, Persistent, c.mode)
	}
	return nil
}

// invalidateEpochCaches drops the shuffling and committee caches,
// called at the end of every epoch transition and whenever the
// validator set changes shape (append, slashing, activation, exit).
func (c *CachedBeaconState) invalidateEpochCaches() {
	c.shufflingCache = nil
	c.committeeCache = nil
}

// Raw exposes the underlying record for packages (epoch/block
// processing) that need direct field access beyond the getter
// surface. It is exported and returns the live record, so writes made
// through it skip the mode checks the setters perform.
func (c *CachedBeaconState) Raw() *rawstate.BeaconState { return c.state }

// PubkeyToIndex reports the registry index for pubkey, and whether it
// was found. The pubkey-to-index map is a bijection over
// Validators[*].PublicKey by construction: AppendValidator is the
// only way to grow the registry, and it always adds exactly one
// mapping with the new index.
func (c *CachedBeaconState) PubkeyToIndex(pubkey [48]byte) (types.ValidatorIndex, bool) {
	idx, ok := c.pubkeyToIndex[pubkey]
	return idx, ok
}

// LatestBlockHeaderCopy returns a copy of the state's latest block
// header.
func (c *CachedBeaconState) LatestBlockHeaderCopy() blocks.BeaconBlockHeader {
	return c.state.LatestBlockHeader
}
