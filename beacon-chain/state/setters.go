package state

import (
	"github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	rawstate "github.com/eth-clients/beaconstf/consensus-types/state"
	"github.com/eth-clients/beaconstf/runtime/version"
	"github.com/prysmaticlabs/go-bitfield"
)

// Mutators. Every one of these fails with BadStateMode unless the
// state is in Transient mode, matching the teacher's state-native
// setters' "fieldTrie not nocopy" style checks, adapted to this
// package's mode tag instead of a per-field dirty bitmap.

func (c *CachedBeaconState) SetSlot(slot types.Slot) error {
	if err := c.requireTransient("SetSlot"); err != nil {
		return err
	}
	c.state.Slot = slot
	return nil
}

func (c *CachedBeaconState) SetFork(f blocks.Fork) error {
	if err := c.requireTransient("SetFork"); err != nil {
		return err
	}
	c.state.Fork = f
	return nil
}

func (c *CachedBeaconState) SetLatestBlockHeader(h blocks.BeaconBlockHeader) error {
	if err := c.requireTransient("SetLatestBlockHeader"); err != nil {
		return err
	}
	c.state.LatestBlockHeader = h
	return nil
}

func (c *CachedBeaconState) UpdateBlockRootAtIndex(i uint64, root [32]byte) error {
	if err := c.requireTransient("UpdateBlockRootAtIndex"); err != nil {
		return err
	}
	if i >= uint64(len(c.state.BlockRoots)) {
		return indexOutOfRangeErr("UpdateBlockRootAtIndex", i, len(c.state.BlockRoots))
	}
	c.state.BlockRoots[i] = root
	return nil
}

func (c *CachedBeaconState) UpdateStateRootAtIndex(i uint64, root [32]byte) error {
	if err := c.requireTransient("UpdateStateRootAtIndex"); err != nil {
		return err
	}
	if i >= uint64(len(c.state.StateRoots)) {
		return indexOutOfRangeErr("UpdateStateRootAtIndex", i, len(c.state.StateRoots))
	}
	c.state.StateRoots[i] = root
	return nil
}

func (c *CachedBeaconState) AppendHistoricalRoot(root [32]byte) error {
	if err := c.requireTransient("AppendHistoricalRoot"); err != nil {
		return err
	}
	c.state.HistoricalRoots = append(c.state.HistoricalRoots, root)
	return nil
}

func (c *CachedBeaconState) SetEth1Data(d blocks.Eth1Data) error {
	if err := c.requireTransient("SetEth1Data"); err != nil {
		return err
	}
	c.state.Eth1Data = d
	return nil
}

func (c *CachedBeaconState) AppendEth1DataVote(d blocks.Eth1Data) error {
	if err := c.requireTransient("AppendEth1DataVote"); err != nil {
		return err
	}
	c.state.Eth1DataVotes = append(c.state.Eth1DataVotes, d)
	return nil
}

func (c *CachedBeaconState) ResetEth1DataVotes() error {
	if err := c.requireTransient("ResetEth1DataVotes"); err != nil {
		return err
	}
	c.state.Eth1DataVotes = nil
	return nil
}

func (c *CachedBeaconState) SetEth1DepositIndex(i uint64) error {
	if err := c.requireTransient("SetEth1DepositIndex"); err != nil {
		return err
	}
	c.state.Eth1DepositIndex = i
	return nil
}

// AppendValidator grows the registry by one entry and extends the
// parallel balance slice, maintaining the pubkey index bijection.
func (c *CachedBeaconState) AppendValidator(v *blocks.Validator, balance uint64) (types.ValidatorIndex, error) {
	if err := c.requireTransient("AppendValidator"); err != nil {
		return 0, err
	}
	if _, exists := c.pubkeyToIndex[v.PublicKey]; exists {
		return 0, duplicateValidatorErr(v.PublicKey)
	}
	idx := types.ValidatorIndex(len(c.state.Validators))
	c.state.Validators = append(c.state.Validators, v)
	c.state.Balances = append(c.state.Balances, balance)
	c.pubkeyToIndex[v.PublicKey] = idx
	c.invalidateEpochCaches()
	return idx, nil
}

func (c *CachedBeaconState) SetBalanceAtIndex(i types.ValidatorIndex, balance uint64) error {
	if err := c.requireTransient("SetBalanceAtIndex"); err != nil {
		return err
	}
	if int(i) >= len(c.state.Balances) {
		return indexOutOfRangeErr("SetBalanceAtIndex", uint64(i), len(c.state.Balances))
	}
	c.state.Balances[i] = balance
	return nil
}

// IncreaseBalance adds delta to the balance at i.
func (c *CachedBeaconState) IncreaseBalance(i types.ValidatorIndex, delta uint64) error {
	bal, err := c.BalanceAtIndex(i)
	if err != nil {
		return err
	}
	return c.SetBalanceAtIndex(i, bal+delta)
}

// DecreaseBalance subtracts delta from the balance at i, floored at
// zero rather than underflowing.
func (c *CachedBeaconState) DecreaseBalance(i types.ValidatorIndex, delta uint64) error {
	bal, err := c.BalanceAtIndex(i)
	if err != nil {
		return err
	}
	if delta > bal {
		return c.SetBalanceAtIndex(i, 0)
	}
	return c.SetBalanceAtIndex(i, bal-delta)
}

func (c *CachedBeaconState) UpdateValidatorAtIndex(i types.ValidatorIndex, mutate func(*blocks.Validator)) error {
	if err := c.requireTransient("UpdateValidatorAtIndex"); err != nil {
		return err
	}
	v, err := c.ValidatorAtIndex(i)
	if err != nil {
		return err
	}
	mutate(v)
	c.invalidateEpochCaches()
	return nil
}

func (c *CachedBeaconState) UpdateRandaoMixAtIndex(i uint64, mix [32]byte) error {
	if err := c.requireTransient("UpdateRandaoMixAtIndex"); err != nil {
		return err
	}
	if i >= uint64(len(c.state.RandaoMixes)) {
		return indexOutOfRangeErr("UpdateRandaoMixAtIndex", i, len(c.state.RandaoMixes))
	}
	c.state.RandaoMixes[i] = mix
	return nil
}

func (c *CachedBeaconState) SetSlashingAtIndex(i uint64, amount uint64) error {
	if err := c.requireTransient("SetSlashingAtIndex"); err != nil {
		return err
	}
	if i >= uint64(len(c.state.Slashings)) {
		return indexOutOfRangeErr("SetSlashingAtIndex", i, len(c.state.Slashings))
	}
	c.state.Slashings[i] = amount
	return nil
}

func (c *CachedBeaconState) SetJustificationBits(bits bitfield.Bitvector4) error {
	if err := c.requireTransient("SetJustificationBits"); err != nil {
		return err
	}
	c.state.JustificationBits = bits
	return nil
}

func (c *CachedBeaconState) SetPreviousJustifiedCheckpoint(ckpt blocks.Checkpoint) error {
	if err := c.requireTransient("SetPreviousJustifiedCheckpoint"); err != nil {
		return err
	}
	c.state.PreviousJustifiedCheckpoint = ckpt
	return nil
}

func (c *CachedBeaconState) SetCurrentJustifiedCheckpoint(ckpt blocks.Checkpoint) error {
	if err := c.requireTransient("SetCurrentJustifiedCheckpoint"); err != nil {
		return err
	}
	c.state.CurrentJustifiedCheckpoint = ckpt
	return nil
}

func (c *CachedBeaconState) SetFinalizedCheckpoint(ckpt blocks.Checkpoint) error {
	if err := c.requireTransient("SetFinalizedCheckpoint"); err != nil {
		return err
	}
	c.state.FinalizedCheckpoint = ckpt
	return nil
}

func (c *CachedBeaconState) SetPreviousEpochAttestations(atts []rawstate.PendingAttestation) error {
	if err := c.requireTransient("SetPreviousEpochAttestations"); err != nil {
		return err
	}
	c.state.PreviousEpochAttestations = atts
	return nil
}

func (c *CachedBeaconState) SetCurrentEpochAttestations(atts []rawstate.PendingAttestation) error {
	if err := c.requireTransient("SetCurrentEpochAttestations"); err != nil {
		return err
	}
	c.state.CurrentEpochAttestations = atts
	return nil
}

func (c *CachedBeaconState) AppendCurrentEpochAttestation(att rawstate.PendingAttestation) error {
	if err := c.requireTransient("AppendCurrentEpochAttestation"); err != nil {
		return err
	}
	c.state.CurrentEpochAttestations = append(c.state.CurrentEpochAttestations, att)
	return nil
}

func (c *CachedBeaconState) SetPreviousEpochParticipation(p []byte) error {
	if err := c.requireTransient("SetPreviousEpochParticipation"); err != nil {
		return err
	}
	c.state.PreviousEpochParticipation = p
	return nil
}

func (c *CachedBeaconState) SetCurrentEpochParticipation(p []byte) error {
	if err := c.requireTransient("SetCurrentEpochParticipation"); err != nil {
		return err
	}
	c.state.CurrentEpochParticipation = p
	return nil
}

func (c *CachedBeaconState) UpdateParticipationFlagsAtIndex(i types.ValidatorIndex, flags byte) error {
	if err := c.requireTransient("UpdateParticipationFlagsAtIndex"); err != nil {
		return err
	}
	if int(i) >= len(c.state.CurrentEpochParticipation) {
		return indexOutOfRangeErr("UpdateParticipationFlagsAtIndex", uint64(i), len(c.state.CurrentEpochParticipation))
	}
	c.state.CurrentEpochParticipation[i] |= flags
	return nil
}

func (c *CachedBeaconState) SetInactivityScores(scores []uint64) error {
	if err := c.requireTransient("SetInactivityScores"); err != nil {
		return err
	}
	c.state.InactivityScores = scores
	return nil
}

func (c *CachedBeaconState) SetInactivityScoreAtIndex(i types.ValidatorIndex, score uint64) error {
	if err := c.requireTransient("SetInactivityScoreAtIndex"); err != nil {
		return err
	}
	if int(i) >= len(c.state.InactivityScores) {
		return indexOutOfRangeErr("SetInactivityScoreAtIndex", uint64(i), len(c.state.InactivityScores))
	}
	c.state.InactivityScores[i] = score
	return nil
}

func (c *CachedBeaconState) SetCurrentSyncCommittee(sc *blocks.SyncCommittee) error {
	if err := c.requireTransient("SetCurrentSyncCommittee"); err != nil {
		return err
	}
	c.state.CurrentSyncCommittee = sc
	return nil
}

func (c *CachedBeaconState) SetNextSyncCommittee(sc *blocks.SyncCommittee) error {
	if err := c.requireTransient("SetNextSyncCommittee"); err != nil {
		return err
	}
	c.state.NextSyncCommittee = sc
	return nil
}

func (c *CachedBeaconState) SetLatestExecutionPayloadHeader(h *blocks.ExecutionPayloadHeader) error {
	if err := c.requireTransient("SetLatestExecutionPayloadHeader"); err != nil {
		return err
	}
	c.state.LatestExecutionPayloadHeader = h
	return nil
}

// SetVersion upgrades the schema tag. Callers (UpgradeToAltair,
// UpgradeToBellatrix) populate the new fork's fields before or after
// calling this; it never allocates them itself.
func (c *CachedBeaconState) SetVersion(v version.Fork) error {
	if err := c.requireTransient("SetVersion"); err != nil {
		return err
	}
	c.state.Version = v
	return nil
}
