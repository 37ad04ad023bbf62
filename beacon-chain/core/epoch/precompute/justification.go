package precompute

import (
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/prysmaticlabs/go-bitfield"
)

// ProcessJustificationAndFinalization rolls the justification
// bitfield forward and advances the finalized checkpoint according
// to the four Casper-FFG finalization rules, using the
// previous/current target-attester balances already tallied in bal.
func ProcessJustificationAndFinalization(st *state.CachedBeaconState, bal *Balance) error {
	currentEpoch := btime.CurrentEpoch(st.Slot())
	if currentEpoch <= 1 {
		return nil
	}

	oldPrevJustified := st.PreviousJustifiedCheckpoint()
	oldCurJustified := st.CurrentJustifiedCheckpoint()

	newBits := shiftBits(st.JustificationBits())

	if err := st.SetPreviousJustifiedCheckpoint(oldCurJustified); err != nil {
		return err
	}

	prevEpoch := btime.PrevEpoch(st.Slot())
	if 3*bal.PrevEpochTargetAttesters >= 2*bal.ActivePrevEpoch {
		root, err := BlockRootAtSlot(st, btime.StartSlot(prevEpoch))
		if err != nil {
			return err
		}
		newBits.SetBitAt(1, true)
		if err := st.SetCurrentJustifiedCheckpoint(rawblocks.Checkpoint{Epoch: prevEpoch, Root: root}); err != nil {
			return err
		}
	}
	if 3*bal.CurrentEpochTargetAttesters >= 2*bal.ActiveCurrentEpoch {
		root, err := BlockRootAtSlot(st, btime.StartSlot(currentEpoch))
		if err != nil {
			return err
		}
		newBits.SetBitAt(0, true)
		if err := st.SetCurrentJustifiedCheckpoint(rawblocks.Checkpoint{Epoch: currentEpoch, Root: root}); err != nil {
			return err
		}
	}

	if err := st.SetJustificationBits(newBits); err != nil {
		return err
	}
	return applyFinalizationRules(st, newBits, currentEpoch, oldPrevJustified, oldCurJustified)
}

// shiftBits shifts the justification bitfield left by one bit
// (dropping bit 3), the per-epoch rotation every transition applies
// before testing the new epoch's justification conditions.
func shiftBits(bits bitfield.Bitvector4) bitfield.Bitvector4 {
	out := bitfield.NewBitvector4()
	for i := uint64(0); i < 3; i++ {
		out.SetBitAt(i+1, bits.BitAt(i))
	}
	return out
}

// applyFinalizationRules checks the four standard finalization rules
// against the rolled-forward bitfield, using the checkpoints as they
// stood BEFORE this epoch's justification updates, per the consensus
// spec's process_justification_and_finalization.
func applyFinalizationRules(
	st *state.CachedBeaconState,
	bits bitfield.Bitvector4,
	currentEpoch types.Epoch,
	oldPrevJustified, oldCurJustified rawblocks.Checkpoint,
) error {
	bit := func(i uint64) bool { return bits.BitAt(i) }

	// Rule 1: epochs [e-3, e-2, e-1] all justified, source e-3.
	if bit(1) && bit(2) && bit(3) && oldPrevJustified.Epoch+3 == currentEpoch {
		return st.SetFinalizedCheckpoint(oldPrevJustified)
	}
	// Rule 2: epochs [e-3, e-2] justified (skip e-1), source e-3.
	if bit(1) && bit(2) && oldPrevJustified.Epoch+2 == currentEpoch {
		return st.SetFinalizedCheckpoint(oldPrevJustified)
	}
	// Rule 3: epochs [e-2, e-1] justified via e-3, source e-2.
	if bit(0) && bit(1) && bit(2) && oldCurJustified.Epoch+2 == currentEpoch {
		return st.SetFinalizedCheckpoint(oldCurJustified)
	}
	// Rule 4: epoch e-1 justified, source e-1.
	if bit(0) && bit(1) && oldCurJustified.Epoch+1 == currentEpoch {
		return st.SetFinalizedCheckpoint(oldCurJustified)
	}
	return nil
}
