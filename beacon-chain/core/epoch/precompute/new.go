// Package precompute builds a single per-validator summary of
// attestation participation once per epoch transition, so the
// justification, rewards/penalties, and slashings phases of
// epoch processing each read it rather than re-scanning every
// attestation from scratch.
package precompute

import (
	"github.com/eth-clients/beaconstf/beacon-chain/core/helpers"
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	rawstate "github.com/eth-clients/beaconstf/consensus-types/state"
	"github.com/eth-clients/beaconstf/runtime/version"
	"github.com/pkg/errors"
)

// Validator is one registry entry's participation summary for the
// epoch transition currently in progress.
type Validator struct {
	IsActiveCurrentEpoch  bool
	IsActivePrevEpoch     bool
	IsSlashed             bool
	CurrentEpochEffectiveBalance uint64

	IsPrevEpochSourceAttester bool
	IsPrevEpochTargetAttester bool
	IsPrevEpochHeadAttester   bool
	IsCurrentEpochTargetAttester bool

	// InclusionDelay and InclusionProposerIndex describe the
	// source-attesting pending attestation with the smallest
	// inclusion delay for this validator (Phase0 only; Altair records
	// attestation timeliness as participation flags at block-processing
	// time and pays the rewards at epoch processing, without tracking
	// inclusion delay).
	InclusionDelay         types.Slot
	InclusionProposerIndex types.ValidatorIndex
}

// Balance tallies total effective balance by participation category
// for the epoch transition, the denominators the reward/penalty math
// divides by.
type Balance struct {
	ActiveCurrentEpoch uint64
	ActivePrevEpoch    uint64

	PrevEpochSourceAttesters uint64
	PrevEpochTargetAttesters uint64
	PrevEpochHeadAttesters   uint64

	CurrentEpochTargetAttesters uint64
}

// New builds the Validator/Balance precompute pair for st, reading
// the fork-appropriate participation record (Phase0 pending
// attestations or Altair+ flag bytes).
func New(st *state.CachedBeaconState) ([]*Validator, *Balance, error) {
	currentEpoch := btime.CurrentEpoch(st.Slot())
	prevEpoch := btime.PrevEpoch(st.Slot())
	cfg := st.Config()

	vals := make([]*Validator, st.NumValidators())
	bal := &Balance{}

	for i, v := range st.Validators() {
		pv := &Validator{
			IsActiveCurrentEpoch:         helpers.IsActiveValidator(v.ActivationEpoch, v.ExitEpoch, currentEpoch),
			IsActivePrevEpoch:            helpers.IsActiveValidator(v.ActivationEpoch, v.ExitEpoch, prevEpoch),
			IsSlashed:                    v.Slashed,
			CurrentEpochEffectiveBalance: v.EffectiveBalance,
		}
		vals[i] = pv
		if pv.IsActiveCurrentEpoch {
			bal.ActiveCurrentEpoch += v.EffectiveBalance
		}
		if pv.IsActivePrevEpoch {
			bal.ActivePrevEpoch += v.EffectiveBalance
		}
	}

	if st.Version() == version.Phase0 {
		if err := fillFromPendingAttestations(st, vals, bal); err != nil {
			return nil, nil, err
		}
	} else {
		fillFromParticipationFlags(st, vals, bal)
	}

	if bal.ActiveCurrentEpoch < cfg.EffectiveBalanceIncrement {
		bal.ActiveCurrentEpoch = cfg.EffectiveBalanceIncrement
	}
	if bal.ActivePrevEpoch < cfg.EffectiveBalanceIncrement {
		bal.ActivePrevEpoch = cfg.EffectiveBalanceIncrement
	}
	return vals, bal, nil
}

func fillFromPendingAttestations(st *state.CachedBeaconState, vals []*Validator, bal *Balance) error {
	mark := func(atts []rawstate.PendingAttestation, isCurrent bool) error {
		for _, a := range atts {
			committee, err := helpers.BeaconCommittee(st, a.Data.Slot, a.Data.CommitteeIndex)
			if err != nil {
				return err
			}
			targetRoot, err := BlockRootAtSlot(st, btime.StartSlot(a.Data.Target.Epoch))
			if err != nil {
				return err
			}
			headRoot, err := BlockRootAtSlot(st, a.Data.Slot)
			if err != nil {
				return err
			}
			for i, idx := range committee {
				if !bitSet(a.AggregationBits, i) {
					continue
				}
				v := vals[idx]
				if isCurrent {
					if a.Data.Target.Root == targetRoot {
						v.IsCurrentEpochTargetAttester = true
					}
					continue
				}
				if !v.IsPrevEpochSourceAttester || a.InclusionDelay < v.InclusionDelay {
					v.InclusionDelay = a.InclusionDelay
					v.InclusionProposerIndex = a.ProposerIndex
				}
				v.IsPrevEpochSourceAttester = true
				if a.Data.Target.Root == targetRoot {
					v.IsPrevEpochTargetAttester = true
				}
				if a.Data.BeaconBlockRoot == headRoot {
					v.IsPrevEpochHeadAttester = true
				}
			}
		}
		return nil
	}

	if err := mark(st.PreviousEpochAttestations(), false); err != nil {
		return err
	}
	if err := mark(st.CurrentEpochAttestations(), true); err != nil {
		return err
	}

	for _, v := range vals {
		if v.IsPrevEpochSourceAttester && v.IsActivePrevEpoch {
			bal.PrevEpochSourceAttesters += v.CurrentEpochEffectiveBalance
		}
		if v.IsPrevEpochTargetAttester && v.IsActivePrevEpoch {
			bal.PrevEpochTargetAttesters += v.CurrentEpochEffectiveBalance
		}
		if v.IsPrevEpochHeadAttester && v.IsActivePrevEpoch {
			bal.PrevEpochHeadAttesters += v.CurrentEpochEffectiveBalance
		}
		if v.IsCurrentEpochTargetAttester && v.IsActiveCurrentEpoch {
			bal.CurrentEpochTargetAttesters += v.CurrentEpochEffectiveBalance
		}
	}
	return nil
}

func fillFromParticipationFlags(st *state.CachedBeaconState, vals []*Validator, bal *Balance) {
	cfg := st.Config()
	prev := st.PreviousEpochParticipation()
	cur := st.CurrentEpochParticipation()

	for i, v := range vals {
		if i < len(prev) {
			flags := prev[i]
			v.IsPrevEpochSourceAttester = flags&(1<<cfg.TimelySourceFlagIndex) != 0
			v.IsPrevEpochTargetAttester = flags&(1<<cfg.TimelyTargetFlagIndex) != 0
			v.IsPrevEpochHeadAttester = flags&(1<<cfg.TimelyHeadFlagIndex) != 0
		}
		if i < len(cur) {
			v.IsCurrentEpochTargetAttester = cur[i]&(1<<cfg.TimelyTargetFlagIndex) != 0
		}
		if v.IsPrevEpochSourceAttester && v.IsActivePrevEpoch {
			bal.PrevEpochSourceAttesters += v.CurrentEpochEffectiveBalance
		}
		if v.IsPrevEpochTargetAttester && v.IsActivePrevEpoch {
			bal.PrevEpochTargetAttesters += v.CurrentEpochEffectiveBalance
		}
		if v.IsPrevEpochHeadAttester && v.IsActivePrevEpoch {
			bal.PrevEpochHeadAttesters += v.CurrentEpochEffectiveBalance
		}
		if v.IsCurrentEpochTargetAttester && v.IsActiveCurrentEpoch {
			bal.CurrentEpochTargetAttesters += v.CurrentEpochEffectiveBalance
		}
	}
}

// BlockRootAtSlot reads the state's block-root ring buffer. Valid
// only for slots within SlotsPerHistoricalRoot of the current slot,
// which every call site here respects: attestations are only
// precomputed for the previous and current epoch.
func BlockRootAtSlot(st *state.CachedBeaconState, slot types.Slot) ([32]byte, error) {
	cfg := st.Config()
	if slot > st.Slot() || st.Slot() > slot+cfg.SlotsPerHistoricalRoot {
		return [32]byte{}, errors.Errorf("precompute: slot %d outside block-root buffer range of current slot %d", slot, st.Slot())
	}
	roots := st.BlockRoots()
	return roots[uint64(slot)%uint64(len(roots))], nil
}

func bitSet(bits []byte, i int) bool {
	byteIdx := i / 8
	if byteIdx >= len(bits) {
		return false
	}
	return bits[byteIdx]&(1<<(uint(i)%8)) != 0
}
