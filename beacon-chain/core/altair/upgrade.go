// Package altair implements the Altair-specific behavior the Phase0
// base lacks: the one-time state upgrade, participation-flag
// bookkeeping, sync-committee rotation, and sync-aggregate
// processing.
package altair

import (
	"context"

	"github.com/eth-clients/beaconstf/beacon-chain/core/helpers"
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	rawstate "github.com/eth-clients/beaconstf/consensus-types/state"
	"github.com/eth-clients/beaconstf/runtime/version"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// UpgradeToAltair converts a Phase0 state into its Altair
// equivalent: the fork record advances, Phase0's pending-attestation
// lists are translated into participation-flag bytes, every
// validator gets a zeroed inactivity score, and both sync committees
// are populated from the current active set.
func UpgradeToAltair(ctx context.Context, st *state.CachedBeaconState) error {
	_, span := trace.StartSpan(ctx, "altair.UpgradeToAltair")
	defer span.End()

	if st.Version() != version.Phase0 {
		return errors.Errorf("altair: cannot upgrade state already at version %s", st.Version())
	}

	epoch := btime.CurrentEpoch(st.Slot())
	cfg := st.Config()
	log.WithField("epoch", epoch).Debug("upgrading state to altair")

	prevParticipation, err := TranslateParticipation(st, st.PreviousEpochAttestations())
	if err != nil {
		return err
	}
	if err := st.SetPreviousEpochParticipation(prevParticipation); err != nil {
		return err
	}
	curParticipation := make([]byte, st.NumValidators())
	if err := st.SetCurrentEpochParticipation(curParticipation); err != nil {
		return err
	}

	if err := st.SetPreviousEpochAttestations(nil); err != nil {
		return err
	}
	if err := st.SetCurrentEpochAttestations(nil); err != nil {
		return err
	}

	scores := make([]uint64, st.NumValidators())
	if err := st.SetInactivityScores(scores); err != nil {
		return err
	}

	if err := st.SetFork(rawblocks.Fork{
		PreviousVersion: st.Fork().CurrentVersion,
		CurrentVersion:  cfg.AltairForkVersion,
		Epoch:           epoch,
	}); err != nil {
		return err
	}
	if err := st.SetVersion(version.Altair); err != nil {
		return err
	}

	current, err := ComputeSyncCommittee(st, epoch)
	if err != nil {
		return err
	}
	next, err := ComputeSyncCommittee(st, epoch+1)
	if err != nil {
		return err
	}
	if err := st.SetCurrentSyncCommittee(current); err != nil {
		return err
	}
	return st.SetNextSyncCommittee(next)
}

// TranslateParticipation converts Phase0 pending attestations for
// the outgoing previous epoch into Altair participation-flag bytes,
// run once during the upgrade so no history is lost at the fork
// boundary.
func TranslateParticipation(st *state.CachedBeaconState, pendingAtts []rawstate.PendingAttestation) ([]byte, error) {
	out := make([]byte, st.NumValidators())
	cfg := st.Config()
	for _, a := range pendingAtts {
		committee, err := helpers.BeaconCommittee(st, a.Data.Slot, a.Data.CommitteeIndex)
		if err != nil {
			return nil, err
		}
		for i, idx := range committee {
			if !bitSetAt(a.AggregationBits, i) {
				continue
			}
			var flags byte
			flags |= 1 << cfg.TimelySourceFlagIndex
			flags |= 1 << cfg.TimelyTargetFlagIndex
			if a.InclusionDelay == 1 {
				flags |= 1 << cfg.TimelyHeadFlagIndex
			}
			out[idx] |= flags
		}
	}
	return out, nil
}

func bitSetAt(bits []byte, i int) bool {
	byteIdx := i / 8
	if byteIdx >= len(bits) {
		return false
	}
	return bits[byteIdx]&(1<<(uint(i)%8)) != 0
}
