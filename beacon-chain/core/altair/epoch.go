package altair

import (
	"context"

	"github.com/eth-clients/beaconstf/beacon-chain/core/epoch/precompute"
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	"go.opencensus.io/trace"
)

// ProcessSyncCommitteeUpdates rotates the sync committee pair at each
// sync-committee-period boundary: the already-selected
// NextSyncCommittee becomes CurrentSyncCommittee, and a new
// NextSyncCommittee is drawn for the period after that.
func ProcessSyncCommitteeUpdates(st *state.CachedBeaconState) error {
	nextEpoch := btime.NextEpoch(st.Slot())
	if uint64(nextEpoch)%uint64(st.Config().EpochsPerSyncCommitteePeriod) != 0 {
		return nil
	}
	if err := st.SetCurrentSyncCommittee(st.NextSyncCommittee()); err != nil {
		return err
	}
	next, err := ComputeSyncCommittee(st, nextEpoch+st.Config().EpochsPerSyncCommitteePeriod)
	if err != nil {
		return err
	}
	return st.SetNextSyncCommittee(next)
}

// ProcessEpoch runs the eleven Altair epoch-transition phases in spec
// order: precompute, justification/finalization, inactivity updates,
// rewards/penalties, registry updates, slashings, the eth1-data reset,
// effective-balance updates, the slashings/randao/historical-roots
// resets, participation-flag rollover, and sync-committee rotation.
func ProcessEpoch(ctx context.Context, st *state.CachedBeaconState) error {
	_, span := trace.StartSpan(ctx, "altair.ProcessEpoch")
	defer span.End()

	vals, bal, err := precompute.New(st)
	if err != nil {
		return err
	}
	if err := precompute.ProcessJustificationAndFinalization(st, bal); err != nil {
		return err
	}
	if err := precompute.ProcessInactivityUpdates(st, vals, bal); err != nil {
		return err
	}
	if err := precompute.ProcessRewardsAndPenaltiesAltair(st, vals, bal); err != nil {
		return err
	}
	if err := precompute.ProcessRegistryUpdates(st); err != nil {
		return err
	}
	if err := precompute.ProcessSlashings(st, vals, bal); err != nil {
		return err
	}
	if err := precompute.ProcessEth1DataReset(st); err != nil {
		return err
	}
	if err := precompute.ProcessEffectiveBalanceUpdates(st); err != nil {
		return err
	}
	if err := precompute.ProcessSlashingsReset(st); err != nil {
		return err
	}
	if err := precompute.ProcessRandaoMixesReset(st); err != nil {
		return err
	}
	if err := precompute.ProcessHistoricalRootsUpdate(st); err != nil {
		return err
	}
	if err := precompute.ProcessParticipationFlagUpdates(st); err != nil {
		return err
	}
	return ProcessSyncCommitteeUpdates(st)
}
