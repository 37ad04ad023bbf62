// Package epoch composes the per-fork epoch-transition pipelines from
// the shared precompute phases, the same "fork calls shared helpers in
// a fork-specific order" structure core/blocks/operations.go uses for
// block processing.
package epoch

import (
	"context"

	"github.com/eth-clients/beaconstf/beacon-chain/core/epoch/precompute"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	"go.opencensus.io/trace"
)

// ProcessEpoch runs the nine Phase0 epoch-transition phases in spec
// order: precompute, justification/finalization, rewards/penalties,
// registry updates, slashings, the eth1-data reset, effective-balance
// updates, the slashings/randao/historical-roots resets, and the
// pending-attestation rollover.
func ProcessEpoch(ctx context.Context, st *state.CachedBeaconState) error {
	_, span := trace.StartSpan(ctx, "epoch.ProcessEpoch")
	defer span.End()

	vals, bal, err := precompute.New(st)
	if err != nil {
		return err
	}
	if err := precompute.ProcessJustificationAndFinalization(st, bal); err != nil {
		return err
	}
	if err := precompute.ProcessRewardsAndPenaltiesPhase0(st, vals, bal); err != nil {
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
	return precompute.ProcessParticipationRecordUpdates(st)
}
