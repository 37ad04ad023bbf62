// Package bellatrix implements the Bellatrix-specific behavior Altair
// lacks: the one-time state upgrade that introduces the execution
// payload header, and the per-block payload validation that runs
// alongside the Eth1Data voting all forks share.
package bellatrix

import (
	"context"

	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	"github.com/eth-clients/beaconstf/runtime/version"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// UpgradeToBellatrix converts an Altair state into its Bellatrix
// equivalent: the fork record advances and an empty
// ExecutionPayloadHeader is installed, which the first post-fork
// block's payload then overwrites.
func UpgradeToBellatrix(ctx context.Context, st *state.CachedBeaconState) error {
	_, span := trace.StartSpan(ctx, "bellatrix.UpgradeToBellatrix")
	defer span.End()

	if st.Version() != version.Altair {
		return errors.Errorf("bellatrix: cannot upgrade state already at version %s", st.Version())
	}
	epoch := btime.CurrentEpoch(st.Slot())
	cfg := st.Config()
	log.WithField("epoch", epoch).Debug("upgrading state to bellatrix")

	if err := st.SetFork(rawblocks.Fork{
		PreviousVersion: st.Fork().CurrentVersion,
		CurrentVersion:  cfg.BellatrixForkVersion,
		Epoch:           epoch,
	}); err != nil {
		return err
	}
	if err := st.SetVersion(version.Bellatrix); err != nil {
		return err
	}
	return st.SetLatestExecutionPayloadHeader(&rawblocks.ExecutionPayloadHeader{})
}
