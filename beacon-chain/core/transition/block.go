package transition

import (
	"context"

	"github.com/eth-clients/beaconstf/beacon-chain/core/altair"
	"github.com/eth-clients/beaconstf/beacon-chain/core/bellatrix"
	coreblocks "github.com/eth-clients/beaconstf/beacon-chain/core/blocks"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	"github.com/eth-clients/beaconstf/crypto/bls"
	"github.com/eth-clients/beaconstf/runtime/version"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// ProcessBlock mutates st according to signed's body: header, then
// (Bellatrix+) the execution payload, then the shared randao/eth1
// data/operations steps, then (Altair+) the sync aggregate — the
// execution payload runs before randao changes in the Bellatrix
// variant, per spec. It collects every operation's signature set into
// one batch for the driver to verify, rather than verifying any
// signature inline.
func ProcessBlock(ctx context.Context, st *state.CachedBeaconState, signed *rawblocks.SignedBeaconBlock, genesisValidatorsRoot [32]byte) (*bls.SignatureSet, error) {
	_, span := trace.StartSpan(ctx, "transition.ProcessBlock")
	defer span.End()

	blk := &signed.Block
	if err := coreblocks.ProcessBlockHeader(st, blk); err != nil {
		return nil, errors.Wrap(err, "transition: block header invalid")
	}

	if st.Version() >= version.Bellatrix {
		if blk.Body.ExecutionPayload == nil {
			return nil, errors.New("transition: bellatrix+ block missing execution payload")
		}
		if err := bellatrix.ProcessExecutionPayload(st, blk.Body.ExecutionPayload); err != nil {
			return nil, errors.Wrap(err, "transition: execution payload invalid")
		}
	}

	sigs := bls.NewSet()

	randaoSet, err := coreblocks.ExtractRandaoSignatureSet(st, &blk.Body, uint64(blk.ProposerIndex), genesisValidatorsRoot)
	if err != nil {
		return nil, err
	}
	sigs.Join(randaoSet)
	if err := coreblocks.ProcessRandao(st, &blk.Body); err != nil {
		return nil, errors.Wrap(err, "transition: randao processing failed")
	}

	if err := coreblocks.ProcessEth1Data(st, &blk.Body); err != nil {
		return nil, errors.Wrap(err, "transition: eth1 data processing failed")
	}

	opsSet, err := coreblocks.ProcessOperations(st, signed, uint64(blk.ProposerIndex), genesisValidatorsRoot)
	if err != nil {
		return nil, errors.Wrap(err, "transition: operation processing failed")
	}
	sigs.Join(opsSet)

	if st.Version() >= version.Altair {
		if blk.Body.SyncAggregate == nil {
			return nil, errors.New("transition: altair+ block missing sync aggregate")
		}
		if err := altair.VerifySyncAggregate(st, blk.Body.SyncAggregate); err != nil {
			return nil, errors.Wrap(err, "transition: sync aggregate invalid")
		}
		parentBlockRoot := blk.ParentRoot
		syncSet, err := altair.ExtractSyncAggregateSignatureSet(st, blk.Body.SyncAggregate, parentBlockRoot, genesisValidatorsRoot)
		if err != nil {
			return nil, err
		}
		sigs.Join(syncSet)
		if err := altair.ProcessSyncAggregate(st, blk.Body.SyncAggregate, blk.ProposerIndex); err != nil {
			return nil, errors.Wrap(err, "transition: sync aggregate processing failed")
		}
	}

	return sigs, nil
}
