// Package blocks implements block-body processing: the per-operation
// state mutations process_block applies, plus the signature-set
// extraction the driver batch-verifies before committing them.
package blocks

import (
	"github.com/eth-clients/beaconstf/beacon-chain/core/signing"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/eth-clients/beaconstf/crypto/bls"
	"github.com/pkg/errors"
)

// ProcessBlockHeader validates the incoming block's header against
// the current state and, if valid, updates LatestBlockHeader. It
// does not verify the proposer signature — that happens once, in the
// driver, over a batched signature set built from ExtractProposerSignatureSet.
func ProcessBlockHeader(st *state.CachedBeaconState, blk *rawblocks.BeaconBlock) error {
	if blk.Slot != st.Slot() {
		return errors.Errorf("blocks: block slot %d does not match state slot %d", blk.Slot, st.Slot())
	}
	if blk.Slot <= st.LatestBlockHeader().Slot {
		return errors.Errorf("blocks: block slot %d not later than latest header slot %d", blk.Slot, st.LatestBlockHeader().Slot)
	}

	proposerIndex, err := expectedProposerIndex(st)
	if err != nil {
		return err
	}
	if blk.ProposerIndex != proposerIndex {
		return errors.Errorf("blocks: block proposer index %d does not match expected %d", blk.ProposerIndex, proposerIndex)
	}

	latest := st.LatestBlockHeader()
	expectedParentRoot, err := blockHeaderRoot(&latest)
	if err != nil {
		return err
	}
	if blk.ParentRoot != expectedParentRoot {
		return errors.New("blocks: block parent root does not match latest block header root")
	}

	v, err := st.ValidatorAtIndex(blk.ProposerIndex)
	if err != nil {
		return err
	}
	if v.Slashed {
		return errors.New("blocks: proposer has been slashed")
	}

	bRoot, err := bodyRoot(&blk.Body)
	if err != nil {
		return err
	}

	return st.SetLatestBlockHeader(rawblocks.BeaconBlockHeader{
		Slot:          blk.Slot,
		ProposerIndex: blk.ProposerIndex,
		ParentRoot:    blk.ParentRoot,
		StateRoot:     [32]byte{}, // zeroed until the post-state root is known; ProcessSlot fills this in on the next slot advance
		BodyRoot:      bRoot,
	})
}

// ExtractProposerSignatureSet builds the single-element signature
// set for a block's proposer signature, appended to the driver's
// batch rather than verified eagerly.
func ExtractProposerSignatureSet(st *state.CachedBeaconState, signed *rawblocks.SignedBeaconBlock, genesisValidatorsRoot [32]byte) (*bls.SignatureSet, error) {
	v, err := st.ValidatorAtIndex(signed.Block.ProposerIndex)
	if err != nil {
		return nil, err
	}
	pubkey, err := bls.PublicKeyFromBytes(v.PublicKey[:])
	if err != nil {
		return nil, err
	}

	domain := signing.ComputeDomain(st.Config().DomainBeaconProposer, currentForkVersion(st), genesisValidatorsRoot)
	objectRoot, err := blockRoot(&signed.Block)
	if err != nil {
		return nil, err
	}
	signingRoot := signing.ComputeSigningRoot(objectRoot, domain)

	set := bls.NewSet()
	set.Append("proposer", signingRoot, pubkey, signed.Signature[:])
	return set, nil
}

func currentForkVersion(st *state.CachedBeaconState) [4]byte {
	return st.Fork().CurrentVersion
}

// forkVersionAtEpoch returns the fork version active at epoch: the
// state's current fork version once epoch reaches the fork's own
// activation epoch, otherwise the version it upgraded from. Domains
// computed for an object named by a specific epoch (a voluntary exit's
// named epoch, for instance) use this rather than the state's present
// fork version.
func forkVersionAtEpoch(st *state.CachedBeaconState, epoch types.Epoch) [4]byte {
	fork := st.Fork()
	if epoch < fork.Epoch {
		return fork.PreviousVersion
	}
	return fork.CurrentVersion
}
