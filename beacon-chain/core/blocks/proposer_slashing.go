package blocks

import (
	"github.com/eth-clients/beaconstf/beacon-chain/core/helpers"
	"github.com/eth-clients/beaconstf/beacon-chain/core/signing"
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	"github.com/eth-clients/beaconstf/crypto/bls"
	"github.com/pkg/errors"
)

// VerifyProposerSlashing checks the two headers name the same slot
// and proposer, differ, and belong to a validator still slashable.
func VerifyProposerSlashing(st *state.CachedBeaconState, ps *rawblocks.ProposerSlashing) error {
	h1, h2 := ps.Header1.Header, ps.Header2.Header
	if h1.Slot != h2.Slot {
		return errors.New("blocks: proposer slashing headers have different slots")
	}
	if h1.ProposerIndex != h2.ProposerIndex {
		return errors.New("blocks: proposer slashing headers have different proposers")
	}
	if h1 == h2 {
		return errors.New("blocks: proposer slashing headers are identical")
	}

	v, err := st.ValidatorAtIndex(h1.ProposerIndex)
	if err != nil {
		return err
	}
	epoch := btime.CurrentEpoch(st.Slot())
	if !helpers.IsSlashableValidator(v.Slashed, v.WithdrawableEpoch, epoch) {
		return errors.New("blocks: proposer is not slashable")
	}
	return nil
}

// ProcessProposerSlashing applies the slashing penalty and whistleblower
// reward to a validated ProposerSlashing. Callers must call
// VerifyProposerSlashing first; the signature sets for both headers
// are extracted separately via ExtractProposerSlashingSignatureSets.
func ProcessProposerSlashing(st *state.CachedBeaconState, ps *rawblocks.ProposerSlashing) error {
	proposerIndex, err := expectedProposerIndex(st)
	if err != nil {
		return err
	}
	return SlashValidator(st, ps.Header1.Header.ProposerIndex, proposerIndex)
}

// ExtractProposerSlashingSignatureSets builds the two signature sets
// (one per signed header) a proposer slashing contributes to the
// driver's batch.
func ExtractProposerSlashingSignatureSets(st *state.CachedBeaconState, ps *rawblocks.ProposerSlashing, genesisValidatorsRoot [32]byte) (*bls.SignatureSet, error) {
	v, err := st.ValidatorAtIndex(ps.Header1.Header.ProposerIndex)
	if err != nil {
		return nil, err
	}
	pubkey, err := bls.PublicKeyFromBytes(v.PublicKey[:])
	if err != nil {
		return nil, err
	}

	domain := signing.ComputeDomain(st.Config().DomainBeaconProposer, currentForkVersion(st), st.GenesisValidatorsRoot())

	set := bls.NewSet()
	headers := []struct {
		label string
		h     rawblocks.SignedBeaconBlockHeader
	}{
		{"proposer-slashing-1", ps.Header1},
		{"proposer-slashing-2", ps.Header2},
	}
	for _, entry := range headers {
		objectRoot, err := blockHeaderRoot(&entry.h.Header)
		if err != nil {
			return nil, err
		}
		signingRoot := signing.ComputeSigningRoot(objectRoot, domain)
		set.Append(entry.label, signingRoot, pubkey, entry.h.Signature[:])
	}
	return set, nil
}
