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

// VerifyVoluntaryExit checks a validator's signed exit request is
// well-formed and currently permitted: the validator is active,
// hasn't already exited, has waited out its minimum activity period,
// and the exit's named epoch has arrived.
func VerifyVoluntaryExit(st *state.CachedBeaconState, exit *rawblocks.SignedVoluntaryExit) error {
	v, err := st.ValidatorAtIndex(exit.ValidatorIndex)
	if err != nil {
		return err
	}
	currentEpoch := btime.CurrentEpoch(st.Slot())
	cfg := st.Config()

	if !helpers.IsActiveValidator(v.ActivationEpoch, v.ExitEpoch, currentEpoch) {
		return errors.New("blocks: validator is not active")
	}
	if v.ExitEpoch != cfg.FarFutureEpoch {
		return errors.New("blocks: validator has already initiated exit")
	}
	if currentEpoch < exit.Epoch {
		return errors.New("blocks: voluntary exit epoch has not arrived")
	}
	if currentEpoch < v.ActivationEpoch+cfg.ShardCommitteePeriod {
		return errors.New("blocks: validator has not been active long enough to exit")
	}
	return nil
}

// ProcessVoluntaryExit queues the named validator for exit.
func ProcessVoluntaryExit(st *state.CachedBeaconState, exit *rawblocks.SignedVoluntaryExit) error {
	return InitiateValidatorExit(st, exit.ValidatorIndex)
}

// ExtractVoluntaryExitSignatureSet builds the signature set for a
// voluntary exit's signature, keyed under the fork version active at
// the exit's named epoch (exits sign with the fork active when they
// become valid, not the fork active when included).
func ExtractVoluntaryExitSignatureSet(st *state.CachedBeaconState, exit *rawblocks.SignedVoluntaryExit, genesisValidatorsRoot [32]byte, label string) (*bls.SignatureSet, error) {
	v, err := st.ValidatorAtIndex(exit.ValidatorIndex)
	if err != nil {
		return nil, err
	}
	pubkey, err := bls.PublicKeyFromBytes(v.PublicKey[:])
	if err != nil {
		return nil, err
	}

	domain := signing.ComputeDomain(st.Config().DomainVoluntaryExit, forkVersionAtEpoch(st, exit.Epoch), genesisValidatorsRoot)
	objectRoot := voluntaryExitObjectRoot(exit)
	signingRoot := signing.ComputeSigningRoot(objectRoot, domain)

	set := bls.NewSet()
	set.Append(label, signingRoot, pubkey, exit.Signature[:])
	return set, nil
}
