package blocks

import (
	"fmt"

	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	"github.com/eth-clients/beaconstf/crypto/bls"
	"github.com/pkg/errors"
)

// OperationLimitExceededError reports a block body carrying more of
// one operation kind than the config allows, caught by
// VerifyOperationLengths before any operation is processed.
type OperationLimitExceededError struct {
	Operation string
	Count     int
	Limit     uint64
}

func (e *OperationLimitExceededError) Error() string {
	return fmt.Sprintf("blocks: %s count %d exceeds limit %d", e.Operation, e.Count, e.Limit)
}

// VerifyOperationLengths runs the structural pre-flight check on a
// block body's operation counts, ahead of any per-operation
// validation or state mutation.
func VerifyOperationLengths(st *state.CachedBeaconState, body *rawblocks.BeaconBlockBody) error {
	cfg := st.Config()
	checks := []struct {
		name  string
		count int
		limit uint64
	}{
		{"proposer_slashings", len(body.ProposerSlashings), cfg.MaxProposerSlashings},
		{"attester_slashings", len(body.AttesterSlashings), cfg.MaxAttesterSlashings},
		{"attestations", len(body.Attestations), cfg.MaxAttestations},
		{"deposits", len(body.Deposits), cfg.MaxDeposits},
		{"voluntary_exits", len(body.VoluntaryExits), cfg.MaxVoluntaryExits},
	}
	for _, c := range checks {
		if uint64(c.count) > c.limit {
			return &OperationLimitExceededError{Operation: c.name, Count: c.count, Limit: c.limit}
		}
	}
	return nil
}

// ProcessOperations runs every operation kind in spec order —
// proposer slashings, attester slashings, attestations, deposits,
// voluntary exits — mutating state and accumulating the signature
// sets of slashings, attestations and exits for the driver's single
// batched verification. Deposit signatures are checked inline by
// ProcessDeposit and are not part of the batch.
func ProcessOperations(st *state.CachedBeaconState, signed *rawblocks.SignedBeaconBlock, proposerIndex uint64, genesisValidatorsRoot [32]byte) (*bls.SignatureSet, error) {
	body := &signed.Block.Body
	if err := VerifyOperationLengths(st, body); err != nil {
		return nil, err
	}

	sigs := bls.NewSet()

	for i := range body.ProposerSlashings {
		ps := &body.ProposerSlashings[i]
		if err := VerifyProposerSlashing(st, ps); err != nil {
			return nil, errors.Wrapf(err, "proposer slashing %d", i)
		}
		set, err := ExtractProposerSlashingSignatureSets(st, ps, genesisValidatorsRoot)
		if err != nil {
			return nil, err
		}
		sigs.Join(set)
		if err := ProcessProposerSlashing(st, ps); err != nil {
			return nil, errors.Wrapf(err, "proposer slashing %d", i)
		}
	}

	for i := range body.AttesterSlashings {
		as := &body.AttesterSlashings[i]
		if err := VerifyAttesterSlashing(as); err != nil {
			return nil, errors.Wrapf(err, "attester slashing %d", i)
		}
		set, err := ExtractAttesterSlashingSignatureSets(st, as, genesisValidatorsRoot)
		if err != nil {
			return nil, err
		}
		sigs.Join(set)
		if err := ProcessAttesterSlashing(st, as); err != nil {
			return nil, errors.Wrapf(err, "attester slashing %d", i)
		}
	}

	for i := range body.Attestations {
		att := &body.Attestations[i]
		if err := VerifyAttestation(st, att); err != nil {
			return nil, errors.Wrapf(err, "attestation %d", i)
		}
		set, err := ExtractAttestationSignatureSet(st, att, genesisValidatorsRoot, fmt.Sprintf("attestation[%d]", i))
		if err != nil {
			return nil, err
		}
		sigs.Join(set)
		if err := ProcessAttestation(st, att, validatorIndexFromUint64(proposerIndex)); err != nil {
			return nil, errors.Wrapf(err, "attestation %d", i)
		}
	}

	for i := range body.Deposits {
		dep := &body.Deposits[i]
		depositIndex := st.Eth1DepositIndex()
		if err := VerifyDeposit(st, dep, depositIndex); err != nil {
			return nil, errors.Wrapf(err, "deposit %d", i)
		}
		if err := ProcessDeposit(st, dep); err != nil {
			return nil, errors.Wrapf(err, "deposit %d", i)
		}
	}

	for i := range body.VoluntaryExits {
		exit := &body.VoluntaryExits[i]
		if err := VerifyVoluntaryExit(st, exit); err != nil {
			return nil, errors.Wrapf(err, "voluntary exit %d", i)
		}
		set, err := ExtractVoluntaryExitSignatureSet(st, exit, genesisValidatorsRoot, fmt.Sprintf("voluntary-exit[%d]", i))
		if err != nil {
			return nil, err
		}
		sigs.Join(set)
		if err := ProcessVoluntaryExit(st, exit); err != nil {
			return nil, errors.Wrapf(err, "voluntary exit %d", i)
		}
	}

	return sigs, nil
}
