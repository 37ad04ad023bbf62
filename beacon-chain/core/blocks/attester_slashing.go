package blocks

import (
	"sort"

	"github.com/eth-clients/beaconstf/beacon-chain/core/helpers"
	"github.com/eth-clients/beaconstf/beacon-chain/core/signing"
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/eth-clients/beaconstf/crypto/bls"
	"github.com/pkg/errors"
)

// VerifyAttesterSlashing checks the two indexed attestations violate
// a slashing condition (double vote or surround vote) and are each
// internally well-formed (sorted, deduplicated attesting indices).
func VerifyAttesterSlashing(as *rawblocks.AttesterSlashing) error {
	a1, a2 := as.Attestation1, as.Attestation2
	if !isSlashableAttestationData(a1.Data, a2.Data) {
		return errors.New("blocks: attestations do not violate a slashing condition")
	}
	if err := verifySortedUnique(a1.AttestingIndices); err != nil {
		return errors.Wrap(err, "attestation 1")
	}
	if err := verifySortedUnique(a2.AttestingIndices); err != nil {
		return errors.Wrap(err, "attestation 2")
	}
	return nil
}

// isSlashableAttestationData reports a double vote (same target
// epoch, different data) or a surround vote (one attestation's
// source/target strictly surrounds the other's).
func isSlashableAttestationData(d1, d2 rawblocks.AttestationData) bool {
	doubleVote := d1 != d2 && d1.Target.Epoch == d2.Target.Epoch
	surround := d1.Source.Epoch < d2.Source.Epoch && d2.Target.Epoch < d1.Target.Epoch
	surroundOther := d2.Source.Epoch < d1.Source.Epoch && d1.Target.Epoch < d2.Target.Epoch
	return doubleVote || surround || surroundOther
}

func verifySortedUnique(indices []types.ValidatorIndex) error {
	if len(indices) == 0 {
		return errors.New("empty attesting indices")
	}
	if !sort.SliceIsSorted(indices, func(i, j int) bool { return indices[i] < indices[j] }) {
		return errors.New("attesting indices not sorted")
	}
	for i := 1; i < len(indices); i++ {
		if indices[i] == indices[i-1] {
			return errors.New("duplicate attesting index")
		}
	}
	return nil
}

// SlashableIndices returns the attesting indices present in both
// attestations, the validators process_attester_slashing actually
// slashes.
func SlashableIndices(as *rawblocks.AttesterSlashing) []types.ValidatorIndex {
	set := make(map[types.ValidatorIndex]bool, len(as.Attestation1.AttestingIndices))
	for _, idx := range as.Attestation1.AttestingIndices {
		set[idx] = true
	}
	var out []types.ValidatorIndex
	for _, idx := range as.Attestation2.AttestingIndices {
		if set[idx] {
			out = append(out, idx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ProcessAttesterSlashing slashes every validator named by both
// attestations that is still slashable at the current epoch.
func ProcessAttesterSlashing(st *state.CachedBeaconState, as *rawblocks.AttesterSlashing) error {
	epoch := btime.CurrentEpoch(st.Slot())
	slashedAny := false
	for _, idx := range SlashableIndices(as) {
		v, err := st.ValidatorAtIndex(idx)
		if err != nil {
			return err
		}
		if !helpers.IsSlashableValidator(v.Slashed, v.WithdrawableEpoch, epoch) {
			continue
		}
		proposerIndex, err := expectedProposerIndex(st)
		if err != nil {
			return err
		}
		if err := SlashValidator(st, idx, proposerIndex); err != nil {
			return err
		}
		slashedAny = true
	}
	if !slashedAny {
		return errors.New("blocks: attester slashing slashed no validators")
	}
	return nil
}

// ExtractAttesterSlashingSignatureSets builds the two signature sets
// (one per indexed attestation) an attester slashing contributes to
// the driver's batch.
func ExtractAttesterSlashingSignatureSets(st *state.CachedBeaconState, as *rawblocks.AttesterSlashing, genesisValidatorsRoot [32]byte) (*bls.SignatureSet, error) {
	set := bls.NewSet()
	for label, ia := range map[string]rawblocks.IndexedAttestation{"attester-slashing-1": as.Attestation1, "attester-slashing-2": as.Attestation2} {
		s, err := indexedAttestationSignatureSet(st, &ia, genesisValidatorsRoot, label)
		if err != nil {
			return nil, err
		}
		set.Join(s)
	}
	return set, nil
}

func indexedAttestationSignatureSet(st *state.CachedBeaconState, ia *rawblocks.IndexedAttestation, genesisValidatorsRoot [32]byte, label string) (*bls.SignatureSet, error) {
	domain := signing.ComputeDomain(st.Config().DomainBeaconAttester, currentForkVersion(st), genesisValidatorsRoot)
	objectRoot := attestationDataRoot(&ia.Data)
	signingRoot := signing.ComputeSigningRoot(objectRoot, domain)

	pubkeys := make([]bls.PublicKey, 0, len(ia.AttestingIndices))
	for _, idx := range ia.AttestingIndices {
		v, err := st.ValidatorAtIndex(idx)
		if err != nil {
			return nil, err
		}
		pubkey, err := bls.PublicKeyFromBytes(v.PublicKey[:])
		if err != nil {
			return nil, err
		}
		pubkeys = append(pubkeys, pubkey)
	}
	aggregate, err := bls.AggregatePublicKeys(pubkeys)
	if err != nil {
		return nil, err
	}

	set := bls.NewSet()
	set.Append(label, signingRoot, aggregate, ia.Signature[:])
	return set, nil
}
