package blocks

import (
	"github.com/eth-clients/beaconstf/beacon-chain/core/epoch/precompute"
	"github.com/eth-clients/beaconstf/beacon-chain/core/helpers"
	"github.com/eth-clients/beaconstf/beacon-chain/core/signing"
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	"github.com/eth-clients/beaconstf/config/params"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	rawstate "github.com/eth-clients/beaconstf/consensus-types/state"
	"github.com/eth-clients/beaconstf/crypto/bls"
	"github.com/eth-clients/beaconstf/runtime/version"
	"github.com/pkg/errors"
)

// VerifyAttestation checks an attestation's slot/target/committee
// consistency ahead of signature verification and state mutation.
func VerifyAttestation(st *state.CachedBeaconState, att *rawblocks.Attestation) error {
	data := att.Data
	currentEpoch := btime.CurrentEpoch(st.Slot())
	previousEpoch := btime.PrevEpoch(st.Slot())

	if data.Target.Epoch != currentEpoch && data.Target.Epoch != previousEpoch {
		return errors.New("blocks: attestation target epoch not current or previous")
	}
	if data.Target.Epoch != btime.CurrentEpoch(data.Slot) {
		return errors.New("blocks: attestation target epoch does not match data slot's epoch")
	}

	cfg := st.Config()
	minInclusion := types.Slot(1)
	if data.Slot+minInclusion > st.Slot() {
		return errors.New("blocks: attestation included too early")
	}
	if st.Slot() > data.Slot+cfg.SlotsPerEpoch {
		return errors.New("blocks: attestation included too late")
	}

	committee, err := helpers.BeaconCommittee(st, data.Slot, data.CommitteeIndex)
	if err != nil {
		return err
	}
	if bitlistLen(att.AggregationBits) != (len(committee)+7)/8*8 {
		return errors.New("blocks: attestation aggregation bits length does not match committee size")
	}
	return nil
}

func bitlistLen(bits []byte) int {
	// A packed SSZ bitlist's logical length is byte-length*8 minus
	// the trailing-bit padding marker; here AggregationBits is stored
	// pre-sized to the committee with no marker bit, so the check above
	// compares this byte-rounded length with the committee size rounded
	// up to a whole byte.
	return len(bits) * 8
}

// ProcessAttestation records the attestation for epoch-boundary
// bookkeeping: a PendingAttestation entry pre-Altair, or an
// immediate participation-flag update Altair onward.
func ProcessAttestation(st *state.CachedBeaconState, att *rawblocks.Attestation, proposerIndex types.ValidatorIndex) error {
	if st.Version() == version.Phase0 {
		return processAttestationPhase0(st, att, proposerIndex)
	}
	return processAttestationAltair(st, att)
}

func processAttestationPhase0(st *state.CachedBeaconState, att *rawblocks.Attestation, proposerIndex types.ValidatorIndex) error {
	pending := rawstate.PendingAttestation{
		AggregationBits: append([]byte(nil), att.AggregationBits...),
		Data:            att.Data,
		InclusionDelay:  st.Slot().SubSlot(att.Data.Slot),
		ProposerIndex:   proposerIndex,
	}
	return st.AppendCurrentEpochAttestation(pending)
}

func processAttestationAltair(st *state.CachedBeaconState, att *rawblocks.Attestation) error {
	cfg := st.Config()
	flags, err := participationFlags(st, att, cfg)
	if err != nil {
		return err
	}

	indices, err := helpers.AttestingIndices(st, att)
	if err != nil {
		return err
	}
	for _, idx := range indices {
		if err := st.UpdateParticipationFlagsAtIndex(idx, flags); err != nil {
			return err
		}
	}
	return nil
}

// participationFlags computes the OR of the timely-source,
// timely-target, and timely-head flag bits the attestation earns,
// per get_attestation_participation_flag_indices: each flag requires
// the previous one's match plus its own root/delay condition.
func participationFlags(st *state.CachedBeaconState, att *rawblocks.Attestation, cfg *params.BeaconChainConfig) (byte, error) {
	currentEpoch := btime.CurrentEpoch(st.Slot())
	justified := st.CurrentJustifiedCheckpoint()
	if att.Data.Target.Epoch != currentEpoch {
		justified = st.PreviousJustifiedCheckpoint()
	}
	isMatchingSource := att.Data.Source == justified

	targetRoot, err := precompute.BlockRootAtSlot(st, btime.StartSlot(att.Data.Target.Epoch))
	if err != nil {
		return 0, err
	}
	isMatchingTarget := isMatchingSource && att.Data.Target.Root == targetRoot

	headRoot, err := precompute.BlockRootAtSlot(st, att.Data.Slot)
	if err != nil {
		return 0, err
	}
	isMatchingHead := isMatchingTarget && att.Data.BeaconBlockRoot == headRoot

	inclusionDelay := st.Slot().SubSlot(att.Data.Slot)
	sqrtSlotsPerEpoch := integerSqrtSlots(uint64(cfg.SlotsPerEpoch))

	var flags byte
	if isMatchingSource && uint64(inclusionDelay) <= sqrtSlotsPerEpoch {
		flags |= 1 << cfg.TimelySourceFlagIndex
	}
	if isMatchingTarget && uint64(inclusionDelay) <= uint64(cfg.SlotsPerEpoch) {
		flags |= 1 << cfg.TimelyTargetFlagIndex
	}
	if isMatchingHead && inclusionDelay == 1 {
		flags |= 1 << cfg.TimelyHeadFlagIndex
	}
	return flags, nil
}

func integerSqrtSlots(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

// ExtractAttestationSignatureSet builds the signature set for a
// single attestation's aggregate signature.
func ExtractAttestationSignatureSet(st *state.CachedBeaconState, att *rawblocks.Attestation, genesisValidatorsRoot [32]byte, label string) (*bls.SignatureSet, error) {
	indices, err := helpers.AttestingIndices(st, att)
	if err != nil {
		return nil, err
	}
	pubkeys := make([]bls.PublicKey, 0, len(indices))
	for _, idx := range indices {
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

	domain := signing.ComputeDomain(st.Config().DomainBeaconAttester, currentForkVersion(st), genesisValidatorsRoot)
	objectRoot := attestationDataRoot(&att.Data)
	signingRoot := signing.ComputeSigningRoot(objectRoot, domain)

	set := bls.NewSet()
	set.Append(label, signingRoot, aggregate, att.Signature[:])
	return set, nil
}
