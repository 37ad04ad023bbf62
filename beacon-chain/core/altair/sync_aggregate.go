package altair

import (
	"github.com/eth-clients/beaconstf/beacon-chain/core/signing"
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/eth-clients/beaconstf/crypto/bls"
	"github.com/pkg/errors"
)

// VerifySyncAggregate checks the aggregate's participation bitvector
// is sized to the committee.
func VerifySyncAggregate(st *state.CachedBeaconState, agg *rawblocks.SyncAggregate) error {
	committee := st.CurrentSyncCommittee()
	if committee == nil {
		return errors.New("altair: state has no current sync committee")
	}
	if len(agg.SyncCommitteeBits)*8 < len(committee.Pubkeys) {
		return errors.New("altair: sync committee bits too short for committee size")
	}
	return nil
}

// ProcessSyncAggregate rewards participating sync-committee members
// and the block proposer for including them, and penalizes absent
// members via the same balance-delta math rewards/penalties use.
func ProcessSyncAggregate(st *state.CachedBeaconState, agg *rawblocks.SyncAggregate, proposerIndex types.ValidatorIndex) error {
	committee := st.CurrentSyncCommittee()
	cfg := st.Config()
	epoch := btime.CurrentEpoch(st.Slot())
	totalActiveBalance := totalActiveBalanceFor(st, epoch)

	participantReward := (totalActiveBalance / cfg.EffectiveBalanceIncrement) * cfg.SyncRewardWeight / (cfg.WeightDenominator * cfg.SyncCommitteeSize) * cfg.EffectiveBalanceIncrement / cfg.BaseRewardsPerEpoch

	proposerRewardShare := cfg.ProposerWeight * cfg.WeightDenominator / (cfg.WeightDenominator - cfg.ProposerWeight)

	for i, pubkey := range committee.Pubkeys {
		idx, ok := st.PubkeyToIndex(pubkey)
		if !ok {
			continue
		}
		if bitSetAt(agg.SyncCommitteeBits, i) {
			if err := st.IncreaseBalance(idx, participantReward); err != nil {
				return err
			}
			proposerAmount := participantReward * proposerRewardShare / cfg.WeightDenominator
			if err := st.IncreaseBalance(proposerIndex, proposerAmount); err != nil {
				return err
			}
		} else {
			if err := st.DecreaseBalance(idx, participantReward); err != nil {
				return err
			}
		}
	}
	return nil
}

func totalActiveBalanceFor(st *state.CachedBeaconState, epoch types.Epoch) uint64 {
	cfg := st.Config()
	var total uint64
	for _, v := range st.Validators() {
		if v.ActivationEpoch <= epoch && epoch < v.ExitEpoch {
			total += v.EffectiveBalance
		}
	}
	if total < cfg.EffectiveBalanceIncrement {
		return cfg.EffectiveBalanceIncrement
	}
	return total
}

// ExtractSyncAggregateSignatureSet builds the signature set for the
// sync committee's aggregate signature over the previous slot's
// block root.
func ExtractSyncAggregateSignatureSet(st *state.CachedBeaconState, agg *rawblocks.SyncAggregate, blockRoot [32]byte, genesisValidatorsRoot [32]byte) (*bls.SignatureSet, error) {
	committee := st.CurrentSyncCommittee()
	if committee == nil {
		return nil, errors.New("altair: state has no current sync committee")
	}

	var participants []bls.PublicKey
	for i, pubkey := range committee.Pubkeys {
		if !bitSetAt(agg.SyncCommitteeBits, i) {
			continue
		}
		pk, err := bls.PublicKeyFromBytes(pubkey[:])
		if err != nil {
			return nil, err
		}
		participants = append(participants, pk)
	}
	if len(participants) == 0 {
		return bls.NewSet(), nil
	}
	aggregate, err := bls.AggregatePublicKeys(participants)
	if err != nil {
		return nil, err
	}

	domain := signing.ComputeDomain(st.Config().DomainSyncCommittee, st.Fork().CurrentVersion, genesisValidatorsRoot)
	signingRoot := signing.ComputeSigningRoot(blockRoot, domain)

	set := bls.NewSet()
	set.Append("sync-aggregate", signingRoot, aggregate, agg.SyncCommitteeSignature[:])
	return set, nil
}
