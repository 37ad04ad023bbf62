package blocks

import (
	"crypto/sha256"

	"github.com/eth-clients/beaconstf/beacon-chain/core/signing"
	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	"github.com/eth-clients/beaconstf/crypto/bls"
)

// ProcessRandao mixes the block's RANDAO reveal into the current
// epoch's randao mix slot. The reveal's signature is collected into
// a batch set, not verified here.
func ProcessRandao(st *state.CachedBeaconState, body *rawblocks.BeaconBlockBody) error {
	epoch := btime.CurrentEpoch(st.Slot())
	mixes := st.RandaoMixes()
	idx := uint64(epoch) % uint64(len(mixes))

	current := mixes[idx]
	revealHash := sha256.Sum256(body.RandaoReveal[:])
	var mixed [32]byte
	for i := range mixed {
		mixed[i] = current[i] ^ revealHash[i]
	}
	return st.UpdateRandaoMixAtIndex(idx, mixed)
}

// ExtractRandaoSignatureSet builds the signature set for the
// proposer's RANDAO reveal: a signature over the current epoch
// number under the RANDAO domain.
func ExtractRandaoSignatureSet(st *state.CachedBeaconState, body *rawblocks.BeaconBlockBody, proposerIndex uint64, genesisValidatorsRoot [32]byte) (*bls.SignatureSet, error) {
	v, err := st.ValidatorAtIndex(validatorIndexFromUint64(proposerIndex))
	if err != nil {
		return nil, err
	}
	pubkey, err := bls.PublicKeyFromBytes(v.PublicKey[:])
	if err != nil {
		return nil, err
	}

	epoch := btime.CurrentEpoch(st.Slot())
	domain := signing.ComputeDomain(st.Config().DomainRandao, currentForkVersion(st), genesisValidatorsRoot)
	objectRoot := epochObjectRoot(epoch)
	signingRoot := signing.ComputeSigningRoot(objectRoot, domain)

	set := bls.NewSet()
	set.Append("randao", signingRoot, pubkey, body.RandaoReveal[:])
	return set, nil
}
