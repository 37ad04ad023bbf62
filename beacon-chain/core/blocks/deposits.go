package blocks

import (
	"crypto/sha256"

	"github.com/eth-clients/beaconstf/beacon-chain/core/signing"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	"github.com/eth-clients/beaconstf/crypto/bls"
	"github.com/pkg/errors"
)

// VerifyDeposit checks the deposit's Merkle proof against the
// eth1 deposit root the state has already voted in.
func VerifyDeposit(st *state.CachedBeaconState, dep *rawblocks.Deposit, index uint64) error {
	leaf := depositDataRoot(&dep.Data)
	if !verifyMerkleProof(leaf, dep.Proof, index, st.Eth1Data().DepositRoot) {
		return errors.New("blocks: deposit Merkle proof does not verify against eth1 deposit root")
	}
	return nil
}

// ProcessDeposit applies a verified deposit: appending a new
// validator if the pubkey is unseen, or crediting an existing one's
// balance. A deposit with an invalid signature is accepted but
// produces no balance credit for a *new* validator only —
// process_deposit in the consensus spec treats a bad signature on a
// first-seen pubkey as "ignore the deposit, don't fail the block",
// reflecting that deposits are proven by Merkle inclusion, not by
// their own signature, once seen; the signature only gates whether a
// brand new registry entry is trustworthy enough to create.
func ProcessDeposit(st *state.CachedBeaconState, dep *rawblocks.Deposit) error {
	if err := st.SetEth1DepositIndex(st.Eth1DepositIndex() + 1); err != nil {
		return err
	}

	pubkey := dep.Data.PublicKey
	if existing, ok := st.PubkeyToIndex(pubkey); ok {
		return st.IncreaseBalance(existing, dep.Data.Amount)
	}

	if !verifyDepositSignature(dep) {
		return nil
	}

	cfg := st.Config()
	effective := dep.Data.Amount - (dep.Data.Amount % cfg.EffectiveBalanceIncrement)
	if effective > cfg.MaxEffectiveBalance {
		effective = cfg.MaxEffectiveBalance
	}
	v := &rawblocks.Validator{
		PublicKey:                  pubkey,
		WithdrawalCredentials:      dep.Data.WithdrawalCredentials,
		EffectiveBalance:           effective,
		ActivationEligibilityEpoch: cfg.FarFutureEpoch,
		ActivationEpoch:            cfg.FarFutureEpoch,
		ExitEpoch:                  cfg.FarFutureEpoch,
		WithdrawableEpoch:          cfg.FarFutureEpoch,
	}
	_, err := st.AppendValidator(v, dep.Data.Amount)
	return err
}

func verifyDepositSignature(dep *rawblocks.Deposit) bool {
	pubkey, err := bls.PublicKeyFromBytes(dep.Data.PublicKey[:])
	if err != nil {
		return false
	}
	domain := signing.ComputeDomain(depositDomainType, genesisForkVersion, [32]byte{})
	objectRoot := depositMessageRoot(&dep.Data)
	signingRoot := signing.ComputeSigningRoot(objectRoot, domain)

	set := bls.NewSet()
	set.Append("deposit", signingRoot, pubkey, dep.Data.Signature[:])
	ok, err := set.Verify()
	return err == nil && ok
}

var (
	depositDomainType  = [4]byte{0x03, 0x00, 0x00, 0x00}
	genesisForkVersion = [4]byte{0x00, 0x00, 0x00, 0x00}
)

func depositDataRoot(d *rawblocks.DepositData) [32]byte {
	hh := sha256.New()
	hh.Write(d.PublicKey[:])
	hh.Write(d.WithdrawalCredentials[:])
	var amountBuf [8]byte
	putUint64LE(amountBuf[:], d.Amount)
	hh.Write(amountBuf[:])
	hh.Write(d.Signature[:])
	var out [32]byte
	copy(out[:], hh.Sum(nil))
	return out
}

// depositMessageRoot hashes the deposit message (everything but the
// signature), the object root the deposit signature itself is
// computed over.
func depositMessageRoot(d *rawblocks.DepositData) [32]byte {
	hh := sha256.New()
	hh.Write(d.PublicKey[:])
	hh.Write(d.WithdrawalCredentials[:])
	var amountBuf [8]byte
	putUint64LE(amountBuf[:], d.Amount)
	hh.Write(amountBuf[:])
	var out [32]byte
	copy(out[:], hh.Sum(nil))
	return out
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// verifyMerkleProof checks leaf's Merkle branch against root, walking
// up the tree one proof element per level and using the bits of the
// leaf index to decide left/right order. No length mix-in is applied;
// the proof's final element must already account for it.
func verifyMerkleProof(leaf [32]byte, proof [][32]byte, index uint64, root [32]byte) bool {
	node := leaf
	for i, branch := range proof {
		if (index>>uint(i))&1 == 1 {
			node = sha256.Sum256(append(branch[:], node[:]...))
		} else {
			node = sha256.Sum256(append(node[:], branch[:]...))
		}
	}
	return node == root
}
