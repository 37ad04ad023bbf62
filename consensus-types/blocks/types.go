// Package blocks defines the wire types the state transition function
// consumes: beacon blocks, their bodies, and the operations they carry.
package blocks

import (
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
)

// Fork records the previous/current fork versions and the epoch at
// which the switch occurred.
type Fork struct {
	PreviousVersion [4]byte
	CurrentVersion  [4]byte
	Epoch           types.Epoch
}

// Checkpoint pins a root to the epoch boundary slot it represents.
type Checkpoint struct {
	Epoch types.Epoch
	Root  [32]byte
}

// Eth1Data is the deposit-contract vote carried by a block.
type Eth1Data struct {
	DepositRoot  [32]byte
	DepositCount uint64
	BlockHash    [32]byte
}

// BeaconBlockHeader is the summary of a block cached in state.
type BeaconBlockHeader struct {
	Slot          types.Slot
	ProposerIndex types.ValidatorIndex
	ParentRoot    [32]byte
	StateRoot     [32]byte
	BodyRoot      [32]byte
}

// Validator is a registry entry. Pubkey and WithdrawalCredentials are
// immutable once appended; EffectiveBalance lives here but Balance
// (the raw deposit-tracking balance) is stored separately in state.
type Validator struct {
	PublicKey                 [48]byte
	WithdrawalCredentials     [32]byte
	EffectiveBalance          uint64
	Slashed                   bool
	ActivationEligibilityEpoch types.Epoch
	ActivationEpoch           types.Epoch
	ExitEpoch                 types.Epoch
	WithdrawableEpoch         types.Epoch
}

// AttestationData is the vote body an attestation carries.
type AttestationData struct {
	Slot            types.Slot
	CommitteeIndex  uint64
	BeaconBlockRoot [32]byte
	Source          Checkpoint
	Target          Checkpoint
}

// Attestation is an aggregated vote plus the committee bitlist that
// produced it.
type Attestation struct {
	AggregationBits []byte
	Data            AttestationData
	Signature       [96]byte
}

// IndexedAttestation names the attesting indices directly, used by
// attester-slashing detection.
type IndexedAttestation struct {
	AttestingIndices []types.ValidatorIndex
	Data             AttestationData
	Signature        [96]byte
}

// SignedVoluntaryExit is a validator's signed request to leave the
// active set.
type SignedVoluntaryExit struct {
	Epoch          types.Epoch
	ValidatorIndex types.ValidatorIndex
	Signature      [96]byte
}

// DepositData is the deposit-contract log entry a Deposit proves
// inclusion of.
type DepositData struct {
	PublicKey             [48]byte
	WithdrawalCredentials [32]byte
	Amount                uint64
	Signature             [96]byte
}

// Deposit carries a Merkle proof of DepositData's inclusion in the
// eth1 deposit tree.
type Deposit struct {
	Proof [][32]byte
	Data  DepositData
}

// ProposerSlashing proves a proposer double-signed at the same slot.
type ProposerSlashing struct {
	Header1 SignedBeaconBlockHeader
	Header2 SignedBeaconBlockHeader
}

// SignedBeaconBlockHeader pairs a header with its proposer signature.
type SignedBeaconBlockHeader struct {
	Header    BeaconBlockHeader
	Signature [96]byte
}

// AttesterSlashing proves two attestations violate a slashing
// condition (double vote or surround vote).
type AttesterSlashing struct {
	Attestation1 IndexedAttestation
	Attestation2 IndexedAttestation
}

// SyncAggregate is the Altair+ sync-committee aggregate carried in a
// block body.
type SyncAggregate struct {
	SyncCommitteeBits      []byte
	SyncCommitteeSignature [96]byte
}

// SyncCommittee is the registered set of sync-committee pubkeys and
// their pubkey-aggregate buckets.
type SyncCommittee struct {
	Pubkeys         [][48]byte
	AggregatePubkeys [][48]byte
}

// ExecutionPayloadHeader is the Bellatrix+ header summarizing the
// execution-layer payload a block carries.
type ExecutionPayloadHeader struct {
	ParentHash       [32]byte
	FeeRecipient     [20]byte
	StateRoot        [32]byte
	ReceiptsRoot     [32]byte
	LogsBloom        [256]byte
	PrevRandao       [32]byte
	BlockNumber      uint64
	GasLimit         uint64
	GasUsed          uint64
	Timestamp        uint64
	ExtraData        []byte
	BaseFeePerGas    [32]byte
	BlockHash        [32]byte
	TransactionsRoot [32]byte
}

// BeaconBlockBody carries the operations a block applies to state.
// Fields added by later forks are zero-valued/nil in earlier ones;
// the block processor consults state.Version() before reading them.
type BeaconBlockBody struct {
	RandaoReveal      [96]byte
	Eth1Data          Eth1Data
	Graffiti          [32]byte
	ProposerSlashings []ProposerSlashing
	AttesterSlashings []AttesterSlashing
	Attestations      []Attestation
	Deposits          []Deposit
	VoluntaryExits    []SignedVoluntaryExit

	// Altair+.
	SyncAggregate *SyncAggregate

	// Bellatrix+.
	ExecutionPayload *ExecutionPayloadHeader
}

// BeaconBlock is the unsigned block message.
type BeaconBlock struct {
	Slot          types.Slot
	ProposerIndex types.ValidatorIndex
	ParentRoot    [32]byte
	StateRoot     [32]byte
	Body          BeaconBlockBody
}

// SignedBeaconBlock pairs a block with its proposer signature.
type SignedBeaconBlock struct {
	Block     BeaconBlock
	Signature [96]byte
}
