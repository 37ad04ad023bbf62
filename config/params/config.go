// Package params defines the consensus constants the state transition
// function reads: slot/epoch timing, balance thresholds, per-operation
// limits, and the fork-boundary epochs.
package params

import (
	"sync"

	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
)

// BeaconChainConfig mirrors the subset of the network's consensus
// constants that the STF consults. Field names match the spec's
// SCREAMING_SNAKE_CASE constants in CamelCase, the way the teacher's
// config/params/config.go does.
type BeaconChainConfig struct {
	// Time.
	SecondsPerSlot uint64
	SlotsPerEpoch  types.Slot
	GenesisSlot    types.Slot
	GenesisEpoch   types.Epoch
	FarFutureEpoch types.Epoch

	// History.
	SlotsPerHistoricalRoot     types.Slot
	EpochsPerHistoricalVector  types.Epoch
	EpochsPerSlashingsVector   types.Epoch
	HistoricalRootsLimit       uint64
	ValidatorRegistryLimit     uint64
	EpochsPerSyncCommitteePeriod types.Epoch

	// Balances.
	MaxEffectiveBalance        uint64
	EjectionBalance            uint64
	EffectiveBalanceIncrement  uint64
	HysteresisQuotient         uint64
	HysteresisDownwardMultiplier uint64
	HysteresisUpwardMultiplier   uint64

	// Rewards and penalties.
	BaseRewardFactor                    uint64
	BaseRewardsPerEpoch                 uint64
	WhistleBlowerRewardQuotient         uint64
	ProposerRewardQuotient              uint64
	InactivityPenaltyQuotient           uint64
	InactivityPenaltyQuotientAltair     uint64
	MinSlashingPenaltyQuotient          uint64
	MinSlashingPenaltyQuotientAltair    uint64
	ProportionalSlashingMultiplier      uint64
	ProportionalSlashingMultiplierAltair uint64
	MinEpochsToInactivityPenalty        types.Epoch
	InactivityScoreBias                 uint64
	InactivityScoreRecoveryRate         uint64

	// Registry updates.
	MinPerEpochChurnLimit uint64
	ChurnLimitQuotient    uint64
	ShardCommitteePeriod  types.Epoch
	MinValidatorWithdrawabilityDelay types.Epoch

	// Participation / sync committee weights (Altair+).
	TimelySourceWeight  uint64
	TimelyTargetWeight  uint64
	TimelyHeadWeight    uint64
	SyncRewardWeight    uint64
	ProposerWeight      uint64
	WeightDenominator   uint64
	SyncCommitteeSize   uint64
	TimelySourceFlagIndex uint8
	TimelyTargetFlagIndex uint8
	TimelyHeadFlagIndex   uint8

	// Operation limits.
	MaxProposerSlashings uint64
	MaxAttesterSlashings uint64
	MaxAttestations      uint64
	MaxDeposits          uint64
	MaxVoluntaryExits    uint64

	JustificationBitsLength uint64

	// Fork schedule.
	GenesisForkVersion    [4]byte
	AltairForkVersion     [4]byte
	BellatrixForkVersion  [4]byte
	AltairForkEpoch       types.Epoch
	BellatrixForkEpoch    types.Epoch

	// Domains.
	DomainBeaconProposer [4]byte
	DomainBeaconAttester [4]byte
	DomainRandao         [4]byte
	DomainVoluntaryExit  [4]byte
	DomainDeposit        [4]byte
	DomainSyncCommittee  [4]byte

	ZeroHash [32]byte
}

// Mainnet returns the production constant set. Values match the
// Ethereum mainnet consensus spec.
func Mainnet() *BeaconChainConfig {
	return &BeaconChainConfig{
		SecondsPerSlot:               12,
		SlotsPerEpoch:                32,
		GenesisSlot:                  0,
		GenesisEpoch:                 0,
		FarFutureEpoch:               types.Epoch(1<<64 - 1),
		SlotsPerHistoricalRoot:       8192,
		EpochsPerHistoricalVector:    65536,
		EpochsPerSlashingsVector:     8192,
		HistoricalRootsLimit:         16777216,
		ValidatorRegistryLimit:       1099511627776,
		EpochsPerSyncCommitteePeriod: 256,

		MaxEffectiveBalance:          32000000000,
		EjectionBalance:              16000000000,
		EffectiveBalanceIncrement:    1000000000,
		HysteresisQuotient:           4,
		HysteresisDownwardMultiplier: 1,
		HysteresisUpwardMultiplier:   5,

		BaseRewardFactor:                     64,
		BaseRewardsPerEpoch:                  4,
		WhistleBlowerRewardQuotient:          512,
		ProposerRewardQuotient:               8,
		InactivityPenaltyQuotient:            1 << 26,
		InactivityPenaltyQuotientAltair:      3 * (1 << 24),
		MinSlashingPenaltyQuotient:           128,
		MinSlashingPenaltyQuotientAltair:     64,
		ProportionalSlashingMultiplier:       1,
		ProportionalSlashingMultiplierAltair: 2,
		MinEpochsToInactivityPenalty:         4,
		InactivityScoreBias:                  4,
		InactivityScoreRecoveryRate:          16,

		MinPerEpochChurnLimit:            4,
		ChurnLimitQuotient:               65536,
		ShardCommitteePeriod:             256,
		MinValidatorWithdrawabilityDelay: 256,

		TimelySourceWeight:    14,
		TimelyTargetWeight:    26,
		TimelyHeadWeight:      14,
		SyncRewardWeight:      2,
		ProposerWeight:        8,
		WeightDenominator:     64,
		SyncCommitteeSize:     512,
		TimelySourceFlagIndex: 0,
		TimelyTargetFlagIndex: 1,
		TimelyHeadFlagIndex:   2,

		MaxProposerSlashings: 16,
		MaxAttesterSlashings: 2,
		MaxAttestations:      128,
		MaxDeposits:          16,
		MaxVoluntaryExits:    16,

		JustificationBitsLength: 4,

		GenesisForkVersion:   [4]byte{0x00, 0x00, 0x00, 0x00},
		AltairForkVersion:    [4]byte{0x01, 0x00, 0x00, 0x00},
		BellatrixForkVersion: [4]byte{0x02, 0x00, 0x00, 0x00},
		AltairForkEpoch:      74240,
		BellatrixForkEpoch:   144896,

		DomainBeaconProposer: [4]byte{0x00, 0x00, 0x00, 0x00},
		DomainBeaconAttester: [4]byte{0x01, 0x00, 0x00, 0x00},
		DomainRandao:         [4]byte{0x02, 0x00, 0x00, 0x00},
		DomainVoluntaryExit:  [4]byte{0x04, 0x00, 0x00, 0x00},
		DomainDeposit:        [4]byte{0x03, 0x00, 0x00, 0x00},
		DomainSyncCommittee:  [4]byte{0x07, 0x00, 0x00, 0x00},
	}
}

var (
	beaconConfigLock sync.RWMutex
	beaconConfig     = Mainnet()
)

// BeaconConfig returns the currently active config. Safe for
// concurrent reads; callers must not mutate the returned pointer.
func BeaconConfig() *BeaconChainConfig {
	beaconConfigLock.RLock()
	defer beaconConfigLock.RUnlock()
	return beaconConfig
}

// OverrideBeaconConfig installs cfg as the active config. Intended for
// tests that need scenario-specific constants (e.g. an early
// ALTAIR_FORK_EPOCH); production callers should not call this after
// startup.
func OverrideBeaconConfig(cfg *BeaconChainConfig) {
	beaconConfigLock.Lock()
	defer beaconConfigLock.Unlock()
	beaconConfig = cfg
}
