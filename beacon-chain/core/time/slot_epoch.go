// Package time converts between slots and epochs and answers the
// small scheduling questions ("is it time to run epoch processing",
// "which fork owns this epoch") that the slot and block processors
// consult on every call.
package time

import (
	"github.com/eth-clients/beaconstf/config/params"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/eth-clients/beaconstf/runtime/version"
)

// CurrentEpoch returns the epoch slot belongs to.
func CurrentEpoch(slot types.Slot) types.Epoch {
	cfg := params.BeaconConfig()
	return types.Epoch(uint64(slot) / uint64(cfg.SlotsPerEpoch))
}

// PrevEpoch returns the epoch before CurrentEpoch(slot), floored at
// the genesis epoch rather than underflowing.
func PrevEpoch(slot types.Slot) types.Epoch {
	cur := CurrentEpoch(slot)
	if cur == 0 {
		return 0
	}
	return cur - 1
}

// NextEpoch returns the epoch after CurrentEpoch(slot).
func NextEpoch(slot types.Slot) types.Epoch {
	return CurrentEpoch(slot) + 1
}

// StartSlot returns the first slot of epoch.
func StartSlot(epoch types.Epoch) types.Slot {
	cfg := params.BeaconConfig()
	return types.Slot(uint64(epoch) * uint64(cfg.SlotsPerEpoch))
}

// CanProcessEpoch reports whether slot is the last slot of its
// epoch, the boundary epoch processing runs on.
func CanProcessEpoch(slot types.Slot) bool {
	cfg := params.BeaconConfig()
	return (uint64(slot)+1)%uint64(cfg.SlotsPerEpoch) == 0
}

// CanUpgradeToAltair reports whether slot is the first slot of the
// Altair fork epoch, the one slot the upgrade runs on.
func CanUpgradeToAltair(slot types.Slot) bool {
	cfg := params.BeaconConfig()
	return CurrentEpoch(slot) == cfg.AltairForkEpoch && slot == StartSlot(cfg.AltairForkEpoch)
}

// CanUpgradeToBellatrix reports whether slot is the first slot of
// the Bellatrix fork epoch.
func CanUpgradeToBellatrix(slot types.Slot) bool {
	cfg := params.BeaconConfig()
	return CurrentEpoch(slot) == cfg.BellatrixForkEpoch && slot == StartSlot(cfg.BellatrixForkEpoch)
}

// VersionAtEpoch reports which fork's rules govern epoch.
func VersionAtEpoch(epoch types.Epoch) version.Fork {
	cfg := params.BeaconConfig()
	switch {
	case epoch >= cfg.BellatrixForkEpoch:
		return version.Bellatrix
	case epoch >= cfg.AltairForkEpoch:
		return version.Altair
	default:
		return version.Phase0
	}
}
