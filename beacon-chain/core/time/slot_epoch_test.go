package time_test

import (
	"testing"

	btime "github.com/eth-clients/beaconstf/beacon-chain/core/time"
	"github.com/eth-clients/beaconstf/config/params"
	types "github.com/eth-clients/beaconstf/consensus-types/primitives"
	"github.com/eth-clients/beaconstf/runtime/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentEpoch(t *testing.T) {
	tests := []struct {
		slot  types.Slot
		epoch types.Epoch
	}{
		{slot: 0, epoch: 0},
		{slot: 31, epoch: 0},
		{slot: 32, epoch: 1},
		{slot: 64, epoch: 2},
		{slot: 200, epoch: 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.epoch, btime.CurrentEpoch(tt.slot), "CurrentEpoch(%d)", tt.slot)
	}
}

func TestPrevEpoch(t *testing.T) {
	cfg := params.BeaconConfig()
	tests := []struct {
		slot  types.Slot
		epoch types.Epoch
	}{
		{slot: 0, epoch: 0},
		{slot: types.Slot(cfg.SlotsPerEpoch) + 1, epoch: 0},
		{slot: types.Slot(cfg.SlotsPerEpoch) * 2, epoch: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.epoch, btime.PrevEpoch(tt.slot), "PrevEpoch(%d)", tt.slot)
	}
}

func TestNextEpoch(t *testing.T) {
	assert.Equal(t, types.Epoch(1), btime.NextEpoch(0))
	assert.Equal(t, types.Epoch(2), btime.NextEpoch(32))
}

func TestStartSlot(t *testing.T) {
	assert.Equal(t, types.Slot(0), btime.StartSlot(0))
	assert.Equal(t, types.Slot(32), btime.StartSlot(1))
	assert.Equal(t, types.Slot(320), btime.StartSlot(10))
}

func TestCanProcessEpoch(t *testing.T) {
	assert.False(t, btime.CanProcessEpoch(0))
	assert.True(t, btime.CanProcessEpoch(31))
	assert.False(t, btime.CanProcessEpoch(32))
	assert.True(t, btime.CanProcessEpoch(63))
}

func TestCanUpgradeToAltairAndBellatrix(t *testing.T) {
	cfg := params.BeaconConfig()
	cfgCopy := *cfg
	cfgCopy.AltairForkEpoch = 2
	cfgCopy.BellatrixForkEpoch = 4
	params.OverrideBeaconConfig(&cfgCopy)
	defer params.OverrideBeaconConfig(cfg)

	assert.False(t, btime.CanUpgradeToAltair(btime.StartSlot(1)))
	assert.True(t, btime.CanUpgradeToAltair(btime.StartSlot(2)))
	assert.False(t, btime.CanUpgradeToAltair(btime.StartSlot(2)+1))

	assert.True(t, btime.CanUpgradeToBellatrix(btime.StartSlot(4)))
	assert.False(t, btime.CanUpgradeToBellatrix(btime.StartSlot(3)))
}

func TestVersionAtEpoch(t *testing.T) {
	cfg := params.BeaconConfig()
	cfgCopy := *cfg
	cfgCopy.AltairForkEpoch = 10
	cfgCopy.BellatrixForkEpoch = 20
	params.OverrideBeaconConfig(&cfgCopy)
	defer params.OverrideBeaconConfig(cfg)

	require.Equal(t, version.Phase0, btime.VersionAtEpoch(0))
	require.Equal(t, version.Phase0, btime.VersionAtEpoch(9))
	require.Equal(t, version.Altair, btime.VersionAtEpoch(10))
	require.Equal(t, version.Altair, btime.VersionAtEpoch(19))
	require.Equal(t, version.Bellatrix, btime.VersionAtEpoch(20))
}
