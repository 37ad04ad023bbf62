package params_test

import (
	"testing"

	"github.com/eth-clients/beaconstf/config/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainnetDefaults(t *testing.T) {
	cfg := params.Mainnet()
	require.Equal(t, uint64(12), cfg.SecondsPerSlot)
	require.Equal(t, uint64(32), uint64(cfg.SlotsPerEpoch))
	assert.Equal(t, uint64(32000000000), cfg.MaxEffectiveBalance)
}

func TestOverrideBeaconConfig(t *testing.T) {
	original := params.BeaconConfig()
	defer params.OverrideBeaconConfig(original)

	scenario := params.Mainnet()
	scenario.AltairForkEpoch = 1
	params.OverrideBeaconConfig(scenario)

	assert.Equal(t, scenario, params.BeaconConfig())
	assert.NotEqual(t, original.AltairForkEpoch, params.BeaconConfig().AltairForkEpoch)
}
