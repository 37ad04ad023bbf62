package helpers_test

import (
	"testing"

	"github.com/eth-clients/beaconstf/beacon-chain/core/helpers"
	"github.com/eth-clients/beaconstf/config/params"
	"github.com/stretchr/testify/assert"
)

func TestEffectiveBalanceForHysteresis(t *testing.T) {
	cfg := params.BeaconConfig()

	// Balance within the hysteresis dead zone: effective balance holds.
	held := helpers.EffectiveBalanceForHysteresis(cfg, 31800000000, 32000000000)
	assert.Equal(t, uint64(32000000000), held)

	// Balance drops far enough to cross the downward threshold.
	dropped := helpers.EffectiveBalanceForHysteresis(cfg, 30000000000, 32000000000)
	assert.Equal(t, uint64(30000000000), dropped)

	// Effective balance never exceeds MAX_EFFECTIVE_BALANCE.
	capped := helpers.EffectiveBalanceForHysteresis(cfg, 40000000000, 0)
	assert.Equal(t, cfg.MaxEffectiveBalance, capped)
}
