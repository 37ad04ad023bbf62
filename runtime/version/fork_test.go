package version_test

import (
	"testing"

	"github.com/eth-clients/beaconstf/runtime/version"
	"github.com/stretchr/testify/assert"
)

func TestForkString(t *testing.T) {
	assert.Equal(t, "phase0", version.Phase0.String())
	assert.Equal(t, "altair", version.Altair.String())
	assert.Equal(t, "bellatrix", version.Bellatrix.String())
	assert.Equal(t, "unknown", version.Fork(99).String())
}

func TestForkOrdering(t *testing.T) {
	assert.True(t, version.Altair > version.Phase0)
	assert.True(t, version.Bellatrix > version.Altair)
}
