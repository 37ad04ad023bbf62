package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageModeString(t *testing.T) {
	assert.Equal(t, "persistent", Persistent.String())
	assert.Equal(t, "transient", Transient.String())
	assert.Equal(t, "unknown", StorageMode(99).String())
}

func TestBadStateModeError(t *testing.T) {
	err := badMode("SetSlot", Transient, Persistent)
	assert.EqualError(t, err, "state: SetSlot requires transient mode, state is in persistent mode")
}
