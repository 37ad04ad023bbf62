package transition

import "fmt"

// SlotInPastError reports an attempt to advance the state to a slot
// strictly behind its current slot.
type SlotInPastError struct {
	Current, Requested uint64
}

func (e *SlotInPastError) Error() string {
	return fmt.Sprintf("transition: requested slot %d is behind current slot %d", e.Requested, e.Current)
}

// InvalidBlockSignatureError reports a block whose batched signature
// verification failed; Label names the first failing set (proposer,
// randao, or an operation's).
type InvalidBlockSignatureError struct {
	Label string
}

func (e *InvalidBlockSignatureError) Error() string {
	return fmt.Sprintf("transition: invalid signature in batch (first failing label: %s)", e.Label)
}

// InvalidStateRootError reports a block whose claimed post-state root
// does not match the state actually produced.
type InvalidStateRootError struct {
	Expected, Actual [32]byte
}

func (e *InvalidStateRootError) Error() string {
	return fmt.Sprintf("transition: block state root %x does not match computed post-state root %x", e.Expected, e.Actual)
}
