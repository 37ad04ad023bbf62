package state

import "fmt"

// IndexOutOfRangeError reports a registry/list access past its
// current length.
type IndexOutOfRangeError struct {
	Op     string
	Index  uint64
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("state: %s: index %d out of range [0, %d)", e.Op, e.Index, e.Length)
}

func indexOutOfRangeErr(op string, index uint64, length int) error {
	return &IndexOutOfRangeError{Op: op, Index: index, Length: length}
}

// DuplicateValidatorError reports an attempt to append a pubkey
// already present in the registry.
type DuplicateValidatorError struct {
	PublicKey [48]byte
}

func (e *DuplicateValidatorError) Error() string {
	return fmt.Sprintf("state: validator with pubkey %x already registered", e.PublicKey)
}

func duplicateValidatorErr(pubkey [48]byte) error {
	return &DuplicateValidatorError{PublicKey: pubkey}
}
