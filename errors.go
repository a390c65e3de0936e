package paddingoracle

import (
	"errors"
	"fmt"
)

// ErrInvalidPadding is returned when no candidate value satisfies the oracle
// at some byte position. It signals a broken or non-deterministic oracle, or
// a padding scheme other than PKCS#7.
var ErrInvalidPadding = errors.New("couldn't decrypt the data: make sure the oracle is valid and that PKCS#7 padding is used")

// A WrongSizeError is returned when the ciphertext length is not a multiple
// of the block size. No oracle calls are made in that case.
type WrongSizeError struct {
	Blocksize int
	Found     int
}

func (e *WrongSizeError) Error() string {
	return fmt.Sprintf("invalid ciphertext size: the length should be a multiple of %d, but the length is %d", e.Blocksize, e.Found)
}
