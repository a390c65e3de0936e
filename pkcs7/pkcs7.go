// Package pkcs7 implements the PKCS#7 padding scheme used by CBC block-cipher
// modes: the last n bytes of the padded data all equal the value n, with
// 1 <= n <= blockSize.
package pkcs7

import (
	"bytes"
	"errors"
)

// ErrInvalidPadding is returned by Unpad when the data does not end in valid
// PKCS#7 padding.
var ErrInvalidPadding = errors.New("pkcs7: invalid padding")

// Pad returns buf extended with PKCS#7 padding to a multiple of blockSize.
// A buffer already at a block boundary gains a full block of padding.
func Pad(buf []byte, blockSize int) []byte {
	n := blockSize - len(buf)%blockSize
	return append(buf, bytes.Repeat([]byte{byte(n)}, n)...)
}

// Unpad returns buf with PKCS#7 padding removed.
func Unpad(buf []byte, blockSize int) ([]byte, error) {
	if len(buf) == 0 || len(buf)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	n := int(buf[len(buf)-1])
	if n == 0 || n > blockSize {
		return nil, ErrInvalidPadding
	}
	for _, b := range buf[len(buf)-n:] {
		if b != byte(n) {
			return nil, ErrInvalidPadding
		}
	}
	return buf[:len(buf)-n], nil
}

// Valid reports whether buf ends in valid PKCS#7 padding.
func Valid(buf []byte, blockSize int) bool {
	_, err := Unpad(buf, blockSize)
	return err == nil
}
