package store

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// AddressSize is the length of a chunk address in bytes (SHA3-512 output).
const AddressSize = 64

// Address is the content address of a chunk: the SHA3-512 digest of its
// uncompressed bytes. Identical bytes always yield the identical
// address, across runs and platforms. Two chunks with the same address
// are assumed byte-identical; collisions are not handled.
type Address [AddressSize]byte

// SumAddress computes the address of data.
func SumAddress(data []byte) Address {
	return Address(sha3.Sum512(data))
}

// String returns the lowercase hex encoding (128 characters). Hex never
// contains the chunk-list delimiter, which keeps the persisted
// address-list encoding unambiguous.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// ParseAddress decodes a hex-encoded address.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrBadAddress, err)
	}
	if len(raw) != AddressSize {
		return a, fmt.Errorf("%w: got %d bytes, want %d", ErrBadAddress, len(raw), AddressSize)
	}
	copy(a[:], raw)
	return a, nil
}
