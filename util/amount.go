package util

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// AmountSize is the length in bytes of a serialized amount. Amounts have
// 128-bit semantics; the upper 128 bits of the backing integer are always
// zero for any value that is stored or returned.
const AmountSize = 16

// maxUint128 masks an arithmetic result down to 128 bits. Representation
// deltas wrap mod 2^128, which makes subtract-then-add sequences on the
// weight table order-independent.
var maxUint128 = func() *uint256.Int {
	max := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	return max.Sub(max, uint256.NewInt(1))
}()

// MaxSupply is the largest representable amount, 2^128-1. The genesis open
// block mints the entire supply.
func MaxSupply() *uint256.Int {
	return new(uint256.Int).Set(maxUint128)
}

// NewAmount returns a new amount holding the given small value.
func NewAmount(value uint64) *uint256.Int {
	return uint256.NewInt(value)
}

// AddAmounts returns x + y wrapped mod 2^128.
func AddAmounts(x, y *uint256.Int) *uint256.Int {
	sum := new(uint256.Int).Add(x, y)
	return sum.And(sum, maxUint128)
}

// SubAmounts returns x - y wrapped mod 2^128.
func SubAmounts(x, y *uint256.Int) *uint256.Int {
	diff := new(uint256.Int).Sub(x, y)
	return diff.And(diff, maxUint128)
}

// AmountBytes serializes an amount as 16 big-endian bytes.
func AmountBytes(amount *uint256.Int) [AmountSize]byte {
	full := amount.Bytes32()
	var serialized [AmountSize]byte
	copy(serialized[:], full[AmountSize:])
	return serialized
}

// AmountFromBytes deserializes a 16-byte big-endian amount.
func AmountFromBytes(serialized []byte) (*uint256.Int, error) {
	if len(serialized) != AmountSize {
		return nil, errors.Errorf("invalid amount length of %d, want %d",
			len(serialized), AmountSize)
	}
	return new(uint256.Int).SetBytes(serialized), nil
}
