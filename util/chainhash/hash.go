package chainhash

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// HashSize is the length in bytes of Hash.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ZeroHash is the Hash value of all zero bytes. In the lattice a zero
// hash doubles as "no block": a zero previous field marks an account's
// opening block and a zero frontier lookup means the hash is unknown.
var ZeroHash = Hash{}

// Hash is used in several of the strand messages and common structures. It
// typically represents the blake2b digest of a block's canonical fields.
type Hash [HashSize]byte

// String returns the Hash as the hexadecimal string of the byte-encoded hash.
func (hash Hash) String() string {
	return hex.EncodeToString(hash[:])
}

// CloneBytes returns a copy of the bytes which represent the hash as a byte
// slice.
func (hash *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, hash[:])
	return newHash
}

// SetBytes sets the bytes which represent the hash. An error is returned if
// the number of bytes passed in is not HashSize.
func (hash *Hash) SetBytes(newHash []byte) error {
	nhlen := len(newHash)
	if nhlen != HashSize {
		return errors.Errorf("invalid hash length of %d, want %d", nhlen,
			HashSize)
	}
	copy(hash[:], newHash)

	return nil
}

// IsEqual returns true if target is the same as hash.
func (hash *Hash) IsEqual(target *Hash) bool {
	if hash == nil && target == nil {
		return true
	}
	if hash == nil || target == nil {
		return false
	}
	return *hash == *target
}

// IsZero returns true if the hash is all zeroes.
func (hash *Hash) IsZero() bool {
	return *hash == ZeroHash
}

// Xor folds other into hash byte-wise. The ledger checksum is the XOR of
// every account's head hash, so Xor both adds and removes a head.
func (hash *Hash) Xor(other *Hash) {
	for i := range hash {
		hash[i] ^= other[i]
	}
}

// NewHash returns a new Hash from a byte slice. An error is returned if
// the number of bytes passed in is not HashSize.
func NewHash(newHash []byte) (*Hash, error) {
	var sh Hash
	err := sh.SetBytes(newHash)
	if err != nil {
		return nil, err
	}
	return &sh, err
}

// NewHashFromStr creates a Hash from a hash string. The string should be
// the hexadecimal string of a byte-encoded Hash.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	err := Decode(ret, hash)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the byte-encoded Hash represented by src into dst.
func Decode(dst *Hash, src string) error {
	if len(src) != MaxHashStringSize {
		return errors.Errorf("hash string of %d characters, want %d",
			len(src), MaxHashStringSize)
	}

	_, err := hex.Decode(dst[:], []byte(src))
	return errors.WithStack(err)
}
