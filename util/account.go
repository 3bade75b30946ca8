package util

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
	"github.com/strandnet/strandd/util/chainhash"
)

// AccountSize is the length in bytes of an account identifier, which is an
// ed25519 public key.
const AccountSize = 32

// accountVersion is the version byte prepended to the base58check text
// encoding of an account.
const accountVersion = 0x53

// ZeroAccount is the all-zeroes account. It is unopenable; the ledger treats
// it as the burn target.
var ZeroAccount = Account{}

// Account is the public key identifying a single chain in the lattice.
type Account [AccountSize]byte

// String returns the base58check text encoding of the account.
func (account Account) String() string {
	return base58.CheckEncode(account[:], accountVersion)
}

// IsZero returns true if the account is all zeroes.
func (account *Account) IsZero() bool {
	return *account == ZeroAccount
}

// AsHash reinterprets the account bytes as a chainhash.Hash. Several tables
// are keyed by a 32-byte value that is an account in some rows and a block
// hash in others, so conversions in both directions are needed.
func (account *Account) AsHash() chainhash.Hash {
	return chainhash.Hash(*account)
}

// AccountFromHash reinterprets a chainhash.Hash as an Account.
func AccountFromHash(hash *chainhash.Hash) Account {
	return Account(*hash)
}

// NewAccount returns a new Account from a byte slice. An error is returned
// if the number of bytes passed in is not AccountSize.
func NewAccount(newAccount []byte) (*Account, error) {
	if len(newAccount) != AccountSize {
		return nil, errors.Errorf("invalid account length of %d, want %d",
			len(newAccount), AccountSize)
	}
	account := new(Account)
	copy(account[:], newAccount)
	return account, nil
}

// DecodeAccount decodes the base58check text encoding of an account, as
// produced by Account.String.
func DecodeAccount(encoded string) (*Account, error) {
	decoded, version, err := base58.CheckDecode(encoded)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode account %q", encoded)
	}
	if version != accountVersion {
		return nil, errors.Errorf("account %q has version %d, want %d",
			encoded, version, accountVersion)
	}
	return NewAccount(decoded)
}
