package dbaccess

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/strandnet/strandd/database"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

var accountsBucket = database.MakeBucket([]byte("accounts"))

// accountInfoLength is the length of a serialized AccountInfo: three
// hashes, a balance, and two 8-byte integers.
const accountInfoLength = chainhash.HashSize*3 + util.AmountSize + 8 + 8

// AccountInfo is the account record: the mutable head state of one chain in
// the lattice.
type AccountInfo struct {
	// Head is the hash of the latest block on the account's chain.
	Head chainhash.Hash

	// RepBlock is the hash of the block that currently designates the
	// account's representative.
	RepBlock chainhash.Hash

	// OpenBlock is the hash of the first block on the account's chain.
	OpenBlock chainhash.Hash

	// Balance is the balance as of Head.
	Balance *uint256.Int

	// Modified is the seconds-since-epoch timestamp of the last update.
	Modified uint64

	// BlockCount is the number of blocks on the account's chain.
	BlockCount uint64
}

// StoreAccount stores the account record for the given account, overwriting
// any previous record.
func StoreAccount(context Context, account *util.Account, info *AccountInfo) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Put(accountKey(account), serializeAccountInfo(info))
}

// FetchAccount returns the account record of the given account. Returns
// found=false if the account has no record.
func FetchAccount(context Context, account *util.Account) (info *AccountInfo, found bool, err error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, false, err
	}

	serialized, err := accessor.Get(accountKey(account))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	info, err = deserializeAccountInfo(serialized)
	if err != nil {
		return nil, false, err
	}
	return info, true, nil
}

// HasAccount returns whether the given account has a record.
func HasAccount(context Context, account *util.Account) (bool, error) {
	accessor, err := context.accessor()
	if err != nil {
		return false, err
	}

	return accessor.Has(accountKey(account))
}

// RemoveAccount removes the record of the given account. Removing an absent
// record is not an error.
func RemoveAccount(context Context, account *util.Account) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Delete(accountKey(account))
}

func serializeAccountInfo(info *AccountInfo) []byte {
	serialized := make([]byte, 0, accountInfoLength)
	balance := util.AmountBytes(info.Balance)
	var modified, blockCount [8]byte
	binary.BigEndian.PutUint64(modified[:], info.Modified)
	binary.BigEndian.PutUint64(blockCount[:], info.BlockCount)

	serialized = append(serialized, info.Head[:]...)
	serialized = append(serialized, info.RepBlock[:]...)
	serialized = append(serialized, info.OpenBlock[:]...)
	serialized = append(serialized, balance[:]...)
	serialized = append(serialized, modified[:]...)
	serialized = append(serialized, blockCount[:]...)
	return serialized
}

func deserializeAccountInfo(serialized []byte) (*AccountInfo, error) {
	if len(serialized) != accountInfoLength {
		return nil, errors.Errorf("serialized account record is %d bytes, want %d",
			len(serialized), accountInfoLength)
	}

	info := &AccountInfo{}
	offset := 0
	offset += copy(info.Head[:], serialized[offset:])
	offset += copy(info.RepBlock[:], serialized[offset:])
	offset += copy(info.OpenBlock[:], serialized[offset:])
	balance, err := util.AmountFromBytes(serialized[offset : offset+util.AmountSize])
	if err != nil {
		return nil, err
	}
	info.Balance = balance
	offset += util.AmountSize
	info.Modified = binary.BigEndian.Uint64(serialized[offset:])
	offset += 8
	info.BlockCount = binary.BigEndian.Uint64(serialized[offset:])
	return info, nil
}

func accountKey(account *util.Account) *database.Key {
	return accountsBucket.Key(account[:])
}
