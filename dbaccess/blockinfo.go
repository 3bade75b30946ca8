package dbaccess

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/strandnet/strandd/database"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

var blockInfoBucket = database.MakeBucket([]byte("block-info"))

// BlockInfoMax is the sampling period of the block-info sidecar: a sidecar
// entry is written on every BlockInfoMax'th block of a legacy chain, which
// bounds the walk performed by account-of-hash lookups.
const BlockInfoMax = 128

const blockInfoLength = util.AccountSize + util.AmountSize

// BlockInfo is a sidecar sample: the owning account and balance at a
// particular legacy block.
type BlockInfo struct {
	Account util.Account
	Balance *uint256.Int
}

// StoreBlockInfo stores a sidecar entry for the given hash.
func StoreBlockInfo(context Context, hash *chainhash.Hash, info *BlockInfo) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	serialized := make([]byte, 0, blockInfoLength)
	amount := util.AmountBytes(info.Balance)
	serialized = append(serialized, info.Account[:]...)
	serialized = append(serialized, amount[:]...)
	return accessor.Put(blockInfoKey(hash), serialized)
}

// FetchBlockInfo returns the sidecar entry for the given hash. Returns
// found=false if the hash has no sidecar entry.
func FetchBlockInfo(context Context, hash *chainhash.Hash) (info *BlockInfo, found bool, err error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, false, err
	}

	serialized, err := accessor.Get(blockInfoKey(hash))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(serialized) != blockInfoLength {
		return nil, false, errors.Errorf("serialized block info is %d bytes, want %d",
			len(serialized), blockInfoLength)
	}

	info = &BlockInfo{}
	copy(info.Account[:], serialized)
	balance, err := util.AmountFromBytes(serialized[util.AccountSize:])
	if err != nil {
		return nil, false, err
	}
	info.Balance = balance
	return info, true, nil
}

// RemoveBlockInfo removes the sidecar entry for the given hash. Removing an
// absent entry is not an error.
func RemoveBlockInfo(context Context, hash *chainhash.Hash) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Delete(blockInfoKey(hash))
}

func blockInfoKey(hash *chainhash.Hash) *database.Key {
	return blockInfoBucket.Key(hash[:])
}
