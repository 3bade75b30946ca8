package dbaccess

import (
	"github.com/holiman/uint256"

	"github.com/strandnet/strandd/database"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

var representationBucket = database.MakeBucket([]byte("representation"))

// FetchRepresentation returns the voting weight delegated to the given
// representative identity, or zero if none is recorded. The 32-byte key
// space is shared between block hashes and accounts; callers pass whichever
// identity they track weight under.
func FetchRepresentation(context Context, hash *chainhash.Hash) (*uint256.Int, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}

	serialized, err := accessor.Get(representationKey(hash))
	if err != nil {
		if database.IsNotFoundError(err) {
			return uint256.NewInt(0), nil
		}
		return nil, err
	}

	return util.AmountFromBytes(serialized)
}

// RepresentationAdd adds amount to the weight delegated to the given
// representative identity, wrapping mod 2^128.
func RepresentationAdd(context Context, hash *chainhash.Hash, amount *uint256.Int) error {
	current, err := FetchRepresentation(context, hash)
	if err != nil {
		return err
	}
	return storeRepresentation(context, hash, util.AddAmounts(current, amount))
}

// RepresentationSub subtracts amount from the weight delegated to the given
// representative identity, wrapping mod 2^128. In any reachable ledger
// state the stored weight never underflows; the wrapping makes interleaved
// move-weight sequences order-independent.
func RepresentationSub(context Context, hash *chainhash.Hash, amount *uint256.Int) error {
	current, err := FetchRepresentation(context, hash)
	if err != nil {
		return err
	}
	return storeRepresentation(context, hash, util.SubAmounts(current, amount))
}

func storeRepresentation(context Context, hash *chainhash.Hash, weight *uint256.Int) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	serialized := util.AmountBytes(weight)
	return accessor.Put(representationKey(hash), serialized[:])
}

func representationKey(hash *chainhash.Hash) *database.Key {
	return representationBucket.Key(hash[:])
}
