package dbaccess

import (
	"github.com/strandnet/strandd/database"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

var frontiersBucket = database.MakeBucket([]byte("frontiers"))

// StoreFrontier records that the given hash is the head of the given
// account's legacy chain.
func StoreFrontier(context Context, hash *chainhash.Hash, account *util.Account) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Put(frontierKey(hash), account[:])
}

// FetchFrontier returns the account whose legacy chain head is the given
// hash, or the zero account if the hash is not a legacy head.
func FetchFrontier(context Context, hash *chainhash.Hash) (*util.Account, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}

	serialized, err := accessor.Get(frontierKey(hash))
	if err != nil {
		if database.IsNotFoundError(err) {
			return &util.Account{}, nil
		}
		return nil, err
	}

	return util.NewAccount(serialized)
}

// RemoveFrontier removes the frontier entry of the given hash. Removing an
// absent entry is not an error.
func RemoveFrontier(context Context, hash *chainhash.Hash) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Delete(frontierKey(hash))
}

func frontierKey(hash *chainhash.Hash) *database.Key {
	return frontiersBucket.Key(hash[:])
}
