package dbaccess

import (
	"github.com/strandnet/strandd/database"
	"github.com/strandnet/strandd/util/chainhash"
)

var checksumBucket = database.MakeBucket([]byte("checksum"))

// checksumKey is the single key of the checksum table. The accumulator is
// one 32-byte value: the XOR of the head hash of every account.
var checksumKey = checksumBucket.Key([]byte("accumulator"))

// FetchChecksum returns the ledger checksum accumulator, or the zero hash
// if none has been stored yet.
func FetchChecksum(context Context) (*chainhash.Hash, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}

	serialized, err := accessor.Get(checksumKey)
	if err != nil {
		if database.IsNotFoundError(err) {
			return &chainhash.Hash{}, nil
		}
		return nil, err
	}

	return chainhash.NewHash(serialized)
}

// StoreChecksum stores the ledger checksum accumulator.
func StoreChecksum(context Context, checksum *chainhash.Hash) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Put(checksumKey, checksum.CloneBytes())
}
