package dbaccess

import (
	"bytes"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/strandnet/strandd/database"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

var pendingBucket = database.MakeBucket([]byte("pending"))

const (
	pendingKeyLength  = util.AccountSize + chainhash.HashSize
	pendingInfoLength = util.AccountSize + util.AmountSize
)

// PendingKey identifies a pending entry: funds sent to Destination by the
// send block SourceHash that have not yet been received.
type PendingKey struct {
	Destination util.Account
	SourceHash  chainhash.Hash
}

// PendingInfo is the value of a pending entry: who sent the funds and how
// much.
type PendingInfo struct {
	Source util.Account
	Amount *uint256.Int
}

// StorePending stores a pending entry.
func StorePending(context Context, key *PendingKey, info *PendingInfo) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Put(pendingKey(key), serializePendingInfo(info))
}

// FetchPending returns the pending entry under the given key. Returns
// found=false if no such entry exists.
func FetchPending(context Context, key *PendingKey) (info *PendingInfo, found bool, err error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, false, err
	}

	serialized, err := accessor.Get(pendingKey(key))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	info, err = deserializePendingInfo(serialized)
	if err != nil {
		return nil, false, err
	}
	return info, true, nil
}

// HasPending returns whether a pending entry exists under the given key.
func HasPending(context Context, key *PendingKey) (bool, error) {
	accessor, err := context.accessor()
	if err != nil {
		return false, err
	}

	return accessor.Has(pendingKey(key))
}

// RemovePending removes the pending entry under the given key. Removing an
// absent entry is not an error.
func RemovePending(context Context, key *PendingKey) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Delete(pendingKey(key))
}

// ForEachPending iterates all pending entries whose destination is the
// given account, in source-hash order, and calls f for each. Iteration
// stops early if f returns an error, which is then returned to the caller.
func ForEachPending(context Context, destination *util.Account,
	f func(key *PendingKey, info *PendingInfo) error) error {

	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	cursor, err := accessor.Cursor(pendingBucket)
	if err != nil {
		return err
	}
	defer cursor.Close()

	err = cursor.Seek(pendingBucket.Key(destination[:]))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil
		}
		return err
	}

	for {
		cursorKey, err := cursor.Key()
		if err != nil {
			return err
		}
		suffix := cursorKey.Key()
		if len(suffix) != pendingKeyLength {
			return errors.Errorf("pending key is %d bytes, want %d",
				len(suffix), pendingKeyLength)
		}
		if !bytes.Equal(suffix[:util.AccountSize], destination[:]) {
			return nil
		}

		key := &PendingKey{}
		copy(key.Destination[:], suffix)
		copy(key.SourceHash[:], suffix[util.AccountSize:])

		value, err := cursor.Value()
		if err != nil {
			return err
		}
		info, err := deserializePendingInfo(value)
		if err != nil {
			return err
		}

		err = f(key, info)
		if err != nil {
			return err
		}

		if !cursor.Next() {
			return nil
		}
	}
}

func serializePendingInfo(info *PendingInfo) []byte {
	serialized := make([]byte, 0, pendingInfoLength)
	amount := util.AmountBytes(info.Amount)
	serialized = append(serialized, info.Source[:]...)
	serialized = append(serialized, amount[:]...)
	return serialized
}

func deserializePendingInfo(serialized []byte) (*PendingInfo, error) {
	if len(serialized) != pendingInfoLength {
		return nil, errors.Errorf("serialized pending entry is %d bytes, want %d",
			len(serialized), pendingInfoLength)
	}

	info := &PendingInfo{}
	copy(info.Source[:], serialized)
	amount, err := util.AmountFromBytes(serialized[util.AccountSize:])
	if err != nil {
		return nil, err
	}
	info.Amount = amount
	return info, nil
}

func pendingKey(key *PendingKey) *database.Key {
	serialized := make([]byte, 0, pendingKeyLength)
	serialized = append(serialized, key.Destination[:]...)
	serialized = append(serialized, key.SourceHash[:]...)
	return pendingBucket.Key(serialized)
}
