package dbaccess

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/strandnet/strandd/blocks"
	"github.com/strandnet/strandd/database"
	"github.com/strandnet/strandd/util/chainhash"
)

var (
	blocksBucket          = database.MakeBucket([]byte("blocks"))
	blockSuccessorsBucket = database.MakeBucket([]byte("block-successors"))
	blockCountsBucket     = database.MakeBucket([]byte("block-counts"))
)

// StoreBlock stores the given block in the database keyed by its hash, and
// points its predecessor's successor entry at it. A block hash may never
// appear in the block table twice; attempting to overwrite one is reported
// as an error.
func StoreBlock(context Context, block blocks.Block) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	hash := block.Hash()

	// Make sure that the block does not already exist.
	exists, err := HasBlock(context, &hash)
	if err != nil {
		return err
	}
	if exists {
		return errors.Errorf("block %s already exists", hash)
	}

	serialized, err := blocks.EncodeBlock(block)
	if err != nil {
		return err
	}
	err = accessor.Put(blockKey(&hash), serialized)
	if err != nil {
		return err
	}

	previous := block.Previous()
	if !previous.IsZero() {
		err = accessor.Put(blockSuccessorKey(&previous), hash.CloneBytes())
		if err != nil {
			return err
		}
	}

	return addToBlockCount(accessor, block.Type(), 1)
}

// HasBlock returns whether the block of the given hash has been previously
// inserted into the database.
func HasBlock(context Context, hash *chainhash.Hash) (bool, error) {
	accessor, err := context.accessor()
	if err != nil {
		return false, err
	}

	return accessor.Has(blockKey(hash))
}

// FetchBlock returns the block of the given hash. Returns found=false if
// the block had not been previously inserted into the database.
func FetchBlock(context Context, hash *chainhash.Hash) (block blocks.Block, found bool, err error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, false, err
	}

	serialized, err := accessor.Get(blockKey(hash))
	if err != nil {
		if database.IsNotFoundError(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	block, err = blocks.DecodeBlock(serialized)
	if err != nil {
		return nil, false, err
	}
	return block, true, nil
}

// RemoveBlock removes the block of the given hash from the database.
func RemoveBlock(context Context, hash *chainhash.Hash) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	block, found, err := FetchBlock(context, hash)
	if err != nil {
		return err
	}
	if !found {
		return errors.Errorf("cannot remove missing block %s", hash)
	}

	err = accessor.Delete(blockKey(hash))
	if err != nil {
		return err
	}

	return addToBlockCount(accessor, block.Type(), ^uint64(0))
}

// FetchBlockSuccessor returns the hash of the block whose previous field
// names the given hash, or the zero hash if no such block is known.
func FetchBlockSuccessor(context Context, hash *chainhash.Hash) (*chainhash.Hash, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}

	serialized, err := accessor.Get(blockSuccessorKey(hash))
	if err != nil {
		if database.IsNotFoundError(err) {
			return &chainhash.Hash{}, nil
		}
		return nil, err
	}

	return chainhash.NewHash(serialized)
}

// ClearBlockSuccessor removes the successor entry of the given hash, if
// any.
func ClearBlockSuccessor(context Context, hash *chainhash.Hash) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	return accessor.Delete(blockSuccessorKey(hash))
}

// BlockCounts holds the number of stored blocks of each variant.
type BlockCounts struct {
	Send    uint64
	Receive uint64
	Open    uint64
	Change  uint64
	State   uint64
}

// Sum returns the total number of stored blocks.
func (c *BlockCounts) Sum() uint64 {
	return c.Send + c.Receive + c.Open + c.Change + c.State
}

// BlockCount returns the per-variant counts of stored blocks.
func BlockCount(context Context) (*BlockCounts, error) {
	counts := &BlockCounts{}
	for blockType, target := range map[blocks.BlockType]*uint64{
		blocks.BlockTypeSend:    &counts.Send,
		blocks.BlockTypeReceive: &counts.Receive,
		blocks.BlockTypeOpen:    &counts.Open,
		blocks.BlockTypeChange:  &counts.Change,
		blocks.BlockTypeState:   &counts.State,
	} {
		count, err := fetchBlockCount(context, blockType)
		if err != nil {
			return nil, err
		}
		*target = count
	}
	return counts, nil
}

func fetchBlockCount(context Context, blockType blocks.BlockType) (uint64, error) {
	accessor, err := context.accessor()
	if err != nil {
		return 0, err
	}

	serialized, err := accessor.Get(blockCountKey(blockType))
	if err != nil {
		if database.IsNotFoundError(err) {
			return 0, nil
		}
		return 0, err
	}
	if len(serialized) != 8 {
		return 0, errors.Errorf("invalid block count length %d", len(serialized))
	}
	return binary.BigEndian.Uint64(serialized), nil
}

func addToBlockCount(accessor database.DataAccessor, blockType blocks.BlockType, delta uint64) error {
	key := blockCountKey(blockType)
	count := uint64(0)
	serialized, err := accessor.Get(key)
	if err != nil && !database.IsNotFoundError(err) {
		return err
	}
	if err == nil {
		if len(serialized) != 8 {
			return errors.Errorf("invalid block count length %d", len(serialized))
		}
		count = binary.BigEndian.Uint64(serialized)
	}

	updated := make([]byte, 8)
	binary.BigEndian.PutUint64(updated, count+delta)
	return accessor.Put(key, updated)
}

func blockKey(hash *chainhash.Hash) *database.Key {
	return blocksBucket.Key(hash[:])
}

func blockSuccessorKey(hash *chainhash.Hash) *database.Key {
	return blockSuccessorsBucket.Key(hash[:])
}

func blockCountKey(blockType blocks.BlockType) *database.Key {
	return blockCountsBucket.Key([]byte{byte(blockType)})
}
