package ldb

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	ldbUtil "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/strandnet/strandd/database"
)

// iterable is the subset of goleveldb shared by databases and
// transactions that is required to open an iterator.
type iterable interface {
	NewIterator(slice *ldbUtil.Range, ro *opt.ReadOptions) iterator.Iterator
}

// LevelDBCursor is a thin wrapper around native leveldb iterators.
type LevelDBCursor struct {
	ldbIterator iterator.Iterator
	bucket      *database.Bucket

	isClosed bool
}

func newLevelDBCursor(db *leveldb.DB, bucket *database.Bucket) *LevelDBCursor {
	return newCursorFromIterable(db, bucket)
}

func newCursorFromIterable(iterable iterable, bucket *database.Bucket) *LevelDBCursor {
	ldbIterator := iterable.NewIterator(ldbUtil.BytesPrefix(bucket.Path()), nil)

	return &LevelDBCursor{
		ldbIterator: ldbIterator,
		bucket:      bucket,
		isClosed:    false,
	}
}

// Next moves the iterator to the next key/value pair. It returns false once
// the iterator is exhausted. Panics if the cursor is closed.
func (c *LevelDBCursor) Next() bool {
	if c.isClosed {
		panic("cannot call next on a closed cursor")
	}
	return c.ldbIterator.Next()
}

// First moves the iterator to the first key/value pair. It returns false if
// such a pair does not exist. Panics if the cursor is closed.
func (c *LevelDBCursor) First() bool {
	if c.isClosed {
		panic("cannot call first on a closed cursor")
	}
	return c.ldbIterator.First()
}

// Seek moves the iterator to the first key/value pair whose key is greater
// than or equal to the given key within the cursor's bucket. It returns
// ErrNotFound if no such pair exists.
func (c *LevelDBCursor) Seek(key *database.Key) error {
	if c.isClosed {
		return errors.New("cannot seek a closed cursor")
	}

	found := c.ldbIterator.Seek(key.FullKey())
	if !found {
		return errors.Wrapf(database.ErrNotFound, "key %s not found", key)
	}

	return nil
}

// Key returns the key of the current key/value pair, or ErrNotFound if done.
// The enclosing bucket's path is stripped from the key. Panics if the cursor
// is closed.
func (c *LevelDBCursor) Key() (*database.Key, error) {
	if c.isClosed {
		panic("cannot get the key of a closed cursor")
	}
	fullKeyPath := c.ldbIterator.Key()
	if fullKeyPath == nil {
		return nil, errors.Wrapf(database.ErrNotFound,
			"key not found in bucket %s", string(c.bucket.Path()))
	}
	suffix := bytes.TrimPrefix(fullKeyPath, c.bucket.Path())
	suffixClone := make([]byte, len(suffix))
	copy(suffixClone, suffix)
	return c.bucket.Key(suffixClone), nil
}

// Value returns the value of the current key/value pair, or ErrNotFound if
// done. Panics if the cursor is closed.
func (c *LevelDBCursor) Value() ([]byte, error) {
	if c.isClosed {
		panic("cannot get the value of a closed cursor")
	}
	value := c.ldbIterator.Value()
	if value == nil {
		return nil, errors.Wrapf(database.ErrNotFound,
			"value not found in bucket %s", string(c.bucket.Path()))
	}
	valueClone := make([]byte, len(value))
	copy(valueClone, value)
	return valueClone, nil
}

// Close releases associated resources.
func (c *LevelDBCursor) Close() error {
	if c.isClosed {
		return errors.New("cannot close an already closed cursor")
	}
	c.isClosed = true
	c.ldbIterator.Release()
	c.ldbIterator = nil
	c.bucket = nil
	return nil
}
