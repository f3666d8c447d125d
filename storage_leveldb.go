package scstate

import (
	"errors"
	"fmt"
	"slices"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB has no buckets, so each bucket is a key prefix: name, then a zero
// byte.
const levelBucketSep = 0

type levelStorage struct {
	ldb *leveldb.DB
}

func newLevelStorage(ldb *leveldb.DB) storage {
	return &levelStorage{ldb: ldb}
}

// BeginTx maps writable transactions onto leveldb transactions, which hold
// the database write lock until committed or discarded, and read-only ones
// onto snapshots.
func (s *levelStorage) BeginTx(writable bool) (storageTx, error) {
	if writable {
		tr, err := s.ldb.OpenTransaction()
		if err != nil {
			return nil, err
		}
		return &levelTx{tr: tr, r: tr}, nil
	}
	snap, err := s.ldb.GetSnapshot()
	if err != nil {
		return nil, err
	}
	return &levelTx{snap: snap, r: snap}, nil
}

func (s *levelStorage) Close() error {
	return s.ldb.Close()
}

type levelReader interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

type levelTx struct {
	tr   *leveldb.Transaction
	snap *leveldb.Snapshot
	r    levelReader
}

func (tx *levelTx) Writable() bool { return tx.tr != nil }

func (tx *levelTx) Bucket(name string) storageBucket {
	return levelBucket{tx: tx, prefix: append([]byte(name), levelBucketSep)}
}

func (tx *levelTx) CreateBucket(name string) (storageBucket, error) {
	return tx.Bucket(name), nil
}

func (tx *levelTx) Commit() error {
	if tx.tr == nil {
		return fmt.Errorf("tx not writable")
	}
	return tx.tr.Commit()
}

func (tx *levelTx) Rollback() error {
	if tx.tr != nil {
		tx.tr.Discard()
	} else {
		tx.snap.Release()
	}
	return nil
}

type levelBucket struct {
	tx     *levelTx
	prefix []byte
}

func (b levelBucket) key(key []byte) []byte {
	return slices.Concat(b.prefix, key)
}

func (b levelBucket) Get(key []byte) []byte {
	v, err := b.tx.r.Get(b.key(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil
	} else if err != nil {
		panic(fmt.Errorf("leveldb get: %w", err))
	}
	return v
}

func (b levelBucket) Put(key, value []byte) error {
	if b.tx.tr == nil {
		return fmt.Errorf("tx not writable")
	}
	return b.tx.tr.Put(b.key(key), value, nil)
}

func (b levelBucket) Delete(key []byte) error {
	if b.tx.tr == nil {
		return fmt.Errorf("tx not writable")
	}
	return b.tx.tr.Delete(b.key(key), nil)
}

func (b levelBucket) Cursor() storageCursor {
	return &levelCursor{
		it:     b.tx.r.NewIterator(util.BytesPrefix(b.prefix), nil),
		prefix: b.prefix,
	}
}

func (b levelBucket) KeyCount() int {
	c := b.Cursor()
	defer c.Close()
	var n int
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		n++
	}
	return n
}

type levelCursor struct {
	it     iterator.Iterator
	prefix []byte
}

func (c *levelCursor) at(ok bool) ([]byte, []byte) {
	if !ok {
		return nil, nil
	}
	// an empty key inside a bucket is still non-nil
	k := c.it.Key()
	return k[len(c.prefix):], c.it.Value()
}

func (c *levelCursor) First() ([]byte, []byte) {
	return c.at(c.it.First())
}

func (c *levelCursor) Seek(seek []byte) ([]byte, []byte) {
	return c.at(c.it.Seek(slices.Concat(c.prefix, seek)))
}

func (c *levelCursor) Next() ([]byte, []byte) {
	return c.at(c.it.Next())
}

func (c *levelCursor) Close() {
	c.it.Release()
}
