package scstate

import (
	"bytes"
	"fmt"
	"iter"
)

// read runs f against the state bucket in a read-only transaction.
func (db *DB) read(f func(b storageBucket) error) error {
	stx, err := db.storage.BeginTx(false)
	if err != nil {
		return fmt.Errorf("scstate: begin: %w", err)
	}
	defer stx.Rollback()
	b := stx.Bucket(db.bucket)
	if b == nil {
		return fmt.Errorf("scstate: %s: %w", db.bucket, ErrBucketNotFound)
	}
	return f(b)
}

// write runs f against the state bucket in a writable transaction and commits
// if f succeeds.
func (db *DB) write(f func(b storageBucket) error) error {
	stx, err := db.storage.BeginTx(true)
	if err != nil {
		return fmt.Errorf("scstate: begin: %w", err)
	}
	defer stx.Rollback()
	b, err := stx.CreateBucket(db.bucket)
	if err != nil {
		return fmt.Errorf("scstate: %s: %w", db.bucket, err)
	}
	err = f(b)
	if err != nil {
		return err
	}
	err = stx.Commit()
	if err != nil {
		return fmt.Errorf("scstate: commit: %w", err)
	}
	return nil
}

// entries yields the bucket's pairs with the given key prefix in key order.
// The yielded slices are only valid until the next iteration.
func entries(b storageBucket, prefix []byte) iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		c := b.Cursor()
		defer c.Close()
		var k, v []byte
		if len(prefix) == 0 {
			k, v = c.First()
		} else {
			k, v = c.Seek(prefix)
		}
		for ; k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if !yield(k, v) {
				return
			}
		}
	}
}

// KeyCount returns the number of stored keys across all contracts.
func (db *DB) KeyCount() (int, error) {
	var n int
	err := db.read(func(b storageBucket) error {
		n = b.KeyCount()
		return nil
	})
	return n, err
}
