package scstate

import (
	"fmt"
	"slices"

	"github.com/andreyvit/scstate/kvo"
)

// bucketStore exposes a storage bucket as a kvo.Store for the duration of one
// transaction, counting reads and writes on the owning DB.
type bucketStore struct {
	db       *DB
	b        storageBucket
	writable bool
}

var _ kvo.Store = (*bucketStore)(nil)

// Get returns a copy, because backend slices die with the transaction.
func (s *bucketStore) Get(key []byte) []byte {
	s.db.ReadCount.Add(1)
	return slices.Clone(s.b.Get(key))
}

func (s *bucketStore) Set(key, value []byte) {
	if !s.writable {
		panic(ErrReadOnly)
	}
	s.db.WriteCount.Add(1)
	ensure(wrapStorageErr("put", key, s.b.Put(key, value)))
}

func (s *bucketStore) Delete(key []byte) {
	if !s.writable {
		panic(ErrReadOnly)
	}
	s.db.WriteCount.Add(1)
	ensure(wrapStorageErr("delete", key, s.b.Delete(key)))
}

func wrapStorageErr(op string, key []byte, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("scstate: %s %s: %w", op, hexstr(key), err)
}

// readOnlyStore guards call parameters against modification.
type readOnlyStore struct {
	kvo.Store
}

func (readOnlyStore) Set(key, value []byte) {
	panic(ErrReadOnly)
}

func (readOnlyStore) Delete(key []byte) {
	panic(ErrReadOnly)
}
