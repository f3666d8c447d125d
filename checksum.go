package scstate

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Checksum digests all stored pairs in key order. Two databases holding the
// same state have the same checksum regardless of backend.
func (db *DB) Checksum() (uint64, error) {
	return db.checksum(nil)
}

// ContractChecksum digests only the given contract's state partition.
func (db *DB) ContractChecksum(contract string) (uint64, error) {
	root, err := db.roots.Root(contract)
	if err != nil {
		return 0, err
	}
	return db.checksum(root)
}

func (db *DB) checksum(prefix []byte) (uint64, error) {
	var sum uint64
	err := db.read(func(b storageBucket) error {
		h := xxhash.New()
		buf := scratchPool.Get().([]byte)
		defer func() { scratchPool.Put(buf[:0]) }()
		for k, v := range entries(b, prefix) {
			buf = binary.AppendUvarint(buf[:0], uint64(len(k)))
			buf = append(buf, k...)
			buf = binary.AppendUvarint(buf, uint64(len(v)))
			h.Write(buf)
			h.Write(v)
		}
		sum = h.Sum64()
		return nil
	})
	return sum, err
}
