package scstate

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
)

const snapshotVersion = 1

// Export writes every stored key/value pair as a msgpack snapshot: the format
// version followed by a map of raw keys to raw values, in key order.
func (db *DB) Export(w io.Writer) error {
	return db.read(func(b storageBucket) error {
		enc := msgpack.GetEncoder()
		defer msgpack.PutEncoder(enc)
		enc.Reset(w)

		err := enc.EncodeInt(snapshotVersion)
		if err == nil {
			err = enc.EncodeMapLen(b.KeyCount())
		}
		for k, v := range entries(b, nil) {
			if err != nil {
				break
			}
			err = enc.EncodeBytes(k)
			if err == nil {
				err = enc.EncodeBytes(v)
			}
		}
		if err != nil {
			return fmt.Errorf("scstate: export: %w", err)
		}
		return nil
	})
}

// Import replaces the entire stored state with a snapshot produced by Export.
// On any error the previous state is kept.
func (db *DB) Import(r io.Reader) error {
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)
	dec.Reset(r)

	ver, err := dec.DecodeInt()
	if err != nil {
		return fmt.Errorf("scstate: import: %w", err)
	}
	if ver != snapshotVersion {
		return fmt.Errorf("scstate: import: %w %d", ErrSnapshotVersion, ver)
	}
	n, err := dec.DecodeMapLen()
	if err != nil {
		return fmt.Errorf("scstate: import: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("scstate: import: %w", ErrSnapshotMalformed)
	}

	return db.write(func(b storageBucket) error {
		var old [][]byte
		for k := range entries(b, nil) {
			old = append(old, slices.Clone(k))
		}
		for _, k := range old {
			if err := b.Delete(k); err != nil {
				return wrapStorageErr("delete", k, err)
			}
		}
		db.WriteCount.Add(uint64(len(old)))

		for i := 0; i < n; i++ {
			k, err := dec.DecodeBytes()
			if err != nil {
				return fmt.Errorf("scstate: import: entry %d key: %w", i, err)
			}
			if len(k) == 0 {
				return fmt.Errorf("scstate: import: entry %d: %w: empty key", i, ErrSnapshotMalformed)
			}
			v, err := dec.DecodeBytes()
			if err != nil {
				return fmt.Errorf("scstate: import: entry %d value: %w", i, err)
			}
			if len(v) == 0 {
				continue
			}
			if err := b.Put(k, v); err != nil {
				return wrapStorageErr("put", k, err)
			}
			db.WriteCount.Add(1)
		}
		if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
			return fmt.Errorf("scstate: import: %w: data after %d entries", ErrSnapshotMalformed, n)
		}
		return nil
	})
}
