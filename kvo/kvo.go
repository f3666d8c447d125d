// Package kvo (stands for Key Value Objects) presents a flat byte-keyed store
// as a tree of typed values.
//
// A Location is a store plus an immutable key path. Child locations are made
// by appending to the path: a 4-byte little-endian index for array elements,
// the encoded key for map entries. Views (Mutable, Array, Map, and their
// immutable counterparts) wrap a Location and a codec or element accessor;
// they hold no state of their own, so every read goes to the store.
//
// Arrays keep their element count at their own location. Maps have no length
// and no key index; an entry exists iff its key holds a non-empty value.
//
// Paths carry no separators, so keys of variable-length codecs can alias other
// paths: in a map of arrays keyed by String, the entry "a\x00\x00\x00\x00" is
// element 0 of the array at "a". Callers that need distinct paths must use
// fixed-width keys or keys that cannot end in such a suffix.
//
// Malformed stored data and out-of-range indices panic. The caller's
// invocation boundary is expected to recover and roll back.
package kvo

import (
	"iter"
	"maps"
	"slices"

	"github.com/andreyvit/scstate/codec"
)

// Store is the storage contract the views run against. Get returns nil for
// absent keys. Set is never called with an empty value; Location turns those
// into Delete.
type Store interface {
	Get(key []byte) []byte
	Set(key, value []byte)
	Delete(key []byte)
}

// Dict is an in-memory Store, used for call parameters and results and in
// tests. Keys are raw byte strings.
type Dict map[string][]byte

var _ Store = Dict(nil)

func (d Dict) Get(key []byte) []byte {
	return d[string(key)]
}

func (d Dict) Set(key, value []byte) {
	d[string(key)] = slices.Clone(value)
}

func (d Dict) Delete(key []byte) {
	delete(d, string(key))
}

func (d Dict) Root() Location {
	return NewLocation(d, nil)
}

func (d Dict) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

// All yields entries in key order.
func (d Dict) All() iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		for _, k := range d.Keys() {
			if !yield([]byte(k), d[k]) {
				return
			}
		}
	}
}

func (d Dict) Clone() Dict {
	if d == nil {
		return nil
	}
	r := make(Dict, len(d))
	for k, v := range d {
		r[k] = slices.Clone(v)
	}
	return r
}

// Bytes serializes the dictionary into the wire format: a uvarint entry count
// followed by length-prefixed keys and values in key order.
func (d Dict) Bytes() []byte {
	enc := codec.NewEncoder()
	enc.Uvarint(uint64(len(d)))
	for _, k := range d.Keys() {
		enc.Bytes([]byte(k))
		enc.Bytes(d[k])
	}
	return enc.Buf()
}

// DictFromBytes parses the output of Dict.Bytes. An empty buffer is an empty
// dictionary. Malformed input panics with *codec.DataError.
func DictFromBytes(buf []byte) Dict {
	d := make(Dict)
	if len(buf) == 0 {
		return d
	}
	dec := codec.NewDecoder(buf)
	n := dec.Uvarint()
	for range n {
		k := dec.Bytes()
		v := dec.Bytes()
		if len(v) != 0 {
			d[string(k)] = v
		}
	}
	dec.Close()
	return d
}
