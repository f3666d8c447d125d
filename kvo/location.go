package kvo

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"slices"

	"github.com/andreyvit/scstate/codec"
)

const indexLength = 4

type Location struct {
	store Store
	path  []byte
}

// NewLocation returns a root location. root is copied.
func NewLocation(store Store, root []byte) Location {
	if store == nil {
		panic("kvo: nil store")
	}
	return Location{store, slices.Clone(root)}
}

func (l Location) Store() Store {
	return l.store
}

// Path returns a copy of the full key.
func (l Location) Path() []byte {
	return slices.Clone(l.path)
}

func (l Location) Index(i uint32) Location {
	var suffix [indexLength]byte
	binary.LittleEndian.PutUint32(suffix[:], i)
	return Location{l.store, slices.Concat(l.path, suffix[:])}
}

func (l Location) Key(key []byte) Location {
	return Location{l.store, slices.Concat(l.path, key)}
}

// Field is Key with a string key, used for named top-level values.
func (l Location) Field(name string) Location {
	return Location{l.store, slices.Concat(l.path, []byte(name))}
}

func (l Location) Exists() bool {
	return len(l.store.Get(l.path)) != 0
}

func (l Location) Get() []byte {
	return l.store.Get(l.path)
}

// Set stores value; an empty value deletes the key.
func (l Location) Set(value []byte) {
	if len(value) == 0 {
		l.store.Delete(l.path)
	} else {
		l.store.Set(l.path, value)
	}
}

func (l Location) Delete() {
	l.store.Delete(l.path)
}

// Length reads the container count stored at this location; absent means 0.
func (l Location) Length() uint32 {
	return codec.TUint32.FromBytes(l.store.Get(l.path))
}

func (l Location) SetLength(n uint32) {
	if n == 0 {
		l.store.Delete(l.path)
	} else {
		l.store.Set(l.path, codec.TUint32.ToBytes(n))
	}
}

// ClearContainer deletes elements 0..Length-1 and the count. Nested
// containers are not visited; use Array.Clear for that.
func (l Location) ClearContainer() {
	n := l.Length()
	for i := range n {
		l.Index(i).Delete()
	}
	l.Delete()
}

func (l Location) Equal(other Location) bool {
	return bytes.Equal(l.path, other.path)
}

func (l Location) String() string {
	if len(l.path) == 0 {
		return "<root>"
	}
	return hex.EncodeToString(l.path)
}
