package kvo

import (
	"fmt"
	"iter"
	"math"

	"github.com/andreyvit/scstate/codec"
)

// Elem builds the view of a container element from the element's location.
// Nesting is composition of accessors: ArrayOf(MapOf(codec.TString,
// Scalar(codec.TInt64))) describes an array of string-keyed int64 maps.
type Elem[E any] func(Location) E

// clearer is implemented by views of nested containers.
type clearer interface {
	Clear()
}

func Scalar[T any](c codec.Codec[T]) Elem[Mutable[T]] {
	return func(loc Location) Mutable[T] { return NewMutable(loc, c) }
}

func ImmutableScalar[T any](c codec.Codec[T]) Elem[Immutable[T]] {
	return func(loc Location) Immutable[T] { return NewImmutable(loc, c) }
}

func ArrayOf[E any](elem Elem[E]) Elem[Array[E]] {
	return func(loc Location) Array[E] { return NewArray(loc, elem) }
}

func ImmutableArrayOf[E any](elem Elem[E]) Elem[ImmutableArray[E]] {
	return func(loc Location) ImmutableArray[E] { return NewImmutableArray(loc, elem) }
}

func MapOf[K, E any](key codec.Codec[K], elem Elem[E]) Elem[Map[K, E]] {
	return func(loc Location) Map[K, E] { return NewMap(loc, key, elem) }
}

func ImmutableMapOf[K, E any](key codec.Codec[K], elem Elem[E]) Elem[ImmutableMap[K, E]] {
	return func(loc Location) ImmutableMap[K, E] { return NewImmutableMap(loc, key, elem) }
}

// IndexError is the panic value of an out-of-range array access.
type IndexError struct {
	Loc    Location
	Index  uint32
	Length uint32
}

func (e *IndexError) Error() string {
	if e.Index == math.MaxUint32 && e.Length == math.MaxUint32 {
		return fmt.Sprintf("array %v: full, length %d", e.Loc, e.Length)
	}
	if e.Index == e.Length {
		return fmt.Sprintf("array %v: invalid index %d: use Append", e.Loc, e.Index)
	}
	return fmt.Sprintf("array %v: index %d out of range, length %d", e.Loc, e.Index, e.Length)
}

type ImmutableArray[E any] struct {
	loc  Location
	elem Elem[E]
}

func NewImmutableArray[E any](loc Location, elem Elem[E]) ImmutableArray[E] {
	return ImmutableArray[E]{loc, elem}
}

func (a ImmutableArray[E]) Location() Location { return a.loc }
func (a ImmutableArray[E]) Length() uint32     { return a.loc.Length() }

// Get returns the view of element i, which must be below Length.
func (a ImmutableArray[E]) Get(i uint32) E {
	if n := a.loc.Length(); i >= n {
		panic(&IndexError{a.loc, i, n})
	}
	return a.elem(a.loc.Index(i))
}

// All yields every element in index order.
func (a ImmutableArray[E]) All() iter.Seq2[uint32, E] {
	return func(yield func(uint32, E) bool) {
		n := a.loc.Length()
		for i := range n {
			if !yield(i, a.elem(a.loc.Index(i))) {
				return
			}
		}
	}
}

type Array[E any] struct {
	ImmutableArray[E]
}

func NewArray[E any](loc Location, elem Elem[E]) Array[E] {
	return Array[E]{ImmutableArray[E]{loc, elem}}
}

// Immutable returns a read-only array view. Elements keep the accessor the
// array was built with.
func (a Array[E]) Immutable() ImmutableArray[E] {
	return a.ImmutableArray
}

// Append grows the array by one and returns the view of the new element,
// which holds the default value until written. Appending to an array of
// math.MaxUint32 elements panics with *IndexError.
func (a Array[E]) Append() E {
	n := a.loc.Length()
	if n == math.MaxUint32 {
		panic(&IndexError{a.loc, n, n})
	}
	a.loc.SetLength(n + 1)
	return a.elem(a.loc.Index(n))
}

// Clear deletes every element and the count. Elements that are containers
// themselves are cleared first.
func (a Array[E]) Clear() {
	n := a.loc.Length()
	for i := range n {
		child := a.loc.Index(i)
		if c, ok := any(a.elem(child)).(clearer); ok {
			c.Clear()
		}
		child.Delete()
	}
	a.loc.Delete()
}

type ImmutableMap[K, E any] struct {
	loc  Location
	key  codec.Codec[K]
	elem Elem[E]
}

func NewImmutableMap[K, E any](loc Location, key codec.Codec[K], elem Elem[E]) ImmutableMap[K, E] {
	return ImmutableMap[K, E]{loc, key, elem}
}

func (m ImmutableMap[K, E]) Location() Location { return m.loc }

// Get never fails; absent entries read as defaults.
func (m ImmutableMap[K, E]) Get(key K) E {
	return m.elem(m.loc.Key(m.key.ToBytes(key)))
}

type Map[K, E any] struct {
	ImmutableMap[K, E]
}

func NewMap[K, E any](loc Location, key codec.Codec[K], elem Elem[E]) Map[K, E] {
	return Map[K, E]{ImmutableMap[K, E]{loc, key, elem}}
}

func (m Map[K, E]) Immutable() ImmutableMap[K, E] {
	return m.ImmutableMap
}

// Clear deletes the value held at the map's own location. Keyed entries are
// not enumerable and are left alone; remove those with ClearKeys.
func (m Map[K, E]) Clear() {
	m.loc.Delete()
}

// ClearKeys removes the given entries, clearing nested containers first.
func (m Map[K, E]) ClearKeys(keys ...K) {
	for _, k := range keys {
		child := m.loc.Key(m.key.ToBytes(k))
		if c, ok := any(m.elem(child)).(clearer); ok {
			c.Clear()
		}
		child.Delete()
	}
}
