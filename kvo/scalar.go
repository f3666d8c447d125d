package kvo

import (
	"github.com/andreyvit/scstate/codec"
)

// Immutable is a read-only typed view of a single value.
type Immutable[T any] struct {
	loc   Location
	codec codec.Codec[T]
}

func NewImmutable[T any](loc Location, c codec.Codec[T]) Immutable[T] {
	return Immutable[T]{loc, c}
}

func (v Immutable[T]) Location() Location { return v.loc }
func (v Immutable[T]) Exists() bool       { return v.loc.Exists() }

// Value decodes the stored bytes; absent means the codec's zero value.
func (v Immutable[T]) Value() T {
	return v.codec.FromBytes(v.loc.Get())
}

func (v Immutable[T]) String() string {
	return v.codec.ToString(v.Value())
}

type Mutable[T any] struct {
	ro Immutable[T]
}

func NewMutable[T any](loc Location, c codec.Codec[T]) Mutable[T] {
	return Mutable[T]{Immutable[T]{loc, c}}
}

func (v Mutable[T]) Location() Location      { return v.ro.loc }
func (v Mutable[T]) Exists() bool            { return v.ro.Exists() }
func (v Mutable[T]) Value() T                { return v.ro.Value() }
func (v Mutable[T]) String() string          { return v.ro.String() }
func (v Mutable[T]) Immutable() Immutable[T] { return v.ro }

func (v Mutable[T]) SetValue(value T) {
	v.ro.loc.Set(v.ro.codec.ToBytes(value))
}

func (v Mutable[T]) Delete() {
	v.ro.loc.Delete()
}

// Untyped is a view whose kind is picked at run time, e.g. from a codec name
// supplied by a tool.
type Untyped struct {
	loc   Location
	codec codec.AnyCodec
}

func NewUntyped(loc Location, c codec.AnyCodec) Untyped {
	return Untyped{loc, c}
}

func (v Untyped) Location() Location    { return v.loc }
func (v Untyped) Codec() codec.AnyCodec { return v.codec }
func (v Untyped) Exists() bool          { return v.loc.Exists() }
func (v Untyped) Bytes() []byte         { return v.loc.Get() }
func (v Untyped) Value() any            { return v.codec.AnyFromBytes(v.loc.Get()) }

func (v Untyped) String() string {
	return v.codec.BytesToString(v.loc.Get())
}

func (v Untyped) SetString(s string) {
	v.loc.Set(v.codec.StringToBytes(s))
}

func (v Untyped) Delete() {
	v.loc.Delete()
}
