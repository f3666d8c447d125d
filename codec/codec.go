// Package codec translates scalar values between their four representations:
// the typed Go value, the canonical stored bytes, the wire buffer used for
// call parameters and results, and the human-readable string.
//
// Every scalar kind is described by one Codec[T] registered in a table keyed
// by Tag. All codecs share the same rules:
//
//  1. FromBytes of an empty buffer returns the zero value of the kind.
//  2. Fixed-width kinds abort on any other length that does not match Size().
//  3. Encode/Decode of fixed-width kinds equals ToBytes/FromBytes; variable
//     width kinds are uvarint length-prefixed in the wire buffer.
//
// Aborting means panicking with *DataError.
package codec

import (
	"fmt"
	"strings"
)

type Tag uint8

const (
	TagNone Tag = iota
	TagAddress
	TagAgentID
	TagBigInt
	TagBool
	TagBytes
	TagChainID
	TagHash
	TagHname
	TagInt8
	TagInt16
	TagInt32
	TagInt64
	TagNftID
	TagRequestID
	TagString
	TagTokenID
	TagUint8
	TagUint16
	TagUint32
	TagUint64

	tagCount
)

func (tag Tag) String() string {
	if c := Lookup(tag); c != nil {
		return c.Name()
	}
	return fmt.Sprintf("tag(%d)", uint8(tag))
}

// AnyCodec is the untyped face of a Codec, for tools that pick the kind at run
// time (dumps, string-driven setters).
type AnyCodec interface {
	Tag() Tag
	Name() string
	// Size returns the fixed byte length, or 0 for variable-length kinds.
	Size() int

	AnyZero() any
	AnyFromBytes(buf []byte) any
	AnyToBytes(value any) []byte
	AnyFromString(s string) any
	AnyToString(value any) string
	AnyEncode(enc *Encoder, value any)
	AnyDecode(dec *Decoder) any

	BytesToString(buf []byte) string
	StringToBytes(s string) []byte
}

type Codec[T any] interface {
	AnyCodec

	Zero() T
	FromBytes(buf []byte) T
	ToBytes(value T) []byte
	FromString(s string) T
	ToString(value T) string
	Encode(enc *Encoder, value T)
	Decode(dec *Decoder) T
}

// scalar implements Codec[T] from a handful of per-kind functions. The shared
// rules (empty means zero, fixed length check, wire framing) live here so the
// per-kind functions only deal with well-formed input.
type scalar[T any] struct {
	tag  Tag
	name string
	size int

	zero       func() T
	fromBytes  func(buf []byte) T // len(buf) > 0, and == size for fixed kinds
	toBytes    func(value T) []byte
	fromString func(s string) T
	toString   func(value T) string
}

func (c *scalar[T]) Tag() Tag     { return c.tag }
func (c *scalar[T]) Name() string { return c.name }
func (c *scalar[T]) Size() int    { return c.size }
func (c *scalar[T]) String() string {
	return c.name
}

func (c *scalar[T]) Zero() T {
	if c.zero != nil {
		return c.zero()
	}
	var zero T
	return zero
}

func (c *scalar[T]) FromBytes(buf []byte) T {
	if len(buf) == 0 {
		return c.Zero()
	}
	if c.size != 0 && len(buf) != c.size {
		abortf(c.name, buf, "invalid %s length %d, expected %d", c.name, len(buf), c.size)
	}
	return c.fromBytes(buf)
}

func (c *scalar[T]) ToBytes(value T) []byte {
	return c.toBytes(value)
}

func (c *scalar[T]) FromString(s string) T {
	return c.fromString(s)
}

func (c *scalar[T]) ToString(value T) string {
	return c.toString(value)
}

func (c *scalar[T]) Encode(enc *Encoder, value T) {
	if c.size != 0 {
		enc.FixedBytes(c.toBytes(value), c.size)
	} else {
		enc.Bytes(c.toBytes(value))
	}
}

func (c *scalar[T]) Decode(dec *Decoder) T {
	if c.size != 0 {
		return c.FromBytes(dec.FixedBytes(c.size))
	}
	return c.FromBytes(dec.Bytes())
}

func (c *scalar[T]) cast(value any) T {
	v, ok := value.(T)
	if !ok {
		panic(fmt.Errorf("%s codec: got %T", c.name, value))
	}
	return v
}

func (c *scalar[T]) AnyZero() any                      { return c.Zero() }
func (c *scalar[T]) AnyFromBytes(buf []byte) any       { return c.FromBytes(buf) }
func (c *scalar[T]) AnyToBytes(value any) []byte       { return c.ToBytes(c.cast(value)) }
func (c *scalar[T]) AnyFromString(s string) any        { return c.FromString(s) }
func (c *scalar[T]) AnyToString(value any) string      { return c.ToString(c.cast(value)) }
func (c *scalar[T]) AnyEncode(enc *Encoder, value any) { c.Encode(enc, c.cast(value)) }
func (c *scalar[T]) AnyDecode(dec *Decoder) any        { return c.Decode(dec) }

func (c *scalar[T]) BytesToString(buf []byte) string {
	return c.ToString(c.FromBytes(buf))
}

func (c *scalar[T]) StringToBytes(s string) []byte {
	return c.ToBytes(c.FromString(s))
}

var (
	table       [tagCount]AnyCodec
	tableByName = make(map[string]AnyCodec)
)

func register[T any](c *scalar[T]) Codec[T] {
	if c.tag == TagNone || c.tag >= tagCount {
		panic(fmt.Sprintf("invalid tag %d for %s", c.tag, c.name))
	}
	if prev := table[c.tag]; prev != nil {
		panic(fmt.Sprintf("tag %d is already assigned to %s, cannot use it for %s", c.tag, prev.Name(), c.name))
	}
	table[c.tag] = c
	tableByName[strings.ToLower(c.name)] = c
	return c
}

// Lookup returns the codec registered for tag, or nil.
func Lookup(tag Tag) AnyCodec {
	if tag >= tagCount {
		return nil
	}
	return table[tag]
}

// ByName finds a codec by its case-insensitive name, e.g. "int32" or "AgentID".
func ByName(name string) AnyCodec {
	return tableByName[strings.ToLower(name)]
}

// All returns all registered codecs in tag order.
func All() []AnyCodec {
	result := make([]AnyCodec, 0, len(table))
	for _, c := range table {
		if c != nil {
			result = append(result, c)
		}
	}
	return result
}
