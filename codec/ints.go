package codec

import (
	"encoding/binary"
	"strconv"
	"strings"
)

type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

const (
	Int8Length   = 1
	Int16Length  = 2
	Int32Length  = 4
	Int64Length  = 8
	Uint8Length  = 1
	Uint16Length = 2
	Uint32Length = 4
	Uint64Length = 8
)

var (
	TInt8   = register(newInt[int8](TagInt8, "Int8", Int8Length))
	TInt16  = register(newInt[int16](TagInt16, "Int16", Int16Length))
	TInt32  = register(newInt[int32](TagInt32, "Int32", Int32Length))
	TInt64  = register(newInt[int64](TagInt64, "Int64", Int64Length))
	TUint8  = register(newInt[uint8](TagUint8, "Uint8", Uint8Length))
	TUint16 = register(newInt[uint16](TagUint16, "Uint16", Uint16Length))
	TUint32 = register(newInt[uint32](TagUint32, "Uint32", Uint32Length))
	TUint64 = register(newInt[uint64](TagUint64, "Uint64", Uint64Length))
)

func isSigned[T Integer]() bool {
	var zero T
	return zero-1 < 0
}

// newInt builds a little-endian two's complement codec for T.
func newInt[T Integer](tag Tag, name string, size int) *scalar[T] {
	signed := isSigned[T]()
	bits := size * 8
	return &scalar[T]{
		tag:  tag,
		name: name,
		size: size,
		fromBytes: func(buf []byte) T {
			var tmp [8]byte
			copy(tmp[:], buf)
			return T(binary.LittleEndian.Uint64(tmp[:]))
		},
		toBytes: func(value T) []byte {
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], uint64(value))
			return tmp[:size:size]
		},
		fromString: func(s string) T {
			if signed {
				v, err := strconv.ParseInt(s, 10, bits)
				if err != nil {
					abortErr(name, []byte(s), err, "invalid "+name+" string")
				}
				return T(v)
			}
			v, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, bits)
			if err != nil {
				abortErr(name, []byte(s), err, "invalid "+name+" string")
			}
			return T(v)
		},
		toString: func(value T) string {
			if signed {
				return strconv.FormatInt(int64(value), 10)
			}
			return strconv.FormatUint(uint64(value), 10)
		},
	}
}
