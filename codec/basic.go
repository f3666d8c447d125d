package codec

import (
	"math/big"
	"slices"
)

const BoolLength = 1

const (
	boolFalse byte = 0x00
	boolTrue  byte = 0x01
)

var TBool = register(&scalar[bool]{
	tag:  TagBool,
	name: "Bool",
	size: BoolLength,
	fromBytes: func(buf []byte) bool {
		switch buf[0] {
		case boolFalse:
			return false
		case boolTrue:
			return true
		default:
			abortf("Bool", buf, "invalid Bool value")
			return false
		}
	},
	toBytes: func(value bool) []byte {
		if value {
			return []byte{boolTrue}
		}
		return []byte{boolFalse}
	},
	fromString: func(s string) bool {
		switch s {
		case "true":
			return true
		case "false":
			return false
		default:
			abortf("Bool", []byte(s), "invalid Bool string")
			return false
		}
	},
	toString: func(value bool) string {
		if value {
			return "true"
		}
		return "false"
	},
})

// TBytes holds opaque byte strings. The string form is the raw bytes.
var TBytes = register(&scalar[[]byte]{
	tag:  TagBytes,
	name: "Bytes",
	zero: func() []byte {
		return []byte{}
	},
	fromBytes:  func(buf []byte) []byte { return slices.Clone(buf) },
	toBytes:    func(value []byte) []byte { return slices.Clone(value) },
	fromString: func(s string) []byte { return []byte(s) },
	toString:   func(value []byte) string { return string(value) },
})

var TString = register(&scalar[string]{
	tag:        TagString,
	name:       "String",
	fromBytes:  func(buf []byte) string { return string(buf) },
	toBytes:    func(value string) []byte { return []byte(value) },
	fromString: func(s string) string { return s },
	toString:   func(value string) string { return value },
})

// TBigInt holds non-negative arbitrary-precision integers as a minimal
// big-endian magnitude; zero is the empty buffer.
var TBigInt = register(&scalar[*big.Int]{
	tag:  TagBigInt,
	name: "BigInt",
	zero: func() *big.Int {
		return new(big.Int)
	},
	fromBytes: func(buf []byte) *big.Int {
		return new(big.Int).SetBytes(buf)
	},
	toBytes: func(value *big.Int) []byte {
		if value == nil {
			return []byte{}
		}
		if value.Sign() < 0 {
			abortf("BigInt", nil, "negative BigInt %s", value.String())
		}
		return value.Bytes()
	},
	fromString: func(s string) *big.Int {
		value, ok := new(big.Int).SetString(s, 10)
		if !ok {
			abortf("BigInt", []byte(s), "invalid BigInt string")
		}
		if value.Sign() < 0 {
			abortf("BigInt", []byte(s), "negative BigInt string")
		}
		return value
	},
	toString: func(value *big.Int) string {
		if value == nil {
			return "0"
		}
		return value.String()
	},
})
