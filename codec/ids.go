package codec

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	HashLength      = 32
	NftIDLength     = 32
	TokenIDLength   = 38
	RequestIDLength = 34
	HnameLength     = 4

	// maxOutputIndex bounds the little-endian output index that ends a RequestID.
	maxOutputIndex = 127
)

type (
	Hash      [HashLength]byte
	NftID     [NftIDLength]byte
	TokenID   [TokenIDLength]byte
	RequestID [RequestIDLength]byte

	// Hname is a 32-bit name hash used to identify contracts and functions.
	Hname uint32
)

var (
	THash = register(newFixedID(TagHash, "Hash", HashLength,
		func(id Hash) []byte { return id[:] },
		func(buf []byte) (id Hash) { copy(id[:], buf); return },
		nil))
	TNftID = register(newFixedID(TagNftID, "NftID", NftIDLength,
		func(id NftID) []byte { return id[:] },
		func(buf []byte) (id NftID) { copy(id[:], buf); return },
		nil))
	TTokenID = register(newFixedID(TagTokenID, "TokenID", TokenIDLength,
		func(id TokenID) []byte { return id[:] },
		func(buf []byte) (id TokenID) { copy(id[:], buf); return },
		nil))
	TRequestID = register(newFixedID(TagRequestID, "RequestID", RequestIDLength,
		func(id RequestID) []byte { return id[:] },
		func(buf []byte) (id RequestID) { copy(id[:], buf); return },
		checkRequestID))

	THname = register(&scalar[Hname]{
		tag:  TagHname,
		name: "Hname",
		size: HnameLength,
		fromBytes: func(buf []byte) Hname {
			return Hname(binary.LittleEndian.Uint32(buf))
		},
		toBytes: func(value Hname) []byte {
			return binary.LittleEndian.AppendUint32(make([]byte, 0, HnameLength), uint32(value))
		},
		fromString: func(s string) Hname {
			if len(s) != 2*HnameLength {
				abortf("Hname", []byte(s), "invalid Hname string length")
			}
			v, err := strconv.ParseUint(s, 16, 32)
			if err != nil {
				abortErr("Hname", []byte(s), err, "invalid Hname string")
			}
			return Hname(v)
		},
		toString: func(value Hname) string {
			return fmt.Sprintf("%08x", uint32(value))
		},
	})
)

// newFixedID builds a codec for a fixed-size identifier whose string form is
// lowercase hex without a prefix. check, if set, validates the raw bytes
// beyond their length.
func newFixedID[T any](tag Tag, name string, size int, raw func(T) []byte, fromRaw func([]byte) T, check func(name string, buf []byte)) *scalar[T] {
	fromBytes := func(buf []byte) T {
		if check != nil {
			check(name, buf)
		}
		return fromRaw(buf)
	}
	return &scalar[T]{
		tag:       tag,
		name:      name,
		size:      size,
		fromBytes: fromBytes,
		toBytes:   raw,
		fromString: func(s string) T {
			buf := hexDecode(name, s)
			if len(buf) != size {
				abortf(name, buf, "invalid %s string length %d, expected %d hex digits", name, len(s), 2*size)
			}
			return fromBytes(buf)
		},
		toString: func(value T) string {
			return hex.EncodeToString(raw(value))
		},
	}
}

func checkRequestID(name string, buf []byte) {
	if buf[RequestIDLength-2] > maxOutputIndex || buf[RequestIDLength-1] != 0 {
		abortf(name, buf, "invalid RequestID: output index > %d", maxOutputIndex)
	}
}

// hexDecode accepts lowercase or uppercase hex, with or without a 0x prefix.
func hexDecode(typ, s string) []byte {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	buf, err := hex.DecodeString(s)
	if err != nil {
		abortErr(typ, []byte(s), err, "invalid hex string")
	}
	return buf
}

func (id Hash) Bytes() []byte       { return THash.ToBytes(id) }
func (id Hash) String() string      { return THash.ToString(id) }
func (id NftID) Bytes() []byte      { return TNftID.ToBytes(id) }
func (id NftID) String() string     { return TNftID.ToString(id) }
func (id TokenID) Bytes() []byte    { return TTokenID.ToBytes(id) }
func (id TokenID) String() string   { return TTokenID.ToString(id) }
func (id RequestID) Bytes() []byte  { return TRequestID.ToBytes(id) }
func (id RequestID) String() string { return TRequestID.ToString(id) }
func (h Hname) Bytes() []byte       { return THname.ToBytes(h) }
func (h Hname) String() string      { return THname.ToString(h) }

// HnameFromName derives the Hname of a contract or function name from the
// first four bytes of its blake2b-256 digest.
func HnameFromName(name string) Hname {
	digest := blake2b.Sum256([]byte(name))
	return Hname(binary.LittleEndian.Uint32(digest[:HnameLength]))
}
