package codec

import (
	"encoding/binary"
)

// Encoder builds the length-framed wire buffer shared by all values of a single
// call's parameter or result blob. Values are concatenated in declared order
// without padding; variable-length values are prefixed with a uvarint length.
type Encoder struct {
	buf []byte
}

func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 128)}
}

// Buf returns the encoded bytes. The encoder can still be appended to.
func (enc *Encoder) Buf() []byte {
	return enc.buf
}

func (enc *Encoder) Len() int {
	return len(enc.buf)
}

func (enc *Encoder) Byte(value byte) *Encoder {
	enc.buf = append(enc.buf, value)
	return enc
}

// Bytes appends a uvarint length followed by the value.
func (enc *Encoder) Bytes(value []byte) *Encoder {
	enc.buf = binary.AppendUvarint(enc.buf, uint64(len(value)))
	enc.buf = append(enc.buf, value...)
	return enc
}

// FixedBytes appends exactly size bytes. Anything else is a caller bug.
func (enc *Encoder) FixedBytes(value []byte, size int) *Encoder {
	if len(value) != size {
		abortf("", value, "invalid fixed bytes length %d, expected %d", len(value), size)
	}
	enc.buf = append(enc.buf, value...)
	return enc
}

func (enc *Encoder) Uvarint(value uint64) *Encoder {
	enc.buf = binary.AppendUvarint(enc.buf, value)
	return enc
}

// Decoder reads values back from a wire buffer produced by Encoder.
type Decoder struct {
	orig []byte
	buf  []byte
}

func NewDecoder(buf []byte) *Decoder {
	return &Decoder{orig: buf, buf: buf}
}

func (dec *Decoder) off() int {
	return len(dec.orig) - len(dec.buf)
}

func (dec *Decoder) fail(format string, args ...any) {
	panic(dataErrf("", dec.orig, dec.off(), nil, format, args...))
}

// Len returns the number of bytes left.
func (dec *Decoder) Len() int {
	return len(dec.buf)
}

func (dec *Decoder) Byte() byte {
	if len(dec.buf) == 0 {
		dec.fail("insufficient bytes")
	}
	value := dec.buf[0]
	dec.buf = dec.buf[1:]
	return value
}

// Peek returns the next byte without consuming it.
func (dec *Decoder) Peek() byte {
	if len(dec.buf) == 0 {
		dec.fail("insufficient peek bytes")
	}
	return dec.buf[0]
}

// Bytes reads a uvarint length followed by that many bytes. The result is a
// copy and does not alias the decoder's buffer.
func (dec *Decoder) Bytes() []byte {
	n := dec.Uvarint()
	if n > uint64(len(dec.buf)) {
		dec.fail("not enough data: %d bytes remaining, %d wanted", len(dec.buf), n)
	}
	return dec.FixedBytes(int(n))
}

func (dec *Decoder) FixedBytes(size int) []byte {
	if size < 0 || len(dec.buf) < size {
		dec.fail("insufficient fixed bytes: %d bytes remaining, %d wanted", len(dec.buf), size)
	}
	value := make([]byte, size)
	copy(value, dec.buf[:size])
	dec.buf = dec.buf[size:]
	return value
}

func (dec *Decoder) Uvarint() uint64 {
	v, n := binary.Uvarint(dec.buf)
	if n <= 0 {
		dec.fail("invalid uvarint")
	}
	dec.buf = dec.buf[n:]
	return v
}

// Close aborts if any bytes remain unread.
func (dec *Decoder) Close() {
	if len(dec.buf) != 0 {
		dec.fail("extra bytes: %d left", len(dec.buf))
	}
}
