package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWire_sequence(t *testing.T) {
	var hash Hash
	hash[0], hash[31] = 0xAA, 0xBB

	enc := NewEncoder()
	TInt32.Encode(enc, -1234567890)
	TString.Encode(enc, "hi")
	THash.Encode(enc, hash)
	TBytes.Encode(enc, nil)
	TBool.Encode(enc, true)

	buf := enc.Buf()
	require.Equal(t, 4+(1+2)+32+1+1, len(buf))
	require.Equal(t, []byte{0x2E, 0xFD, 0x69, 0xB6, 0x02, 'h', 'i', 0xAA}, buf[:8])

	dec := NewDecoder(buf)
	require.Equal(t, int32(-1234567890), TInt32.Decode(dec))
	require.Equal(t, "hi", TString.Decode(dec))
	require.Equal(t, hash, THash.Decode(dec))
	require.Equal(t, []byte{}, TBytes.Decode(dec))
	require.Equal(t, 1, dec.Len())
	require.Equal(t, byte(1), dec.Peek())
	require.True(t, TBool.Decode(dec))
	dec.Close()
}

func TestWire_long_prefix(t *testing.T) {
	value := make([]byte, 300)
	enc := NewEncoder().Bytes(value)
	require.Equal(t, []byte{0xAC, 0x02}, enc.Buf()[:2])
	require.Equal(t, 302, enc.Len())
	require.Equal(t, value, NewDecoder(enc.Buf()).Bytes())
}

func TestDecoder_copies(t *testing.T) {
	buf := NewEncoder().Bytes([]byte{1, 2, 3}).Buf()
	got := NewDecoder(buf).Bytes()
	got[0] = 9
	require.Equal(t, byte(1), buf[1])
}

func TestDecoder_errors(t *testing.T) {
	require.Panics(t, func() { NewDecoder(nil).Byte() })
	require.Panics(t, func() { NewDecoder(nil).Peek() })
	require.Panics(t, func() { NewDecoder([]byte{5, 1, 2}).Bytes() })
	require.Panics(t, func() { NewDecoder([]byte{1, 2}).FixedBytes(3) })
	require.Panics(t, func() { NewDecoder([]byte{0x80}).Uvarint() })
	require.Panics(t, func() { TInt64.Decode(NewDecoder([]byte{1, 2, 3, 4})) })
	require.Panics(t, func() { NewEncoder().FixedBytes([]byte{1}, 2) })
}

func TestDecoder_close_extra_bytes(t *testing.T) {
	dec := NewDecoder([]byte{1, 2})
	require.Equal(t, byte(1), dec.Byte())

	defer func() {
		err, _ := recover().(*DataError)
		require.NotNil(t, err)
		require.Equal(t, 1, err.Off)
		require.Contains(t, err.Error(), "extra bytes")
	}()
	dec.Close()
}
