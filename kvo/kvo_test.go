package kvo

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreyvit/scstate/codec"
)

func setup() (Dict, Location) {
	d := make(Dict)
	return d, NewLocation(d, []byte("state."))
}

func TestLocation_composition(t *testing.T) {
	_, root := setup()

	require.Equal(t, []byte("state.\x05\x00\x00\x00"), root.Index(5).Path())
	require.Equal(t, []byte("state.abc"), root.Key([]byte("abc")).Path())
	require.True(t, root.Field("abc").Equal(root.Key([]byte("abc"))))
	require.False(t, root.Index(1).Equal(root.Index(2)))

	a := root.Field("a")
	b1 := a.Index(1)
	b2 := a.Index(2)
	require.Equal(t, []byte("state.a"), a.Path())
	require.Equal(t, []byte("state.a\x01\x00\x00\x00"), b1.Path())
	require.Equal(t, []byte("state.a\x02\x00\x00\x00"), b2.Path())

	p := a.Path()
	p[0] = 'X'
	require.Equal(t, []byte("state.a"), a.Path())
}

func TestLocation_root_is_copied(t *testing.T) {
	d := make(Dict)
	root := []byte("r")
	l := NewLocation(d, root)
	root[0] = 'x'
	require.Equal(t, "72", l.String())
	require.Equal(t, "<root>", d.Root().String())
}

func TestLocation_get_set(t *testing.T) {
	d, root := setup()
	l := root.Field("x")
	require.False(t, l.Exists())
	require.Nil(t, l.Get())

	l.Set([]byte{1})
	require.True(t, l.Exists())
	require.Equal(t, []byte{1}, d["state.x"])

	l.Set(nil)
	require.False(t, l.Exists())
	require.Empty(t, d)

	l.Set([]byte{2})
	l.Delete()
	require.Empty(t, d)
}

func TestLocation_length(t *testing.T) {
	d, root := setup()
	l := root.Field("arr")
	require.Equal(t, uint32(0), l.Length())
	l.SetLength(3)
	require.Equal(t, []byte{3, 0, 0, 0}, d["state.arr"])
	require.Equal(t, uint32(3), l.Length())
	l.SetLength(0)
	require.Empty(t, d)

	d["state.bad"] = []byte{1, 2}
	require.Panics(t, func() { root.Field("bad").Length() })
}

func TestLocation_ClearContainer(t *testing.T) {
	d, root := setup()
	l := root.Field("arr")
	l.SetLength(2)
	l.Index(0).Set([]byte("a"))
	l.Index(1).Set([]byte("b"))
	root.Field("other").Set([]byte("keep"))

	l.ClearContainer()
	require.Equal(t, Dict{"state.other": []byte("keep")}, d)
}

func TestScalar(t *testing.T) {
	d, root := setup()
	v := NewMutable(root.Field("n"), codec.TInt32)
	require.False(t, v.Exists())
	require.Equal(t, int32(0), v.Value())
	require.Equal(t, "0", v.String())

	v.SetValue(-1234567890)
	require.True(t, v.Exists())
	require.Equal(t, []byte{0x2E, 0xFD, 0x69, 0xB6}, d["state.n"])
	require.Equal(t, int32(-1234567890), v.Immutable().Value())
	require.Equal(t, "-1234567890", v.String())

	v.Delete()
	require.False(t, v.Immutable().Exists())
}

func TestScalar_empty_value_deletes(t *testing.T) {
	d, root := setup()
	s := NewMutable(root.Field("s"), codec.TString)
	s.SetValue("x")
	require.True(t, s.Exists())
	s.SetValue("")
	require.False(t, s.Exists())
	require.Empty(t, d)

	b := NewMutable(root.Field("b"), codec.TBigInt)
	b.SetValue(big.NewInt(0))
	require.Empty(t, d)
	b.SetValue(big.NewInt(500))
	require.Equal(t, "500", b.String())
}

func TestScalar_no_caching(t *testing.T) {
	d, root := setup()
	v := NewImmutable(root.Field("flag"), codec.TBool)
	require.False(t, v.Value())
	d["state.flag"] = []byte{1}
	require.True(t, v.Value())
}

func TestUntyped(t *testing.T) {
	d, root := setup()
	v := NewUntyped(root.Field("h"), codec.ByName("hname"))
	v.SetString("1f44d644")
	require.Equal(t, []byte{0x44, 0xd6, 0x44, 0x1f}, d["state.h"])
	require.Equal(t, "1f44d644", v.String())
	require.Equal(t, codec.Hname(0x1f44d644), v.Value())
	require.Equal(t, d["state.h"], v.Bytes())
	require.Same(t, codec.Lookup(codec.TagHname), v.Codec())
	v.Delete()
	require.False(t, v.Exists())
}

func TestDict_wire(t *testing.T) {
	d := Dict{"b": []byte{2}, "a": []byte{1, 1}}
	buf := d.Bytes()
	require.Equal(t, []byte{2, 1, 'a', 2, 1, 1, 1, 'b', 1, 2}, buf)
	require.Equal(t, d, DictFromBytes(buf))
	require.Equal(t, []string{"a", "b"}, d.Keys())

	require.Equal(t, Dict{}, DictFromBytes(nil))
	require.Equal(t, []byte{0}, Dict{}.Bytes())
	require.Panics(t, func() { DictFromBytes([]byte{1, 1}) })
	require.Panics(t, func() { DictFromBytes(append(buf, 0)) })
}

func TestDict_copies_values(t *testing.T) {
	d := make(Dict)
	v := []byte{1}
	d.Set([]byte("k"), v)
	v[0] = 2
	require.Equal(t, []byte{1}, d.Get([]byte("k")))

	c := d.Clone()
	c["k"][0] = 3
	require.Equal(t, []byte{1}, d["k"])
}

func TestDump(t *testing.T) {
	d := Dict{"name": []byte("Alice"), "n\x00": []byte{1, 2}, "e": nil}
	require.Equal(t, "\"e\" = <empty>\n6e00 = 0102\n\"name\" = \"Alice\"\n", d.Dump())
}
