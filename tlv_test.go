package datatypes

import (
	"testing"

	"github.com/drpcorg/datatypes/protocol"
	"github.com/stretchr/testify/assert"
)

func TestCounterOpTLV(t *testing.T) {
	tlv := OpTLV(CounterOp(3))
	// short form: lowercase 'c' header, 1-byte zigzag body
	assert.Equal(t, []byte{'c', 1, 6}, tlv)

	op, err := OpFromTLV(tlv)
	assert.Nil(t, err)
	assert.Equal(t, CounterOp(3), op)
}

func TestKeyTLV(t *testing.T) {
	tlv := KeyTLV(Key{Name: "n", Tag: TagCounter})
	assert.Equal(t, []byte{'k', 2, 'C', 'n'}, tlv)
}

func TestSetOpRoundtrip(t *testing.T) {
	s, err := NewSet(nil, nil)
	assert.Nil(t, err)
	s.Add("b")
	s.Add("a")
	s.Discard("x")

	op, err := OpFromTLV(OpTLV(s.ToOp()))
	assert.Nil(t, err)
	assert.Equal(t, &SetOp{Adds: []string{"a", "b"}, Removes: []string{"x"}}, op)
}

func TestMapOpRoundtrip(t *testing.T) {
	m, err := NewMap(nil, nil)
	assert.Nil(t, err)
	r, err := m.Registers().Get("name")
	assert.Nil(t, err)
	r.Assign("Ann")
	inner, err := m.Maps().Get("prefs")
	assert.Nil(t, err)
	f, err := inner.Flags().Get("dark")
	assert.Nil(t, err)
	f.Enable()
	assert.Nil(t, m.Delete(Key{Name: "spam", Tag: TagSet}))

	op, err := OpFromTLV(OpTLV(m.ToOp()))
	assert.Nil(t, err)
	assert.Equal(t, m.ToOp(), op)
}

func TestValueRoundtrip(t *testing.T) {
	value := map[Key]any{
		{Name: "likes", Tag: TagCounter}: int64(3),
		{Name: "name", Tag: TagRegister}: "Bob",
		{Name: "tags", Tag: TagSet}:      []string{"a", "b"},
		{Name: "on", Tag: TagFlag}:       true,
		{Name: "sub", Tag: TagMap}: map[Key]any{
			{Name: "x", Tag: TagCounter}: int64(1),
		},
	}
	tlv, err := ValueTLV(TagMap, value)
	assert.Nil(t, err)
	tag, decoded, err := ValueFromTLV(tlv)
	assert.Nil(t, err)
	assert.Equal(t, TagMap, tag)
	assert.Equal(t, value, decoded)
}

func TestValueTLVDeterministic(t *testing.T) {
	value := map[Key]any{
		{Name: "b", Tag: TagCounter}: int64(1),
		{Name: "a", Tag: TagCounter}: int64(2),
	}
	one, err := ValueTLV(TagMap, value)
	assert.Nil(t, err)
	two, err := ValueTLV(TagMap, value)
	assert.Nil(t, err)
	assert.Equal(t, one, two)
}

func TestOpFromTLVBadPayload(t *testing.T) {
	_, err := OpFromTLV([]byte{'z', 1, 0})
	assert.NotNil(t, err)

	_, err = OpFromTLV(protocol.Record('M', protocol.Record('U', []byte("junk"))))
	assert.NotNil(t, err)
}
