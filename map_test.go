package datatypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapGetCreates(t *testing.T) {
	m, err := NewMap(nil, nil)
	assert.Nil(t, err)

	k := Key{Name: "x", Tag: TagCounter}
	d, err := m.Get(k)
	assert.Nil(t, err)
	c := d.(*Counter)
	assert.Equal(t, int64(0), c.Value())

	ok, err := m.Has(k)
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, m.Len(), "base value stays empty")
}

func TestMapAddResetsLocalEntry(t *testing.T) {
	m, err := NewMap(nil, nil)
	assert.Nil(t, err)

	k := Key{Name: "x", Tag: TagCounter}
	c, err := m.Counters().Get("x")
	assert.Nil(t, err)
	c.Increment(3)

	// re-adding a locally created key discards the queued mutation
	assert.Nil(t, m.Add(k))
	assert.Equal(t, MapOp{{Verb: VerbAdd, Key: k}}, m.ToOp())
}

func TestMapReaccessResetsLocalEntry(t *testing.T) {
	m, err := NewMap(nil, nil)
	assert.Nil(t, err)

	r, err := m.Registers().Get("name")
	assert.Nil(t, err)
	r.Assign("Ann")
	assert.Equal(t, "Ann", r.DirtyValue())

	// get on a non-base key goes through Add, so the entry starts over;
	// only the instance Get handed out keeps the mutation
	again, err := m.Registers().Get("name")
	assert.Nil(t, err)
	assert.Equal(t, "", again.DirtyValue())
}

func TestMapDeleteUndoneByGet(t *testing.T) {
	m, err := NewMap(nil, nil)
	assert.Nil(t, err)

	k := Key{Name: "n", Tag: TagFlag}
	assert.Nil(t, m.Add(k))
	assert.Nil(t, m.Delete(k))
	ok, _ := m.Has(k)
	assert.False(t, ok)

	_, err = m.Get(k)
	assert.Nil(t, err)
	ok, _ = m.Has(k)
	assert.True(t, ok)

	op := m.ToOp().(MapOp)
	for _, e := range op {
		assert.NotEqual(t, VerbRemove, e.Verb)
	}
}

func TestMapDeleteDiscardsNestedMutation(t *testing.T) {
	m, err := NewMap(nil, nil)
	assert.Nil(t, err)

	c, err := m.Counters().Get("likes")
	assert.Nil(t, err)
	c.Increment(3)
	assert.Nil(t, m.Counters().Delete("likes"))

	op := m.ToOp().(MapOp)
	assert.Equal(t, MapOp{{Verb: VerbRemove, Key: Key{Name: "likes", Tag: TagCounter}}}, op)
}

func TestMapInvalidKey(t *testing.T) {
	m, err := NewMap(nil, nil)
	assert.Nil(t, err)

	bad := Key{Name: "x", Tag: "blob"}
	_, err = m.Get(bad)
	assert.Equal(t, ErrInvalidKey, err)
	assert.Equal(t, ErrInvalidKey, m.Add(bad))
	assert.Equal(t, ErrInvalidKey, m.Delete(bad))
	_, err = m.Has(bad)
	assert.Equal(t, ErrInvalidKey, err)
}

func TestMapRegisterUpdateOp(t *testing.T) {
	m, err := NewMap(nil, nil)
	assert.Nil(t, err)

	r, err := m.Registers().Get("name")
	assert.Nil(t, err)
	r.Assign("Ann")

	// auto-created entries serialize the explicit add ahead of the update
	k := Key{Name: "name", Tag: TagRegister}
	op := m.ToOp().(MapOp)
	assert.Equal(t, MapOp{
		{Verb: VerbAdd, Key: k},
		{Verb: VerbUpdate, Key: k, Op: RegisterOp("Ann")},
	}, op)
}

func TestMapSeededDelete(t *testing.T) {
	k := Key{Name: "n", Tag: TagCounter}
	m, err := NewMap(map[Key]any{k: int64(10)}, []byte{9})
	assert.Nil(t, err)
	assert.Equal(t, map[Key]any{k: int64(10)}, m.Value())

	assert.Nil(t, m.Delete(k))
	assert.Equal(t, map[Key]any{}, m.DirtyValue())
	assert.Equal(t, MapOp{{Verb: VerbRemove, Key: k}}, m.ToOp())
}

func TestMapSeededNestedMutation(t *testing.T) {
	k := Key{Name: "n", Tag: TagCounter}
	m, err := NewMap(map[Key]any{k: int64(10)}, nil)
	assert.Nil(t, err)

	d, err := m.Get(k)
	assert.Nil(t, err)
	d.(*Counter).Increment(5)

	assert.Equal(t, map[Key]any{k: int64(10)}, m.Value(), "base value must not move")
	assert.Equal(t, map[Key]any{k: int64(15)}, m.DirtyValue())
	// mutating a base entry queues an update but no add
	assert.Equal(t, MapOp{{Verb: VerbUpdate, Key: k, Op: CounterOp(5)}}, m.ToOp())
}

func TestMapRecursiveDirtyValue(t *testing.T) {
	m, err := NewMap(nil, nil)
	assert.Nil(t, err)

	inner, err := m.Maps().Get("profile")
	assert.Nil(t, err)
	r, err := inner.Registers().Get("email")
	assert.Nil(t, err)
	r.Assign("user@example.com")
	f, err := inner.Flags().Get("confirmed")
	assert.Nil(t, err)
	f.Enable()

	dv := m.DirtyValue()
	nested := dv[Key{Name: "profile", Tag: TagMap}].(map[Key]any)
	assert.Equal(t, "user@example.com", nested[Key{Name: "email", Tag: TagRegister}])
	assert.Equal(t, true, nested[Key{Name: "confirmed", Tag: TagFlag}])
}

func TestMapOpOrderDeterministic(t *testing.T) {
	m, err := NewMap(nil, nil)
	assert.Nil(t, err)
	assert.Nil(t, m.Add(Key{Name: "b", Tag: TagSet}))
	assert.Nil(t, m.Add(Key{Name: "a", Tag: TagSet}))
	assert.Nil(t, m.Delete(Key{Name: "c", Tag: TagFlag}))

	op := m.ToOp().(MapOp)
	assert.Equal(t, MapOp{
		{Verb: VerbAdd, Key: Key{Name: "a", Tag: TagSet}},
		{Verb: VerbAdd, Key: Key{Name: "b", Tag: TagSet}},
		{Verb: VerbRemove, Key: Key{Name: "c", Tag: TagFlag}},
	}, op)
	assert.Equal(t, m.ToOp(), m.ToOp())
}

func TestMapViewsBaseOnlyIteration(t *testing.T) {
	m, err := NewMap(map[Key]any{
		{Name: "likes", Tag: TagCounter}: int64(3),
		{Name: "views", Tag: TagCounter}: int64(7),
		{Name: "name", Tag: TagRegister}: "Bob",
	}, nil)
	assert.Nil(t, err)

	assert.Equal(t, 2, m.Counters().Len())
	assert.Equal(t, 1, m.Registers().Len())
	assert.Equal(t, 0, m.Flags().Len())

	var names []string
	m.Counters().Each(func(name string, c *Counter) bool {
		names = append(names, name)
		return true
	})
	assert.Equal(t, []string{"likes", "views"}, names)

	// locally created entries do not show up in base iteration
	_, err = m.Flags().Get("admin")
	assert.Nil(t, err)
	assert.Equal(t, 0, m.Flags().Len())
	assert.True(t, m.Flags().Has("admin"))
}

func TestMapViewIsCached(t *testing.T) {
	m, err := NewMap(nil, nil)
	assert.Nil(t, err)
	assert.Same(t, m.Counters(), m.Counters())
}

func TestMapSeedMismatch(t *testing.T) {
	_, err := NewMap("nope", nil)
	assert.Equal(t, ErrTypeMismatch, err)

	_, err = NewMap(map[Key]any{{Name: "x", Tag: "blob"}: 1}, nil)
	assert.Equal(t, ErrInvalidKey, err)

	_, err = NewMap(map[Key]any{{Name: "x", Tag: TagCounter}: "one"}, nil)
	assert.Equal(t, ErrTypeMismatch, err)
}

func TestMapFreshToOpAbsent(t *testing.T) {
	m, err := NewMap(nil, nil)
	assert.Nil(t, err)
	assert.Nil(t, m.ToOp())
}
