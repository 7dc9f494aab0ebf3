package datatypes

// View projects a Map onto the entries of a single tag, so the tag
// never has to be spelled in keys:
//
//	m.Registers().Get("name")   // instead of m.Get(Key{"name", TagRegister})
//	m.Counters().Add("likes")
//	m.Sets().Delete("spam")
//
// Get/Add/Delete share the parent map's semantics, including the
// auto-creation on access. Len and Each answer against the parent's
// base value only.
type View[T Datatype] struct {
	parent *Map
	tag    Tag
}

func (v *View[T]) Get(name string) (T, error) {
	d, err := v.parent.Get(Key{Name: name, Tag: v.tag})
	if err != nil {
		var zero T
		return zero, err
	}
	return d.(T), nil
}

func (v *View[T]) Add(name string) error {
	return v.parent.Add(Key{Name: name, Tag: v.tag})
}

func (v *View[T]) Delete(name string) error {
	return v.parent.Delete(Key{Name: name, Tag: v.tag})
}

func (v *View[T]) Has(name string) bool {
	ok, _ := v.parent.Has(Key{Name: name, Tag: v.tag})
	return ok
}

func (v *View[T]) Len() (count int) {
	for k := range v.parent.base {
		if k.Tag == v.tag {
			count++
		}
	}
	return
}

// Each visits the parent's base entries of this tag in name order
// until fn returns false.
func (v *View[T]) Each(fn func(name string, d T) bool) {
	for _, k := range sortKeys(v.parent.base) {
		if k.Tag != v.tag {
			continue
		}
		if !fn(k.Name, v.parent.base[k].(T)) {
			return
		}
	}
}

// The typed accessors are constructed lazily and cached per map.

func (m *Map) Counters() *View[*Counter] {
	if m.counters == nil {
		m.counters = &View[*Counter]{parent: m, tag: TagCounter}
	}
	return m.counters
}

func (m *Map) Flags() *View[*Flag] {
	if m.flags == nil {
		m.flags = &View[*Flag]{parent: m, tag: TagFlag}
	}
	return m.flags
}

func (m *Map) Registers() *View[*Register] {
	if m.registers == nil {
		m.registers = &View[*Register]{parent: m, tag: TagRegister}
	}
	return m.registers
}

func (m *Map) Sets() *View[*Set] {
	if m.sets == nil {
		m.sets = &View[*Set]{parent: m, tag: TagSet}
	}
	return m.sets
}

func (m *Map) Maps() *View[*Map] {
	if m.maps == nil {
		m.maps = &View[*Map]{parent: m, tag: TagMap}
	}
	return m.maps
}
