package datatypes

import (
	"fmt"
	"sort"
)

// Key addresses a Map entry: a name paired with the tag of the
// convergent type stored under it. The same name may appear under
// several tags simultaneously.
type Key struct {
	Name string
	Tag  Tag
}

// Valid reports whether the key's tag belongs to the registry. The
// name itself is unrestricted.
func (k Key) Valid() bool { return knownTag(k.Tag) }

func (k Key) String() string { return fmt.Sprintf("(%s,%s)", k.Name, k.Tag) }

// Map is a recursive convergent container keyed by (name, tag) pairs;
// entries are themselves convergent datatypes, including nested maps.
//
// Get is not a pure read: a missing key is created empty on access,
// and accessing a key clears any queued removal of it. Producer code
// relies on that auto-vivification, so it is part of the contract.
//
// Has answers against base and locally created entries; Len, Each and
// Keys answer against the base value only.
type Map struct {
	causal
	base    map[Key]Datatype
	adds    map[Key]struct{}
	removes map[Key]struct{}
	updates map[Key]Datatype

	counters  *View[*Counter]
	flags     *View[*Flag]
	registers *View[*Register]
	sets      *View[*Set]
	maps      *View[*Map]
}

// NewMap seeds a map from a fetched pure value (map[Key]any with
// nested pure values) and its causal token; nested entries are coerced
// recursively. A nil value makes a fresh empty map. Each instance
// allocates its own containers; nothing is shared.
func NewMap(value any, ctx []byte) (*Map, error) {
	m := &Map{
		causal:  causal{ctx: ctx},
		base:    make(map[Key]Datatype),
		adds:    make(map[Key]struct{}),
		removes: make(map[Key]struct{}),
		updates: make(map[Key]Datatype),
	}
	if value != nil {
		kv, ok := value.(map[Key]any)
		if !ok {
			return nil, ErrTypeMismatch
		}
		for k, v := range kv {
			if !k.Valid() {
				return nil, ErrInvalidKey
			}
			nested, err := New(k.Tag, v, nil)
			if err != nil {
				return nil, err
			}
			m.base[k] = nested
		}
	}
	return m, nil
}

func (m *Map) Tag() Tag { return TagMap }

// Get returns the entry under the key, checking it out for mutation.
// A key absent from the base value is implicitly added (see Add) and
// its fresh empty entry returned; any queued removal of the key is
// discarded. Mutations queued on a locally created entry do not
// survive re-access; keep mutating the instance Get handed out.
func (m *Map) Get(key Key) (Datatype, error) {
	if !key.Valid() {
		return nil, ErrInvalidKey
	}
	delete(m.removes, key)
	if d, ok := m.base[key]; ok {
		return d, nil
	}
	if err := m.Add(key); err != nil {
		return nil, err
	}
	return m.updates[key], nil
}

// Add asserts that the key exists. A key absent from the base value is
// stored as a fresh empty entry of its tagged type, discarding any
// mutation queued on a previously created entry. Clears any queued
// removal and records the key as added.
func (m *Map) Add(key Key) error {
	if !key.Valid() {
		return ErrInvalidKey
	}
	if _, inBase := m.base[key]; !inBase {
		m.updates[key] = newEmpty(key.Tag)
	}
	delete(m.removes, key)
	m.adds[key] = struct{}{}
	return nil
}

// Delete queues a removal of the key, discarding any locally queued
// mutation of its entry. Keys absent from the base value may be
// deleted; the store judges the removal's safety using the causal
// context.
func (m *Map) Delete(key Key) error {
	if !key.Valid() {
		return ErrInvalidKey
	}
	delete(m.adds, key)
	delete(m.updates, key)
	m.removes[key] = struct{}{}
	return nil
}

// Has reports whether the key is in the base value or was created
// locally.
func (m *Map) Has(key Key) (bool, error) {
	if !key.Valid() {
		return false, ErrInvalidKey
	}
	if _, ok := m.base[key]; ok {
		return true, nil
	}
	_, ok := m.updates[key]
	return ok, nil
}

// Len is the size of the base value.
func (m *Map) Len() int { return len(m.base) }

// Keys returns the base keys in ascending (name, tag) order.
func (m *Map) Keys() []Key {
	return sortKeys(m.base)
}

// Each visits base entries in key order until fn returns false.
func (m *Map) Each(fn func(key Key, d Datatype) bool) {
	for _, k := range sortKeys(m.base) {
		if !fn(k, m.base[k]) {
			return
		}
	}
}

// Value returns a copy of the base value with nested entries in pure
// form.
func (m *Map) Value() map[Key]any {
	pv := make(map[Key]any, len(m.base))
	for k, d := range m.base {
		pv[k] = d.Native()
	}
	return pv
}

// DirtyValue folds local mutations in recursively: every entry
// contributes its own dirty value, locally created entries overlay the
// base, removed keys drop out.
func (m *Map) DirtyValue() map[Key]any {
	dv := make(map[Key]any, len(m.base)+len(m.updates))
	for k, d := range m.base {
		dv[k] = d.DirtyNative()
	}
	for k, d := range m.updates {
		dv[k] = d.DirtyNative()
	}
	for k := range m.removes {
		delete(dv, k)
	}
	return dv
}

func (m *Map) Native() any      { return m.Value() }
func (m *Map) DirtyNative() any { return m.DirtyValue() }

// ToOp concatenates, in a fixed order: add entries, remove entries,
// update entries for base entries with queued mutations, then update
// entries for locally created ones. Nil when all four groups are
// empty.
func (m *Map) ToOp() Op {
	var entries MapOp
	for _, k := range sortKeys(m.adds) {
		entries = append(entries, MapEntry{Verb: VerbAdd, Key: k})
	}
	for _, k := range sortKeys(m.removes) {
		entries = append(entries, MapEntry{Verb: VerbRemove, Key: k})
	}
	for _, k := range sortKeys(m.base) {
		if op := m.base[k].ToOp(); op != nil {
			entries = append(entries, MapEntry{Verb: VerbUpdate, Key: k, Op: op})
		}
	}
	for _, k := range sortKeys(m.updates) {
		if op := m.updates[k].ToOp(); op != nil {
			entries = append(entries, MapEntry{Verb: VerbUpdate, Key: k, Op: op})
		}
	}
	if len(entries) == 0 {
		return nil
	}
	return entries
}

func (m *Map) String() string {
	return fmt.Sprintf("%v", m.DirtyValue())
}

// sortKeys orders map keys by name, then tag, for deterministic
// payloads and iteration.
func sortKeys[V any](m map[Key]V) []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Tag < keys[j].Tag
	})
	return keys
}
