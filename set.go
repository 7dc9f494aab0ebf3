package datatypes

import (
	"fmt"

	"github.com/drpcorg/datatypes/utils"
)

// Set is an unordered convergent collection of strings. Adds and
// removes queue independently; when both target the same element the
// dirty view lets the add win. It can stand on its own or be embedded
// in a Map.
//
// Contains, Len and Each answer against the base value only; callers
// who need local mutations folded in use DirtyValue explicitly.
type Set struct {
	causal
	base    map[string]struct{}
	adds    map[string]struct{}
	removes map[string]struct{}
}

// NewSet seeds a set from a fetched pure value ([]string or compatible
// forms) and its causal token. A nil value makes a fresh empty set.
// Each instance allocates its own containers; nothing is shared.
func NewSet(value any, ctx []byte) (*Set, error) {
	s := &Set{
		causal:  causal{ctx: ctx},
		base:    make(map[string]struct{}),
		adds:    make(map[string]struct{}),
		removes: make(map[string]struct{}),
	}
	if value != nil {
		elems, ok := asStrings(value)
		if !ok {
			return nil, ErrTypeMismatch
		}
		for _, e := range elems {
			s.base[e] = struct{}{}
		}
	}
	return s, nil
}

func (s *Set) Tag() Tag { return TagSet }

// Add queues an element addition. Adding an element already in the
// base value is a valid membership assertion, not an error.
func (s *Set) Add(element string) {
	s.adds[element] = struct{}{}
}

// Discard queues an element removal. Removing an absent element is
// accepted here; the store may reject it based on the causal context.
func (s *Set) Discard(element string) {
	s.removes[element] = struct{}{}
}

// Contains answers against the base value only.
func (s *Set) Contains(element string) bool {
	_, ok := s.base[element]
	return ok
}

// Len is the size of the base value.
func (s *Set) Len() int { return len(s.base) }

// Each visits base elements in ascending order until fn returns false.
func (s *Set) Each(fn func(element string) bool) {
	for _, e := range utils.SortedKeys(s.base) {
		if !fn(e) {
			return
		}
	}
}

// Value returns a sorted copy of the base value.
func (s *Set) Value() []string {
	return utils.SortedKeys(s.base)
}

// DirtyValue returns a sorted copy of (base - removes) + adds.
func (s *Set) DirtyValue() []string {
	dirty := make(map[string]struct{}, len(s.base)+len(s.adds))
	for e := range s.base {
		dirty[e] = struct{}{}
	}
	for e := range s.removes {
		delete(dirty, e)
	}
	for e := range s.adds {
		dirty[e] = struct{}{}
	}
	return utils.SortedKeys(dirty)
}

func (s *Set) Native() any      { return s.Value() }
func (s *Set) DirtyNative() any { return s.DirtyValue() }

func (s *Set) ToOp() Op {
	if len(s.adds) == 0 && len(s.removes) == 0 {
		return nil
	}
	op := &SetOp{}
	if len(s.adds) > 0 {
		op.Adds = utils.SortedKeys(s.adds)
	}
	if len(s.removes) > 0 {
		op.Removes = utils.SortedKeys(s.removes)
	}
	return op
}

func (s *Set) String() string {
	return fmt.Sprintf("%v", s.DirtyValue())
}
