package datatypes

// The registry is a closed set: the five tags below and nothing else.
// Map uses it to instantiate nested entries on demand.

func knownTag(tag Tag) bool {
	switch tag {
	case TagCounter, TagFlag, TagRegister, TagSet, TagMap:
		return true
	}
	return false
}

// Tags lists the known tags in ascending order.
func Tags() []Tag {
	return []Tag{TagCounter, TagFlag, TagMap, TagRegister, TagSet}
}

// New constructs a datatype of the given tag, optionally seeded with a
// fetched pure value and causal token. A nil value makes an empty
// instance.
func New(tag Tag, value any, ctx []byte) (Datatype, error) {
	switch tag {
	case TagCounter:
		return NewCounter(value, ctx)
	case TagFlag:
		return NewFlag(value, ctx)
	case TagRegister:
		return NewRegister(value, ctx)
	case TagSet:
		return NewSet(value, ctx)
	case TagMap:
		return NewMap(value, ctx)
	default:
		return nil, ErrTagUnknown
	}
}

// newEmpty is New for pre-validated tags; never fails.
func newEmpty(tag Tag) Datatype {
	d, _ := New(tag, nil, nil)
	return d
}
