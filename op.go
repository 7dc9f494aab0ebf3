package datatypes

// Op is a serializable description of queued local mutations, the
// payload handed to the store for merging. The concrete shapes:
// CounterOp (signed delta), FlagOp, RegisterOp, SetOp (add/remove
// lists) and MapOp (an ordered list of tagged entries whose update
// entries recurse).
type Op interface {
	OpTag() Tag
}

type CounterOp int64

func (CounterOp) OpTag() Tag { return TagCounter }

type FlagOp bool

func (FlagOp) OpTag() Tag { return TagFlag }

type RegisterOp string

func (RegisterOp) OpTag() Tag { return TagRegister }

// SetOp lists queued additions and removals; both lists are sorted so
// payloads are deterministic.
type SetOp struct {
	Adds    []string
	Removes []string
}

func (*SetOp) OpTag() Tag { return TagSet }

// Verb tags a MapOp entry.
type Verb byte

const (
	VerbAdd    Verb = 'A'
	VerbRemove Verb = 'D'
	VerbUpdate Verb = 'U'
)

// MapEntry is one step of a map operation; Op is set for VerbUpdate
// entries only.
type MapEntry struct {
	Verb Verb
	Key  Key
	Op   Op
}

// MapOp carries map entries in a fixed order: adds, removes, updates
// of base entries, updates of freshly created entries, each group
// sorted by key.
type MapOp []MapEntry

func (MapOp) OpTag() Tag { return TagMap }
