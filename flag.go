package datatypes

import "strconv"

// Flag is a convergent boolean that can be enabled or disabled. Flags
// are only meaningful as Map entries.
type Flag struct {
	causal
	base    bool
	pending bool
	queued  bool
}

// NewFlag seeds a flag from a fetched pure value (bool) and its causal
// token. A nil value makes a fresh disabled flag.
func NewFlag(value any, ctx []byte) (*Flag, error) {
	f := &Flag{causal: causal{ctx: ctx}}
	if value != nil {
		b, ok := value.(bool)
		if !ok {
			return nil, ErrTypeMismatch
		}
		f.base = b
	}
	return f, nil
}

func (f *Flag) Tag() Tag { return TagFlag }

// Value returns the base value as fetched.
func (f *Flag) Value() bool { return f.base }

// DirtyValue returns the pending state if one is queued, the base
// value otherwise.
func (f *Flag) DirtyValue() bool {
	if f.queued {
		return f.pending
	}
	return f.base
}

// Enable queues setting the flag to true. Last call wins.
func (f *Flag) Enable() {
	f.pending, f.queued = true, true
}

// Disable queues setting the flag to false. Last call wins.
func (f *Flag) Disable() {
	f.pending, f.queued = false, true
}

func (f *Flag) Native() any      { return f.Value() }
func (f *Flag) DirtyNative() any { return f.DirtyValue() }

func (f *Flag) ToOp() Op {
	if !f.queued {
		return nil
	}
	return FlagOp(f.pending)
}

func (f *Flag) String() string {
	return strconv.FormatBool(f.DirtyValue())
}
