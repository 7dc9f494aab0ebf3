package datatypes

// Register is an opaque string replaced with last-write-wins
// semantics. Registers are only meaningful as Map entries.
type Register struct {
	causal
	base    string
	pending string
	queued  bool
}

// NewRegister seeds a register from a fetched pure value (string) and
// its causal token. A nil value makes a fresh empty register.
func NewRegister(value any, ctx []byte) (*Register, error) {
	r := &Register{causal: causal{ctx: ctx}}
	if value != nil {
		s, ok := value.(string)
		if !ok {
			return nil, ErrTypeMismatch
		}
		r.base = s
	}
	return r, nil
}

func (r *Register) Tag() Tag { return TagRegister }

// Value returns the base value as fetched.
func (r *Register) Value() string { return r.base }

// DirtyValue returns the pending replacement if one is queued, the
// base value otherwise.
func (r *Register) DirtyValue() string {
	if r.queued {
		return r.pending
	}
	return r.base
}

// Assign queues a replacement value. Last write wins locally too.
func (r *Register) Assign(value string) {
	r.pending, r.queued = value, true
}

// Len is the length of the base value.
func (r *Register) Len() int { return len(r.base) }

func (r *Register) Native() any      { return r.Value() }
func (r *Register) DirtyNative() any { return r.DirtyValue() }

func (r *Register) ToOp() Op {
	if !r.queued {
		return nil
	}
	return RegisterOp(r.pending)
}

func (r *Register) String() string { return r.DirtyValue() }
