package datatypes

import "strconv"

// Counter is a convergent integer that can be incremented and
// decremented. It can stand on its own or be embedded in a Map.
//
// Local increments land in an accumulator separate from the base
// value; the store sums deltas from all replicas. No overflow checks
// are done here, the serialization width (int64) is the boundary.
type Counter struct {
	causal
	base int64
	inc  int64
}

// NewCounter seeds a counter from a fetched pure value (any integer
// form) and its causal token. A nil value makes a fresh zero counter.
func NewCounter(value any, ctx []byte) (*Counter, error) {
	c := &Counter{causal: causal{ctx: ctx}}
	if value != nil {
		n, ok := asInt64(value)
		if !ok {
			return nil, ErrTypeMismatch
		}
		c.base = n
	}
	return c, nil
}

func (c *Counter) Tag() Tag { return TagCounter }

// Value returns the base value as fetched, with no local increments.
func (c *Counter) Value() int64 { return c.base }

// DirtyValue returns the base value with local increments applied.
func (c *Counter) DirtyValue() int64 { return c.base + c.inc }

func (c *Counter) Increment(amount int64) { c.inc += amount }
func (c *Counter) Decrement(amount int64) { c.inc -= amount }

func (c *Counter) Native() any      { return c.Value() }
func (c *Counter) DirtyNative() any { return c.DirtyValue() }

// ToOp returns the accumulated delta, or nil when there is none.
func (c *Counter) ToOp() Op {
	if c.inc == 0 {
		return nil
	}
	return CounterOp(c.inc)
}

func (c *Counter) String() string {
	return strconv.FormatInt(c.DirtyValue(), 10)
}
