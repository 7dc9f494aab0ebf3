package datatypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterFresh(t *testing.T) {
	c, err := NewCounter(nil, nil)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), c.Value())
	assert.Nil(t, c.ToOp())
	assert.Nil(t, c.Context())
}

func TestCounterIncrementDecrement(t *testing.T) {
	c, err := NewCounter(nil, nil)
	assert.Nil(t, err)
	c.Increment(5)
	c.Decrement(2)
	assert.Equal(t, CounterOp(3), c.ToOp())
	assert.Equal(t, int64(3), c.DirtyValue())
	assert.Equal(t, int64(0), c.Value(), "base value must not move")

	// repeated extraction does not drain the accumulator
	assert.Equal(t, c.ToOp(), c.ToOp())
}

func TestCounterSeeded(t *testing.T) {
	ctx := []byte{1, 2, 3}
	c, err := NewCounter(int64(10), ctx)
	assert.Nil(t, err)
	assert.Equal(t, int64(10), c.Value())
	assert.Equal(t, ctx, c.Context())

	c.Increment(1)
	c.Increment(1)
	assert.Equal(t, int64(10), c.Value())
	assert.Equal(t, int64(12), c.DirtyValue())
	assert.Equal(t, CounterOp(2), c.ToOp())
}

func TestCounterSeedMismatch(t *testing.T) {
	_, err := NewCounter("ten", nil)
	assert.Equal(t, ErrTypeMismatch, err)
}

func TestCounterContextCopied(t *testing.T) {
	c, err := NewCounter(int64(1), []byte{7})
	assert.Nil(t, err)
	got := c.Context()
	got[0] = 0
	assert.Equal(t, []byte{7}, c.Context())
}
