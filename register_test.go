package datatypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterFresh(t *testing.T) {
	r, err := NewRegister(nil, nil)
	assert.Nil(t, err)
	assert.Equal(t, "", r.Value())
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.ToOp())
}

func TestRegisterAssign(t *testing.T) {
	r, err := NewRegister("old", nil)
	assert.Nil(t, err)
	r.Assign("new")
	r.Assign("newer")
	assert.Equal(t, "old", r.Value())
	assert.Equal(t, "newer", r.DirtyValue())
	assert.Equal(t, RegisterOp("newer"), r.ToOp())
	assert.Equal(t, 3, r.Len(), "Len answers against the base value")
}

func TestRegisterSeedMismatch(t *testing.T) {
	_, err := NewRegister(false, nil)
	assert.Equal(t, ErrTypeMismatch, err)
}
