// Package datatypes is the client-side modeling layer for convergent
// replicated datatypes. An instance holds the last value fetched from
// the store (immutable for the instance's lifetime), accumulates local
// mutations separately, and serializes them into an operation payload
// for the store to merge. Instances are single-threaded and are
// replaced wholesale by the next fetch; there is no in-place merge
// here.
package datatypes

import (
	"github.com/drpcorg/datatypes/datatypes_errors"
)

// Tag identifies one of the closed set of convergent types.
type Tag string

const (
	TagCounter  Tag = "counter"
	TagFlag     Tag = "flag"
	TagRegister Tag = "register"
	TagSet      Tag = "set"
	TagMap      Tag = "map"
)

// Datatype is the capability every convergent type implements.
//
// Native returns a copy of the base value in its pure form (int64,
// bool, string, []string or map[Key]any); it never reflects queued
// local mutations. DirtyNative folds the queued mutations in, again as
// an independent copy. ToOp reports the queued mutation as a payload
// for the store, or nil when nothing is queued; calling it repeatedly
// neither clears nor changes state. Context is the opaque causal token
// the store returned with the value, carried verbatim.
type Datatype interface {
	Tag() Tag
	Native() any
	DirtyNative() any
	Context() []byte
	ToOp() Op
	String() string
}

// causal carries the opaque context token shared by all types.
type causal struct {
	ctx []byte
}

// Context returns a copy of the causal token, or nil if the value was
// never fetched.
func (c causal) Context() []byte {
	if c.ctx == nil {
		return nil
	}
	cp := make([]byte, len(c.ctx))
	copy(cp, c.ctx)
	return cp
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

func asStrings(v any) ([]string, bool) {
	switch e := v.(type) {
	case []string:
		cp := make([]string, len(e))
		copy(cp, e)
		return cp, true
	case []any:
		cp := make([]string, 0, len(e))
		for _, el := range e {
			s, ok := el.(string)
			if !ok {
				return nil, false
			}
			cp = append(cp, s)
		}
		return cp, true
	case map[string]struct{}:
		cp := make([]string, 0, len(e))
		for el := range e {
			cp = append(cp, el)
		}
		return cp, true
	}
	return nil, false
}

var (
	ErrTypeMismatch = datatypes_errors.ErrTypeMismatch
	ErrInvalidKey   = datatypes_errors.ErrInvalidKey
	ErrTagUnknown   = datatypes_errors.ErrTagUnknown
)
