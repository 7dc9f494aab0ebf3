// Package store is the boundary between the datatype modeling layer
// and the replicated store that performs the actual conflict-free
// merges. The boundary is two narrow interfaces: fetch a pure value
// plus causal context by identifier, and submit an operation plus
// causal context by identifier. A caching Client wraps them, and Local
// is an in-process pebble-backed implementation used by tests and the
// REPL.
package store

import (
	"context"

	"github.com/drpcorg/datatypes"
)

// Fetcher retrieves the current merged value of an object. A missing
// object yields (nil, nil, nil); the caller seeds an empty instance
// from that.
type Fetcher interface {
	Fetch(ctx context.Context, tag datatypes.Tag, id string) (value any, causal []byte, err error)
}

// Submitter hands an operation payload to the store for merging. The
// causal token must be the one returned by the fetch the operation was
// built against; the store uses it to judge removal safety.
type Submitter interface {
	Submit(ctx context.Context, tag datatypes.Tag, id string, op datatypes.Op, causal []byte) error
}

type Store interface {
	Fetcher
	Submitter
}
