// Provides common datatypes errors definitions.
package datatypes_errors

import "errors"

var (
	ErrTypeMismatch = errors.New("datatypes: value does not match the datatype shape")
	ErrInvalidKey   = errors.New("datatypes: malformed map key")
	ErrTagUnknown   = errors.New("datatypes: unknown datatype tag")

	ErrNotFound        = errors.New("datatypes: object not found")
	ErrContextRequired = errors.New("datatypes: removal requires a causal context")
	ErrBadPayload      = errors.New("datatypes: bad TLV payload")
	ErrClosed          = errors.New("datatypes: store is closed")
)
