package datatypes

import (
	"sort"

	"github.com/drpcorg/datatypes/datatypes_errors"
	"github.com/drpcorg/datatypes/protocol"
)

// TLV forms for operations and pure values, so the store boundary can
// carry them as compact byte payloads.
//
// Top-level records are typed by tag letter: C counter, F flag,
// R register, S set, M map. Inside an S operation, A records are added
// elements and D records removed ones. Inside an M operation, entries
// are A (add key), D (remove key) or U (key followed by the nested
// operation); inside an M value, entries are E (key followed by the
// nested value). Keys are K records: one tag letter, then the name.
//
// All records are emitted with uppercase letters so nested types
// survive (the tiny TLV form drops them).

var tagLits = map[Tag]byte{
	TagCounter:  'C',
	TagFlag:     'F',
	TagRegister: 'R',
	TagSet:      'S',
	TagMap:      'M',
}

func litTag(lit byte) (Tag, bool) {
	switch lit {
	case 'C':
		return TagCounter, true
	case 'F':
		return TagFlag, true
	case 'R':
		return TagRegister, true
	case 'S':
		return TagSet, true
	case 'M':
		return TagMap, true
	}
	return "", false
}

// KeyTLV encodes a map key as a K record.
func KeyTLV(k Key) []byte {
	return protocol.Record('K', []byte{tagLits[k.Tag]}, []byte(k.Name))
}

func keyFromBody(body []byte) (Key, error) {
	if len(body) < 1 {
		return Key{}, datatypes_errors.ErrBadPayload
	}
	tag, ok := litTag(body[0])
	if !ok {
		return Key{}, datatypes_errors.ErrInvalidKey
	}
	return Key{Name: string(body[1:]), Tag: tag}, nil
}

// OpTLV serializes an operation payload. Nil ops encode to nil.
func OpTLV(op Op) []byte {
	switch o := op.(type) {
	case nil:
		return nil
	case CounterOp:
		return protocol.Record('C', protocol.ZipInt64(int64(o)))
	case FlagOp:
		b := byte(0)
		if o {
			b = 1
		}
		return protocol.Record('F', []byte{b})
	case RegisterOp:
		return protocol.Record('R', []byte(o))
	case *SetOp:
		recs := make(protocol.Records, 0, len(o.Adds)+len(o.Removes))
		for _, e := range o.Adds {
			recs = append(recs, protocol.Record('A', []byte(e)))
		}
		for _, e := range o.Removes {
			recs = append(recs, protocol.Record('D', []byte(e)))
		}
		return protocol.Record('S', recs...)
	case MapOp:
		recs := make(protocol.Records, 0, len(o))
		for _, e := range o {
			switch e.Verb {
			case VerbAdd:
				recs = append(recs, protocol.Record('A', KeyTLV(e.Key)))
			case VerbRemove:
				recs = append(recs, protocol.Record('D', KeyTLV(e.Key)))
			case VerbUpdate:
				recs = append(recs, protocol.Record('U', KeyTLV(e.Key), OpTLV(e.Op)))
			}
		}
		return protocol.Record('M', recs...)
	}
	return nil
}

// OpFromTLV parses a single operation record.
func OpFromTLV(tlv []byte) (Op, error) {
	lit, body, _, err := protocol.TakeAnyWary(tlv)
	if err != nil {
		return nil, datatypes_errors.ErrBadPayload
	}
	switch lit {
	case 'C':
		return CounterOp(protocol.UnzipInt64(body)), nil
	case 'F':
		if len(body) != 1 {
			return nil, datatypes_errors.ErrBadPayload
		}
		return FlagOp(body[0] != 0), nil
	case 'R':
		return RegisterOp(body), nil
	case 'S':
		return setOpFromBody(body)
	case 'M':
		return mapOpFromBody(body)
	}
	return nil, datatypes_errors.ErrBadPayload
}

func setOpFromBody(body []byte) (Op, error) {
	op := &SetOp{}
	for len(body) > 0 {
		lit, ebody, rest, err := protocol.TakeAnyWary(body)
		if err != nil {
			return nil, datatypes_errors.ErrBadPayload
		}
		switch lit {
		case 'A':
			op.Adds = append(op.Adds, string(ebody))
		case 'D':
			op.Removes = append(op.Removes, string(ebody))
		default:
			return nil, datatypes_errors.ErrBadPayload
		}
		body = rest
	}
	return op, nil
}

func mapOpFromBody(body []byte) (Op, error) {
	var op MapOp
	for len(body) > 0 {
		lit, ebody, rest, err := protocol.TakeAnyWary(body)
		if err != nil {
			return nil, datatypes_errors.ErrBadPayload
		}
		kbody, krest, err := protocol.TakeWary('K', ebody)
		if err != nil {
			return nil, datatypes_errors.ErrBadPayload
		}
		key, err := keyFromBody(kbody)
		if err != nil {
			return nil, err
		}
		switch lit {
		case 'A':
			op = append(op, MapEntry{Verb: VerbAdd, Key: key})
		case 'D':
			op = append(op, MapEntry{Verb: VerbRemove, Key: key})
		case 'U':
			nested, err := OpFromTLV(krest)
			if err != nil {
				return nil, err
			}
			if nested.OpTag() != key.Tag {
				return nil, datatypes_errors.ErrBadPayload
			}
			op = append(op, MapEntry{Verb: VerbUpdate, Key: key, Op: nested})
		default:
			return nil, datatypes_errors.ErrBadPayload
		}
		body = rest
	}
	return op, nil
}

// ValueTLV serializes a pure value of the given tag, the form the
// local store persists and the fetch boundary returns.
func ValueTLV(tag Tag, value any) ([]byte, error) {
	switch tag {
	case TagCounter:
		n, ok := asInt64(value)
		if !ok {
			return nil, ErrTypeMismatch
		}
		return protocol.Record('C', protocol.ZipInt64(n)), nil
	case TagFlag:
		f, ok := value.(bool)
		if !ok {
			return nil, ErrTypeMismatch
		}
		b := byte(0)
		if f {
			b = 1
		}
		return protocol.Record('F', []byte{b}), nil
	case TagRegister:
		s, ok := value.(string)
		if !ok {
			return nil, ErrTypeMismatch
		}
		return protocol.Record('R', []byte(s)), nil
	case TagSet:
		elems, ok := asStrings(value)
		if !ok {
			return nil, ErrTypeMismatch
		}
		sort.Strings(elems)
		var body []byte
		for _, e := range elems {
			body = protocol.Append(body, 'A', []byte(e))
		}
		return protocol.Record('S', body), nil
	case TagMap:
		kv, ok := value.(map[Key]any)
		if !ok {
			return nil, ErrTypeMismatch
		}
		recs := make(protocol.Records, 0, len(kv))
		for _, k := range sortKeys(kv) {
			nested, err := ValueTLV(k.Tag, kv[k])
			if err != nil {
				return nil, err
			}
			recs = append(recs, protocol.Record('E', KeyTLV(k), nested))
		}
		return protocol.Record('M', recs...), nil
	}
	return nil, ErrTagUnknown
}

// ValueFromTLV parses a pure value record, returning its tag and the
// value in pure form.
func ValueFromTLV(tlv []byte) (Tag, any, error) {
	lit, body, _, err := protocol.TakeAnyWary(tlv)
	if err != nil {
		return "", nil, datatypes_errors.ErrBadPayload
	}
	switch lit {
	case 'C':
		return TagCounter, protocol.UnzipInt64(body), nil
	case 'F':
		if len(body) != 1 {
			return "", nil, datatypes_errors.ErrBadPayload
		}
		return TagFlag, body[0] != 0, nil
	case 'R':
		return TagRegister, string(body), nil
	case 'S':
		elems := []string{}
		for len(body) > 0 {
			ebody, rest, err := protocol.TakeWary('A', body)
			if err != nil {
				return "", nil, datatypes_errors.ErrBadPayload
			}
			elems = append(elems, string(ebody))
			body = rest
		}
		return TagSet, elems, nil
	case 'M':
		kv := map[Key]any{}
		for len(body) > 0 {
			ebody, rest, err := protocol.TakeWary('E', body)
			if err != nil {
				return "", nil, datatypes_errors.ErrBadPayload
			}
			kbody, krest, err := protocol.TakeWary('K', ebody)
			if err != nil {
				return "", nil, datatypes_errors.ErrBadPayload
			}
			key, err := keyFromBody(kbody)
			if err != nil {
				return "", nil, err
			}
			ntag, nested, err := ValueFromTLV(krest)
			if err != nil {
				return "", nil, err
			}
			if ntag != key.Tag {
				return "", nil, datatypes_errors.ErrBadPayload
			}
			kv[key] = nested
			body = rest
		}
		return TagMap, kv, nil
	}
	return "", nil, datatypes_errors.ErrBadPayload
}
