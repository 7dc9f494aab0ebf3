package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"log/slog"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/drpcorg/datatypes"
	"github.com/drpcorg/datatypes/datatypes_errors"
	"github.com/drpcorg/datatypes/utils"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// Local is an in-process store: pebble-backed persistence of pure
// values in their TLV form, with the type-specific merge rules applied
// on submit. It exists for tests, examples and the REPL; the real
// replicated store lives behind the same interfaces elsewhere.
//
// The causal token it hands out is a digest of the object's stored
// state. A submit carrying removals must present a token; a stale one
// is tolerated (removal safety beyond that is the real store's
// business, not this stand-in's).
type Local struct {
	db    *pebble.DB
	log   utils.Logger
	locks *xsync.MapOf[string, *sync.Mutex]
}

// Open opens or creates a store in the given directory.
func Open(dir string, log utils.Logger) (*Local, error) {
	return open(dir, &pebble.Options{}, log)
}

// OpenMemory opens a store on a throwaway in-memory filesystem.
func OpenMemory(log utils.Logger) (*Local, error) {
	return open("", &pebble.Options{FS: vfs.NewMem()}, log)
}

func open(dir string, opts *pebble.Options, log utils.Logger) (*Local, error) {
	if log == nil {
		log = utils.NewDefaultLogger(slog.LevelInfo)
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, errors.Wrap(err, "open local store")
	}
	return &Local{
		db:    db,
		log:   log,
		locks: xsync.NewMapOf[string, *sync.Mutex](),
	}, nil
}

func (l *Local) Close() error {
	if l.db == nil {
		return datatypes_errors.ErrClosed
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// okey is the pebble key for an object: 'O', the tag, NUL, the id.
func okey(tag datatypes.Tag, id string) []byte {
	key := make([]byte, 0, len(tag)+len(id)+2)
	key = append(key, 'O')
	key = append(key, tag...)
	key = append(key, 0)
	key = append(key, id...)
	return key
}

// token digests the stored TLV state into the opaque causal context.
func token(state []byte) []byte {
	tok := make([]byte, 8)
	binary.LittleEndian.PutUint64(tok, xxhash.Sum64(state))
	return tok
}

func (l *Local) state(tag datatypes.Tag, id string) ([]byte, error) {
	val, closer, err := l.db.Get(okey(tag, id))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	state := make([]byte, len(val))
	copy(state, val)
	_ = closer.Close()
	return state, nil
}

func (l *Local) Fetch(ctx context.Context, tag datatypes.Tag, id string) (any, []byte, error) {
	if l.db == nil {
		return nil, nil, datatypes_errors.ErrClosed
	}
	state, err := l.state(tag, id)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "fetch %s/%s", tag, id)
	}
	if state == nil {
		return nil, nil, nil
	}
	stag, value, err := datatypes.ValueFromTLV(state)
	if err != nil {
		return nil, nil, err
	}
	if stag != tag {
		return nil, nil, datatypes_errors.ErrTypeMismatch
	}
	return value, token(state), nil
}

func (l *Local) Submit(ctx context.Context, tag datatypes.Tag, id string, op datatypes.Op, causal []byte) error {
	if l.db == nil {
		return datatypes_errors.ErrClosed
	}
	if op == nil {
		return nil
	}
	if op.OpTag() != tag {
		return datatypes_errors.ErrTypeMismatch
	}

	lock, _ := l.locks.LoadOrStore(string(okey(tag, id)), &sync.Mutex{})
	lock.Lock()
	defer lock.Unlock()

	state, err := l.state(tag, id)
	if err != nil {
		return errors.Wrapf(err, "submit %s/%s", tag, id)
	}
	var current any
	if state != nil {
		stag, value, err := datatypes.ValueFromTLV(state)
		if err != nil {
			return err
		}
		if stag != tag {
			return datatypes_errors.ErrTypeMismatch
		}
		current = value
		if len(causal) > 0 && !bytes.Equal(causal, token(state)) {
			l.log.WarnCtx(ctx, "stale causal context", "tag", tag, "id", id)
		}
	}

	merged, err := apply(tag, current, op, len(causal) > 0)
	if err != nil {
		return err
	}
	tlv, err := datatypes.ValueTLV(tag, merged)
	if err != nil {
		return err
	}
	if err := l.db.Set(okey(tag, id), tlv, pebble.Sync); err != nil {
		return errors.Wrapf(err, "submit %s/%s", tag, id)
	}
	l.log.DebugCtx(ctx, "merged op", "tag", tag, "id", id)
	return nil
}

func defaultValue(tag datatypes.Tag) any {
	switch tag {
	case datatypes.TagCounter:
		return int64(0)
	case datatypes.TagFlag:
		return false
	case datatypes.TagRegister:
		return ""
	case datatypes.TagSet:
		return []string{}
	default:
		return map[datatypes.Key]any{}
	}
}

// apply folds an operation into the current pure value. Removals (set
// elements and map keys) require a causal context; everything else
// merges unconditionally.
func apply(tag datatypes.Tag, current any, op datatypes.Op, hasCausal bool) (any, error) {
	if current == nil {
		current = defaultValue(tag)
	}
	switch o := op.(type) {
	case datatypes.CounterOp:
		base, ok := current.(int64)
		if !ok {
			return nil, datatypes_errors.ErrTypeMismatch
		}
		return base + int64(o), nil
	case datatypes.FlagOp:
		if _, ok := current.(bool); !ok {
			return nil, datatypes_errors.ErrTypeMismatch
		}
		return bool(o), nil
	case datatypes.RegisterOp:
		if _, ok := current.(string); !ok {
			return nil, datatypes_errors.ErrTypeMismatch
		}
		return string(o), nil
	case *datatypes.SetOp:
		elems, ok := current.([]string)
		if !ok {
			return nil, datatypes_errors.ErrTypeMismatch
		}
		if len(o.Removes) > 0 && !hasCausal {
			return nil, datatypes_errors.ErrContextRequired
		}
		merged := make(map[string]struct{}, len(elems)+len(o.Adds))
		for _, e := range elems {
			merged[e] = struct{}{}
		}
		for _, e := range o.Removes {
			delete(merged, e)
		}
		for _, e := range o.Adds {
			merged[e] = struct{}{}
		}
		return utils.SortedKeys(merged), nil
	case datatypes.MapOp:
		kv, ok := current.(map[datatypes.Key]any)
		if !ok {
			return nil, datatypes_errors.ErrTypeMismatch
		}
		for _, e := range o {
			switch e.Verb {
			case datatypes.VerbAdd:
				if _, ok := kv[e.Key]; !ok {
					kv[e.Key] = defaultValue(e.Key.Tag)
				}
			case datatypes.VerbRemove:
				if !hasCausal {
					return nil, datatypes_errors.ErrContextRequired
				}
				delete(kv, e.Key)
			case datatypes.VerbUpdate:
				nested, err := apply(e.Key.Tag, kv[e.Key], e.Op, hasCausal)
				if err != nil {
					return nil, err
				}
				kv[e.Key] = nested
			}
		}
		return kv, nil
	}
	return nil, datatypes_errors.ErrBadPayload
}
