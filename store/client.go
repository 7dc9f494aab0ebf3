package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/drpcorg/datatypes"
	"github.com/drpcorg/datatypes/datatypes_errors"
	"github.com/drpcorg/datatypes/utils"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// Client wraps the store boundary with a TTL'd LRU cache of fetched
// (value, causal context) pairs. The cache only affects how fresh the
// data from other replicas is; a submit through this client always
// invalidates the cached entry so the next fetch observes the merge.
// With TTL = 0 every fetch goes to the store.
type Client struct {
	store   Store
	log     utils.Logger
	ttl     time.Duration
	cache   *lru.Cache[string, cached]
	metrics *Metrics
}

type cached struct {
	value   any
	causal  []byte
	expires time.Time
}

type Options struct {
	// TTL bounds the staleness of cached fetches; 0 disables caching.
	TTL time.Duration
	// CacheSize is the LRU capacity, 128 when unset.
	CacheSize int
	Log       utils.Logger
	Metrics   *Metrics
}

func NewClient(s Store, opts Options) (*Client, error) {
	size := opts.CacheSize
	if size == 0 {
		size = 128
	}
	cache, err := lru.New[string, cached](size)
	if err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		log = utils.NewDefaultLogger(slog.LevelInfo)
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Client{
		store:   s,
		log:     log,
		ttl:     opts.TTL,
		cache:   cache,
		metrics: metrics,
	}, nil
}

func cacheKey(tag datatypes.Tag, id string) string {
	return string(tag) + "/" + id
}

func (c *Client) fetch(ctx context.Context, tag datatypes.Tag, id string) (any, []byte, error) {
	key := cacheKey(tag, id)
	if c.ttl > 0 {
		if ent, ok := c.cache.Get(key); ok && time.Now().Before(ent.expires) {
			c.metrics.Fetches.WithLabelValues(resultCached).Inc()
			return ent.value, ent.causal, nil
		}
	}
	value, causal, err := c.store.Fetch(ctx, tag, id)
	if err != nil {
		c.metrics.Fetches.WithLabelValues(resultError).Inc()
		return nil, nil, errors.Wrapf(err, "fetch %s/%s", tag, id)
	}
	if c.ttl > 0 {
		c.cache.Add(key, cached{value: value, causal: causal, expires: time.Now().Add(c.ttl)})
	}
	c.metrics.Fetches.WithLabelValues(resultOK).Inc()
	return value, causal, nil
}

// Fetch returns a fresh instance seeded with the store's current value
// and causal token for the identifier, or an empty instance if the
// store has none. Previous instances for the identifier stay as they
// were; they are meant to be discarded.
func (c *Client) Fetch(ctx context.Context, tag datatypes.Tag, id string) (datatypes.Datatype, error) {
	value, causal, err := c.fetch(ctx, tag, id)
	if err != nil {
		return nil, err
	}
	return datatypes.New(tag, value, causal)
}

// FetchExisting is Fetch for objects that must already exist; a missing
// object is ErrNotFound instead of an empty instance.
func (c *Client) FetchExisting(ctx context.Context, tag datatypes.Tag, id string) (datatypes.Datatype, error) {
	value, causal, err := c.fetch(ctx, tag, id)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, errors.Wrapf(datatypes_errors.ErrNotFound, "fetch %s/%s", tag, id)
	}
	return datatypes.New(tag, value, causal)
}

// FetchCounter is Fetch for the counter tag.
func (c *Client) FetchCounter(ctx context.Context, id string) (*datatypes.Counter, error) {
	d, err := c.Fetch(ctx, datatypes.TagCounter, id)
	if err != nil {
		return nil, err
	}
	return d.(*datatypes.Counter), nil
}

// FetchSet is Fetch for the set tag.
func (c *Client) FetchSet(ctx context.Context, id string) (*datatypes.Set, error) {
	d, err := c.Fetch(ctx, datatypes.TagSet, id)
	if err != nil {
		return nil, err
	}
	return d.(*datatypes.Set), nil
}

// FetchMap is Fetch for the map tag.
func (c *Client) FetchMap(ctx context.Context, id string) (*datatypes.Map, error) {
	d, err := c.Fetch(ctx, datatypes.TagMap, id)
	if err != nil {
		return nil, err
	}
	return d.(*datatypes.Map), nil
}

// Update extracts the queued operation from the instance and submits
// it with the instance's causal token. A mutation-free instance is a
// no-op. The instance's local state is left untouched either way; a
// subsequent fetch yields the merged result.
func (c *Client) Update(ctx context.Context, id string, d datatypes.Datatype) error {
	op := d.ToOp()
	if op == nil {
		c.metrics.Submits.WithLabelValues(resultNoop).Inc()
		return nil
	}
	rid := uuid.NewString()
	ctx = utils.WithDefaultArgs(ctx, "req", rid)
	c.log.DebugCtx(ctx, "submitting op", "tag", d.Tag(), "id", id)
	if err := c.store.Submit(ctx, d.Tag(), id, op, d.Context()); err != nil {
		c.metrics.Submits.WithLabelValues(resultError).Inc()
		c.log.ErrorCtx(ctx, "submit failed", "tag", d.Tag(), "id", id, "err", err)
		return errors.Wrapf(err, "submit %s/%s", d.Tag(), id)
	}
	c.cache.Remove(cacheKey(d.Tag(), id))
	c.metrics.Submits.WithLabelValues(resultOK).Inc()
	return nil
}
