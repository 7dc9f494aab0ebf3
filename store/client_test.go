package store

import (
	"context"
	"testing"
	"time"

	"github.com/drpcorg/datatypes"
	"github.com/drpcorg/datatypes/datatypes_errors"
	"github.com/stretchr/testify/assert"
)

// countingStore records boundary traffic over a Local store.
type countingStore struct {
	inner   *Local
	fetches int
	submits int
}

func (c *countingStore) Fetch(ctx context.Context, tag datatypes.Tag, id string) (any, []byte, error) {
	c.fetches++
	return c.inner.Fetch(ctx, tag, id)
}

func (c *countingStore) Submit(ctx context.Context, tag datatypes.Tag, id string, op datatypes.Op, causal []byte) error {
	c.submits++
	return c.inner.Submit(ctx, tag, id, op, causal)
}

func testClient(t *testing.T, opts Options) (*Client, *countingStore) {
	t.Helper()
	counting := &countingStore{inner: testLocal(t)}
	client, err := NewClient(counting, opts)
	assert.Nil(t, err)
	return client, counting
}

func TestClientRoundtrip(t *testing.T) {
	client, _ := testClient(t, Options{})
	ctx := context.Background()

	c, err := client.FetchCounter(ctx, "likes")
	assert.Nil(t, err)
	c.Increment(5)
	c.Decrement(2)
	assert.Nil(t, client.Update(ctx, "likes", c))

	fresh, err := client.FetchCounter(ctx, "likes")
	assert.Nil(t, err)
	assert.Equal(t, int64(3), fresh.Value())
	assert.Nil(t, fresh.ToOp())
}

func TestClientCacheHit(t *testing.T) {
	client, counting := testClient(t, Options{TTL: time.Minute})
	ctx := context.Background()

	_, err := client.FetchCounter(ctx, "x")
	assert.Nil(t, err)
	_, err = client.FetchCounter(ctx, "x")
	assert.Nil(t, err)
	assert.Equal(t, 1, counting.fetches)
}

func TestClientUpdateInvalidatesCache(t *testing.T) {
	client, counting := testClient(t, Options{TTL: time.Minute})
	ctx := context.Background()

	c, err := client.FetchCounter(ctx, "x")
	assert.Nil(t, err)
	c.Increment(1)
	assert.Nil(t, client.Update(ctx, "x", c))

	fresh, err := client.FetchCounter(ctx, "x")
	assert.Nil(t, err)
	assert.Equal(t, int64(1), fresh.Value())
	assert.Equal(t, 2, counting.fetches, "submit must invalidate the cached entry")
}

func TestClientNoopUpdate(t *testing.T) {
	client, counting := testClient(t, Options{})
	ctx := context.Background()

	c, err := client.FetchCounter(ctx, "x")
	assert.Nil(t, err)
	assert.Nil(t, client.Update(ctx, "x", c))
	assert.Equal(t, 0, counting.submits, "mutation-free instances submit nothing")
}

func TestClientFetchExisting(t *testing.T) {
	client, _ := testClient(t, Options{})
	ctx := context.Background()

	_, err := client.FetchExisting(ctx, datatypes.TagCounter, "likes")
	assert.ErrorIs(t, err, datatypes_errors.ErrNotFound)

	c, err := client.FetchCounter(ctx, "likes")
	assert.Nil(t, err)
	c.Increment(1)
	assert.Nil(t, client.Update(ctx, "likes", c))

	d, err := client.FetchExisting(ctx, datatypes.TagCounter, "likes")
	assert.Nil(t, err)
	assert.Equal(t, int64(1), d.(*datatypes.Counter).Value())
}

func TestClientSetLifecycle(t *testing.T) {
	client, _ := testClient(t, Options{})
	ctx := context.Background()

	s, err := client.FetchSet(ctx, "tags")
	assert.Nil(t, err)
	s.Add("a")
	s.Add("b")
	assert.Nil(t, client.Update(ctx, "tags", s))

	s, err = client.FetchSet(ctx, "tags")
	assert.Nil(t, err)
	assert.True(t, s.Contains("a"))
	s.Discard("a")
	assert.Nil(t, client.Update(ctx, "tags", s))

	s, err = client.FetchSet(ctx, "tags")
	assert.Nil(t, err)
	assert.Equal(t, []string{"b"}, s.Value())
}

func TestClientMapLifecycle(t *testing.T) {
	client, _ := testClient(t, Options{})
	ctx := context.Background()

	m, err := client.FetchMap(ctx, "profile")
	assert.Nil(t, err)
	r, err := m.Registers().Get("name")
	assert.Nil(t, err)
	r.Assign("Ann")
	assert.Nil(t, client.Update(ctx, "profile", m))

	m, err = client.FetchMap(ctx, "profile")
	assert.Nil(t, err)
	r, err = m.Registers().Get("name")
	assert.Nil(t, err)
	assert.Equal(t, "Ann", r.Value())

	assert.Nil(t, m.Registers().Delete("name"))
	assert.Nil(t, client.Update(ctx, "profile", m))

	m, err = client.FetchMap(ctx, "profile")
	assert.Nil(t, err)
	assert.Equal(t, 0, m.Len())
}
