package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRegistry_OpensOncePerSession(t *testing.T) {
	var opens atomic.Int32
	r := NewRegistry(time.Minute, func(_ context.Context, id string) (*WishlistStore, error) {
		opens.Add(1)
		return NewWishlistStore(context.Background(), newMapStorage(), id, testLogger()), nil
	})

	a, err := r.Get(context.Background(), "sess-0001")
	require.NoError(t, err)
	b, err := r.Get(context.Background(), "sess-0001")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, int32(1), opens.Load())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_EvictsIdleSessions(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	var opens atomic.Int32
	r := NewRegistry(time.Minute, func(_ context.Context, _ string) (int32, error) {
		return opens.Add(1), nil
	})
	r.now = clock.now

	first, _ := r.Get(context.Background(), "sess-0001")
	clock.advance(30 * time.Second)
	_, _ = r.Get(context.Background(), "sess-0002")
	clock.advance(45 * time.Second)

	again, err := r.Get(context.Background(), "sess-0001")
	require.NoError(t, err)
	assert.NotEqual(t, first, again, "idle session is reopened")
	assert.Equal(t, 2, r.Len(), "recently used session survives the sweep")
}

func TestRegistry_OpenErrorIsNotCached(t *testing.T) {
	fail := true
	r := NewRegistry(time.Minute, func(_ context.Context, _ string) (string, error) {
		if fail {
			return "", errors.New("boom")
		}
		return "ok", nil
	})

	_, err := r.Get(context.Background(), "sess-0001")
	require.Error(t, err)
	assert.Equal(t, 0, r.Len())

	fail = false
	got, err := r.Get(context.Background(), "sess-0001")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestRegistry_CollectorReportsLiveSessions(t *testing.T) {
	r := NewRegistry(time.Minute, func(_ context.Context, id string) (string, error) { return id, nil })
	c := r.Collector("cart")
	assert.Equal(t, float64(0), testutil.ToFloat64(c))

	_, _ = r.Get(context.Background(), "sess-0001")
	_, _ = r.Get(context.Background(), "sess-0002")
	assert.Equal(t, float64(2), testutil.ToFloat64(c))
}
