// internal/infrastructure/cache/store_test.go
package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewStore(client, logrus.NewEntry(l)), mr
}

func TestStoreCachedServesSecondReadFromCache(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return &listing{Name: "widget", Count: calls}, nil
	}

	var first listing
	require.NoError(t, store.Cached(ctx, "products:all:p1", time.Minute, &first, fetch))
	assert.Equal(t, 1, calls)
	assert.Equal(t, listing{Name: "widget", Count: 1}, first)

	var second listing
	require.NoError(t, store.Cached(ctx, "products:all:p1", time.Minute, &second, fetch))
	assert.Equal(t, 1, calls, "cache hit must not fetch again")
	assert.Equal(t, first, second)
}

func TestStoreCachedFallsBackWhenRedisDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	calls := 0
	var dest listing
	err := store.Cached(context.Background(), "products:all:p1", time.Minute, &dest, func() (interface{}, error) {
		calls++
		return &listing{Name: "widget", Count: 7}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 7, dest.Count)
}

func TestStoreCachedDiscardsCorruptEntry(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("products:all:p1", "not json"))

	var dest listing
	err := store.Cached(context.Background(), "products:all:p1", time.Minute, &dest, func() (interface{}, error) {
		return &listing{Name: "widget", Count: 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, dest.Count)

	// The unreadable entry was overwritten with the fresh value
	stored, err := mr.Get("products:all:p1")
	require.NoError(t, err)
	assert.Contains(t, stored, `"widget"`)
}

func TestStoreInvalidateExpandsWildcards(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "products:all:p1", listing{Name: "a"}, time.Minute))
	require.NoError(t, store.Set(ctx, "products:all:p2", listing{Name: "b"}, time.Minute))
	require.NoError(t, store.Set(ctx, "product:7", listing{Name: "c"}, time.Minute))

	store.Invalidate(ctx, "products:all*")

	assert.False(t, mr.Exists("products:all:p1"))
	assert.False(t, mr.Exists("products:all:p2"))
	assert.True(t, mr.Exists("product:7"))

	store.Invalidate(ctx, "product:7")
	assert.False(t, mr.Exists("product:7"))
}

func TestStoreInvalidateSurvivesRedisDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	// Must not panic or error out; invalidation is best-effort
	store.Invalidate(context.Background(), "products:all*", "product:7")
}
