package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestGetSetJSON(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	var missing payload
	found, err := GetJSON(ctx, "nope", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "p", payload{ID: 3, Name: "three"}, time.Minute))

	var got payload
	found, err = GetJSON(ctx, "p", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{ID: 3, Name: "three"}, got)
}

func TestAside(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			*dest = payload{ID: 1, Name: "fetched"}
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, "k", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "fetched", first.Name)

	// Second read is served from cache, fetch is not called again.
	var second payload
	require.NoError(t, Aside(ctx, "k", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "fetched", second.Name)
}

func TestAsideExpiry(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	var dest payload
	fetch := func() error {
		calls++
		dest = payload{ID: 2}
		return nil
	}

	require.NoError(t, Aside(ctx, "k", &dest, time.Second, fetch))
	mr.FastForward(2 * time.Second)
	require.NoError(t, Aside(ctx, "k", &dest, time.Second, fetch))
	assert.Equal(t, 2, calls)
}

func TestInvalidatePost(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey(5), payload{ID: 5}, time.Minute))
	require.NoError(t, SetJSON(ctx, IndexFirstPageKey, payload{ID: 1}, time.Minute))

	InvalidatePost(ctx, 5)

	var got payload
	found, err := GetJSON(ctx, PostKey(5), &got)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = GetJSON(ctx, IndexFirstPageKey, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNilClientFailsOpen(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var dest payload
	found, err := GetJSON(ctx, "k", &dest)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetJSON(ctx, "k", payload{}, time.Minute))

	calls := 0
	require.NoError(t, Aside(ctx, "k", &dest, time.Minute, func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)
}
