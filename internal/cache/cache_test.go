package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, time.Minute), mr
}

func TestRemember(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	calls := 0
	load := func(dest *entry) func() error {
		return func() error {
			calls++
			*dest = entry{Name: "salt", Count: 3}
			return nil
		}
	}

	var first entry
	require.NoError(t, c.Remember(ctx, "catalog:a", &first, load(&first)))
	var second entry
	require.NoError(t, c.Remember(ctx, "catalog:a", &second, load(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("catalog:a"))
	assert.Equal(t, time.Minute, mr.TTL("catalog:a"))
}

func TestRememberLoadError(t *testing.T) {
	c, mr := setupCache(t)
	var dest entry
	err := c.Remember(context.Background(), "catalog:b", &dest, func() error { return errors.New("boom") })
	assert.EqualError(t, err, "boom")
	assert.False(t, mr.Exists("catalog:b"))
}

func TestInvalidatePrefix(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	require.NoError(t, c.SetJSON(ctx, "catalog:tags:1", entry{Name: "x"}))
	require.NoError(t, c.SetJSON(ctx, "catalog:tags:2", entry{Name: "y"}))
	require.NoError(t, c.SetJSON(ctx, "other:1", entry{Name: "z"}))

	c.InvalidatePrefix(ctx, "catalog:tags:")

	assert.False(t, mr.Exists("catalog:tags:1"))
	assert.False(t, mr.Exists("catalog:tags:2"))
	assert.True(t, mr.Exists("other:1"))
}

func TestNilCache(t *testing.T) {
	var c *Cache
	assert.Nil(t, New(nil, time.Minute))

	called := false
	var dest entry
	require.NoError(t, c.Remember(context.Background(), "k", &dest, func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
	c.InvalidatePrefix(context.Background(), "k")
}
