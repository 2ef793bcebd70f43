package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zolawuzhigang/Research-Agent/cache"
)

func TestGetSetMiss(t *testing.T) {
	c := cache.New()
	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", got)
}

func TestTTLExpiry(t *testing.T) {
	c := cache.New(cache.WithTTL(10 * time.Millisecond))
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get("k")
	require.False(t, ok)
}

func TestLRUEviction(t *testing.T) {
	c := cache.New(cache.WithCapacity(2))
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // promote a to most-recently-used
	c.Set("c", "3") // evicts b, the least-recently-used

	_, ok := c.Get("b")
	require.False(t, ok)

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, "1", v)

	v, ok = c.Get("c")
	require.True(t, ok)
	require.Equal(t, "3", v)
}

func TestDeleteAndLen(t *testing.T) {
	c := cache.New()
	c.Set("a", "1")
	c.Set("b", "2")
	require.Equal(t, 2, c.Len())
	c.Delete("a")
	require.Equal(t, 1, c.Len())
	_, ok := c.Get("a")
	require.False(t, ok)
}
