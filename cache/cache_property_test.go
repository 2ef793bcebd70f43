package cache_test

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/zolawuzhigang/Research-Agent/cache"
)

// TestCacheIdempotenceProperty checks the idempotence invariant spec §5
// implies: a Set immediately followed by a Get within the TTL window always
// returns exactly the value last written, for any key/value pair and for any
// number of repeated Sets of the same key.
func TestCacheIdempotenceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Get after Set returns the written value", prop.ForAll(
		func(key, value string) bool {
			c := cache.New(cache.WithTTL(time.Minute))
			c.Set(key, value)
			got, ok := c.Get(key)
			return ok && got == value
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("repeated Set of the same key is idempotent", prop.ForAll(
		func(key, value string, n int) bool {
			if key == "" {
				key = "k"
			}
			c := cache.New(cache.WithTTL(time.Minute))
			for i := 0; i < n; i++ {
				c.Set(key, value)
			}
			got, ok := c.Get(key)
			return ok && got == value && c.Len() == 1
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(1, 20),
	))

	properties.Property("capacity bound is never exceeded", prop.ForAll(
		func(n int) bool {
			const cap = 8
			c := cache.New(cache.WithCapacity(cap), cache.WithTTL(time.Minute))
			for i := 0; i < n; i++ {
				c.Set(string(rune('a'+(i%26)))+string(rune(i)), "v")
			}
			return c.Len() <= cap
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
