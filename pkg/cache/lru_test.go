package cache_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/slugkit/pkg/cache"
)

func TestLRUCache_Basic(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUCache[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Put("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUCache[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // b becomes least recently used
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRUCache_RemoveAndClear(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUCache[int, string](3)
	c.Put(1, "one")
	c.Put(2, "two")

	assert.True(t, c.Remove(1))
	assert.False(t, c.Remove(1))
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get(2)
	assert.False(t, ok)
}

func TestLRUCache_InvalidCapacity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { cache.NewLRUCache[string, int](0) })
	assert.Panics(t, func() { cache.NewLRUCache[string, int](-1) })
}

func TestLRUCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUCache[string, int](50)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := strconv.Itoa((g*200 + i) % 100)
				c.Put(key, i)
				c.Get(key)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}
