package gallery

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBundleCache(t *testing.T) {
	cache := NewBundleCache()

	_, ok := cache.Get(1)
	assert.False(t, ok)
	assert.Zero(t, cache.Len())

	cache.Put(1, Bundle{ImageID: 1})
	cache.Put(2, Bundle{ImageID: 2, Tags: []CharacterTag{{ID: 7, ImageID: 2}}})

	got, ok := cache.Get(1)
	assert.True(t, ok)
	assert.Equal(t, int64(1), got.ImageID)
	assert.Equal(t, 2, cache.Len())

	t.Run("put replaces the previous entry", func(t *testing.T) {
		cache.Put(1, Bundle{ImageID: 1, QuickEvents: []QuickEvent{{ID: 3, ImageID: 1}}})
		got, ok := cache.Get(1)
		assert.True(t, ok)
		assert.Len(t, got.QuickEvents, 1)
		assert.Equal(t, 2, cache.Len())
	})

	t.Run("invalidate ignores unknown ids", func(t *testing.T) {
		cache.Invalidate(1, 9999)
		_, ok := cache.Get(1)
		assert.False(t, ok)
		_, ok = cache.Get(2)
		assert.True(t, ok)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("clear drops everything", func(t *testing.T) {
		cache.Clear()
		_, ok := cache.Get(2)
		assert.False(t, ok)
		assert.Zero(t, cache.Len())
	})
}

func TestBundleCache_ConcurrentAccess(t *testing.T) {
	cache := NewBundleCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int64) {
			defer wg.Done()
			for id := int64(0); id < 100; id++ {
				cache.Put(id, Bundle{ImageID: id})
				cache.Get(id)
				if worker%2 == 0 {
					cache.Invalidate(id)
				}
				cache.Len()
			}
		}(int64(i))
	}
	wg.Wait()

	cache.Clear()
	assert.Zero(t, cache.Len())
}
