package gallery

import (
	"sync"
)

// BundleCache keeps resolved bundles in memory for the lifetime of the
// process. A background loader may fill it while the UI thread reads, so all
// access goes through a read-write mutex. There is no expiry: entries leave
// only through invalidation or a wholesale clear on story switch.
type BundleCache struct {
	mu      sync.RWMutex
	bundles map[int64]Bundle
}

// NewBundleCache creates an empty BundleCache.
func NewBundleCache() *BundleCache {
	return &BundleCache{
		bundles: make(map[int64]Bundle),
	}
}

// Get returns the cached bundle for an image, if present.
func (c *BundleCache) Get(imageID int64) (Bundle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bundle, ok := c.bundles[imageID]
	return bundle, ok
}

// Put stores the bundle for an image, replacing any previous entry.
func (c *BundleCache) Put(imageID int64, bundle Bundle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bundles[imageID] = bundle
}

// Invalidate drops the entries for the given images. Unknown ids are ignored.
func (c *BundleCache) Invalidate(imageIDs ...int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range imageIDs {
		delete(c.bundles, id)
	}
}

// Clear drops every entry. Called when the active story switches.
func (c *BundleCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bundles = make(map[int64]Bundle)
}

// Len returns the number of cached bundles.
func (c *BundleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bundles)
}
