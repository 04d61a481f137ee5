// Package images turns poster and backdrop locators into decoded images:
// a process-wide decode cache, a bounded concurrent fetch pipeline with
// recycling-safe cancellation, and a store that downloads remote art into
// the managed data directory.
package images

import (
	"image"
	"sync"
)

// Cache is a process-lifetime map from locator to decoded image. A locator
// is written at most once; re-putting an existing key is a no-op so racing
// loaders converge on the first decode.
type Cache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{images: make(map[string]image.Image)}
}

// Get returns the cached image for a locator.
func (c *Cache) Get(locator string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[locator]
	return img, ok
}

// Put stores the decoded image for a locator unless one is already present.
func (c *Cache) Put(locator string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.images[locator]; ok {
		return
	}
	c.images[locator] = img
}

// Len returns the number of cached locators.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear drops every cached image.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = make(map[string]image.Image)
}
