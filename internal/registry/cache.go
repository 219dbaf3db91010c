package registry

import "sync"

// DeviceCache is the process-wide set of device identifiers already known to
// exist in the store. It is a cache only: the store's uniqueness constraint
// remains the source of truth for provisioning. The set grows monotonically
// and is never pruned, so devices removed administratively stay in the fast
// path until restart (accepted staleness window).
//
// The MQTT consumer goroutine and HTTP handler goroutines share one
// instance, hence the lock around every access.
type DeviceCache struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewDeviceCache() *DeviceCache {
	return &DeviceCache{ids: make(map[string]struct{})}
}

func (c *DeviceCache) Contains(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[id]
	return ok
}

func (c *DeviceCache) Insert(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[id] = struct{}{}
}

func (c *DeviceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}
