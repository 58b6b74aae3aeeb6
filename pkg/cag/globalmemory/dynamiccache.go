package globalmemory

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

// dynamicTTLCache fronts the single global memory document with an LRU
// whose TTL narrows or widens with update activity (spec §4.6): base 5
// min; halved above 100 updates/24h; doubled below 10. expirable.LRU
// fixes its TTL at construction, so a TTL change swaps the underlying LRU
// wholesale rather than mutating it in place.
type dynamicTTLCache struct {
	mu      sync.Mutex
	baseTTL time.Duration
	size    int
	highThreshold int
	lowThreshold  int

	currentTTL time.Duration
	lru        *lru.LRU[string, *types.GlobalMemoryDoc]
}

func newDynamicTTLCache(size int, baseTTL time.Duration, highThreshold, lowThreshold int) *dynamicTTLCache {
	c := &dynamicTTLCache{
		baseTTL:       baseTTL,
		size:          size,
		highThreshold: highThreshold,
		lowThreshold:  lowThreshold,
	}
	c.currentTTL = baseTTL
	c.lru = lru.NewLRU[string, *types.GlobalMemoryDoc](size, nil, baseTTL)
	return c
}

func (c *dynamicTTLCache) ttlFor(updatesLast24h int) time.Duration {
	switch {
	case updatesLast24h > c.highThreshold:
		return c.baseTTL / 2
	case updatesLast24h < c.lowThreshold:
		return c.baseTTL * 2
	default:
		return c.baseTTL
	}
}

// adjust recomputes the TTL from current activity and swaps the LRU if it
// changed, dropping any cached entry (safe: GlobalMemory always has a
// source of truth behind the cache).
func (c *dynamicTTLCache) adjust(updatesLast24h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	want := c.ttlFor(updatesLast24h)
	if want == c.currentTTL {
		return
	}
	c.currentTTL = want
	c.lru = lru.NewLRU[string, *types.GlobalMemoryDoc](c.size, nil, want)
}

func (c *dynamicTTLCache) get(key string) (*types.GlobalMemoryDoc, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(key)
}

func (c *dynamicTTLCache) set(key string, doc *types.GlobalMemoryDoc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, doc)
}

func (c *dynamicTTLCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}
