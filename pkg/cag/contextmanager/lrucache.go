package contextmanager

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

// cacheKey combines conversation and user into the ContextMap LRU's key,
// so per-user views of a shared conversation never collide.
func cacheKey(conversationID, userID string) string {
	return conversationID + ":" + userID
}

// contextLRU wraps expirable.LRU for *types.ContextMap, giving the
// manager a named type to store alongside the rest of its state.
type contextLRU struct {
	inner *lru.LRU[string, *types.ContextMap]
}

func newContextLRU(maxEntries int, ttl time.Duration) *contextLRU {
	return &contextLRU{inner: lru.NewLRU[string, *types.ContextMap](maxEntries, nil, ttl)}
}

func (c *contextLRU) get(key string) (*types.ContextMap, bool) {
	return c.inner.Get(key)
}

func (c *contextLRU) set(key string, cm *types.ContextMap) {
	c.inner.Add(key, cm)
}

func (c *contextLRU) invalidate(key string) {
	c.inner.Remove(key)
}
