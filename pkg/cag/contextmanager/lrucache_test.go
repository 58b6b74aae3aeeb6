package contextmanager

import (
	"testing"
	"time"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

func TestContextLRU_SetGetInvalidate(t *testing.T) {
	c := newContextLRU(10, time.Minute)
	key := cacheKey("conv1", "user1")
	cm := &types.ContextMap{CurrentMessage: "hola"}

	c.set(key, cm)
	got, ok := c.get(key)
	if !ok || got.CurrentMessage != "hola" {
		t.Fatalf("expected cached entry, got ok=%v val=%+v", ok, got)
	}

	c.invalidate(key)
	if _, ok := c.get(key); ok {
		t.Fatal("expected the entry to be gone after invalidate")
	}
}

func TestCacheKey_DistinguishesUsers(t *testing.T) {
	if cacheKey("c1", "u1") == cacheKey("c1", "u2") {
		t.Fatal("expected cache keys to differ across users of the same conversation")
	}
}

func TestContextLRU_MissReturnsFalse(t *testing.T) {
	c := newContextLRU(10, time.Minute)
	if _, ok := c.get("missing"); ok {
		t.Fatal("expected a miss on an unset key")
	}
}
