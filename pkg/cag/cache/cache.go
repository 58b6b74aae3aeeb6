// Package cache implements the AnalysisCache: a content-addressed,
// two-tier (in-memory LRU + on-disk) cache of per-message semantic
// analyses, keyed by an MD5 hash of the normalized message text.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/fsx"
	"github.com/trigoo007/cagcore/pkg/logx"
)

// Stats are the cache's exposed hit/miss/entry counters.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// Cache is the two-tier analysis cache described in spec §4.3.
type Cache struct {
	fs      fsx.FileSystem
	diskDir string
	expiry  time.Duration

	memory *lru.LRU[string, types.SemanticAnalysis]

	hits   atomic.Int64
	misses atomic.Int64

	mu   sync.Mutex
	rand *rand.Rand
}

func New(fs fsx.FileSystem, diskDir string, maxEntries int, expiry time.Duration) *Cache {
	c := &Cache{
		fs:      fs,
		diskDir: diskDir,
		expiry:  expiry,
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.memory = lru.NewLRU[string, types.SemanticAnalysis](maxEntries, nil, expiry)
	return c
}

// Key computes the content-addressed cache key: MD5 of the normalized
// (lowercased, whitespace-collapsed) message.
func Key(message string) string {
	sum := md5.Sum([]byte(types.NormalizeMessage(message)))
	return hex.EncodeToString(sum[:])
}

type diskEntry struct {
	Analysis types.SemanticAnalysis `json:"analysis"`
	StoredAt time.Time              `json:"storedAt"`
}

func (c *Cache) diskPath(key string) string {
	return c.fs.Join(c.diskDir, key+".json")
}

// Get reads the memory tier first; on miss, reads disk, refreshes memory,
// and returns. A disk entry older than the cache's TTL is treated as a
// miss and unlinked.
func (c *Cache) Get(ctx context.Context, message string) (types.SemanticAnalysis, bool) {
	key := Key(message)

	if analysis, ok := c.memory.Get(key); ok {
		c.hits.Add(1)
		return analysis, true
	}

	path := c.diskPath(key)
	exists, err := c.fs.Exists(ctx, path)
	if err != nil || !exists {
		c.misses.Add(1)
		return types.SemanticAnalysis{}, false
	}

	data, err := c.fs.ReadFile(ctx, path)
	if err != nil {
		c.misses.Add(1)
		return types.SemanticAnalysis{}, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		logx.Errorf("cache: corrupt disk entry %s: %v", path, err)
		c.misses.Add(1)
		return types.SemanticAnalysis{}, false
	}

	if time.Since(entry.StoredAt) > c.expiry {
		_ = c.fs.DeleteFile(ctx, path)
		c.misses.Add(1)
		return types.SemanticAnalysis{}, false
	}

	c.memory.Add(key, entry.Analysis)
	c.hits.Add(1)
	return entry.Analysis, true
}

// Set writes through to both tiers.
func (c *Cache) Set(ctx context.Context, message string, analysis types.SemanticAnalysis) error {
	key := Key(message)
	c.memory.Add(key, analysis)

	data, err := json.Marshal(diskEntry{Analysis: analysis, StoredAt: time.Now()})
	if err != nil {
		return cacheErrors.NewWithCause(ErrDiskWriteFailed, err)
	}
	if err := c.fs.WriteFile(ctx, c.diskPath(key), data); err != nil {
		return cacheErrors.NewWithCause(ErrDiskWriteFailed, err)
	}
	return nil
}

// Stats reports current hit/miss counters and memory-tier entry count.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.memory.Len(),
	}
}

// HitRate is hits / (hits + misses), 0 when no lookups have happened yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cleanup implements the probabilistic decay policy of spec §4.3: disk
// entries older than a week are unlinked unconditionally; older than 3
// days are kept with probability 0.7; older than 1 day, with 0.9.
func (c *Cache) Cleanup(ctx context.Context) error {
	infos, err := c.fs.List(ctx, c.diskDir)
	if err != nil {
		return nil // empty/missing cache dir is not an error
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for _, info := range infos {
		if info.IsDir {
			continue
		}
		age := now.Sub(info.ModTime)

		var keepProbability float64
		switch {
		case age > 7*24*time.Hour:
			keepProbability = 0
		case age > 3*24*time.Hour:
			keepProbability = 0.7
		case age > 24*time.Hour:
			keepProbability = 0.9
		default:
			continue // too young to be a cleanup candidate
		}

		if keepProbability == 0 || c.rand.Float64() > keepProbability {
			path := c.fs.Join(c.diskDir, info.Name)
			if err := c.fs.DeleteFile(ctx, path); err != nil {
				logx.Errorf("cache: cleanup failed to delete %s: %v", path, err)
			}
		}
	}
	return nil
}
