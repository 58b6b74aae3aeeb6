package entities

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/trigoo007/cagcore/pkg/fsx"
	"github.com/trigoo007/cagcore/pkg/logx"
)

// catalogEntry is one known entity persisted in a catalog file, keyed by
// name for quick whole-word matching against incoming text.
type catalogEntry struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}

// catalog holds one on-disk known-entity list (persons, organizations,
// locations or concepts), loaded once at startup and mutated only through
// saveEntity under its own mutex — the "shared resource policy" of spec §5.
type catalog struct {
	mu      sync.RWMutex
	fs      fsx.FileSystem
	path    string
	entries map[string]catalogEntry // keyed by lowercased name
}

func newCatalog(fs fsx.FileSystem, path string) *catalog {
	return &catalog{fs: fs, path: path, entries: make(map[string]catalogEntry)}
}

func (c *catalog) load(ctx context.Context) error {
	exists, err := c.fs.Exists(ctx, c.path)
	if err != nil {
		return entityErrors.NewWithCause(ErrCatalogLoadFailed, err)
	}
	if !exists {
		return nil
	}

	data, err := c.fs.ReadFile(ctx, c.path)
	if err != nil {
		return entityErrors.NewWithCause(ErrCatalogLoadFailed, err)
	}

	var list []catalogEntry
	if err := json.Unmarshal(data, &list); err != nil {
		logx.Errorf("entities: corrupt catalog %s, starting empty: %v", c.path, err)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range list {
		c.entries[strings.ToLower(e.Name)] = e
	}
	return nil
}

// save appends entry (or replaces an existing one by name) and rewrites the
// whole catalog file, holding the catalog's own mutex for the duration.
func (c *catalog) save(ctx context.Context, entry catalogEntry) error {
	c.mu.Lock()
	c.entries[strings.ToLower(entry.Name)] = entry
	list := make([]catalogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		list = append(list, e)
	}
	c.mu.Unlock()

	data, err := json.Marshal(list)
	if err != nil {
		return entityErrors.NewWithCause(ErrCatalogSaveFailed, err)
	}
	if err := c.fs.WriteFile(ctx, c.path, data); err != nil {
		return entityErrors.NewWithCause(ErrCatalogSaveFailed, err)
	}
	return nil
}

// catalogMatch is one hit found by matches: the entry and whether it was
// matched via an alias (which carries a confidence penalty relative to a
// direct name hit). matches scans lowered (already space-padded) text for
// whole-word occurrences and returns every entry whose name or alias occurs.
type catalogMatch struct {
	entry   catalogEntry
	viaAlias bool
}

func (c *catalog) matches(paddedLowerText string) []catalogMatch {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []catalogMatch
	for _, e := range c.entries {
		name := strings.ToLower(e.Name)
		if containsWholeWord(paddedLowerText, name) {
			out = append(out, catalogMatch{entry: e, viaAlias: false})
			continue
		}
		for _, alias := range e.Aliases {
			if containsWholeWord(paddedLowerText, strings.ToLower(alias)) {
				out = append(out, catalogMatch{entry: e, viaAlias: true})
				break
			}
		}
	}
	return out
}

func containsWholeWord(paddedText, word string) bool {
	if word == "" {
		return false
	}
	needle := " " + word + " "
	return strings.Contains(paddedText, needle)
}
