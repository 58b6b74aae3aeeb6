// Package memory implements the MemoryStore: per-conversation short/long
// term memory with relevance scoring, temporal decay, promotion and
// search.
package memory

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/trigoo007/cagcore/pkg/config"
	"github.com/trigoo007/cagcore/pkg/fsx"
	"github.com/trigoo007/cagcore/pkg/kernel"
	"github.com/trigoo007/cagcore/pkg/logx"

	"github.com/trigoo007/cagcore/pkg/cag/types"
)

const relevanceThreshold = 0.2

// Store is the per-conversation memory document manager.
type Store struct {
	fs  fsx.FileSystem
	cfg config.MemoryConfig
}

func New(fs fsx.FileSystem, cfg config.MemoryConfig) *Store {
	return &Store{fs: fs, cfg: cfg}
}

func (s *Store) shortTermPath(id kernel.ConversationID) string {
	return s.fs.Join(s.cfg.ShortTermDir, id.String()+".json")
}

func (s *Store) longTermPath(id kernel.ConversationID) string {
	return s.fs.Join(s.cfg.LongTermDir, id.String()+".json")
}

func (s *Store) readList(ctx context.Context, path string) ([]types.MemoryItem, error) {
	exists, err := s.fs.Exists(ctx, path)
	if err != nil {
		return nil, memoryErrors.NewWithCause(ErrStorageReadFailed, err)
	}
	if !exists {
		return nil, nil
	}
	data, err := s.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, memoryErrors.NewWithCause(ErrStorageReadFailed, err)
	}
	var items []types.MemoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		logx.Errorf("memory: corrupt document %s, treating as empty: %v", path, err)
		return nil, nil
	}
	return items, nil
}

func (s *Store) writeList(ctx context.Context, path string, items []types.MemoryItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return memoryErrors.NewWithCause(ErrStorageWriteFailed, err)
	}
	if err := s.fs.WriteFile(ctx, path, data); err != nil {
		return memoryErrors.NewWithCause(ErrStorageWriteFailed, err)
	}
	return nil
}

// GetMemory loads both tiers, applies decay-on-read to long-term items,
// and persists the decayed state back (decay is a read-triggered mutation
// per spec §4.5).
func (s *Store) GetMemory(ctx context.Context, id kernel.ConversationID) (types.Memory, error) {
	shortTerm, err := s.readList(ctx, s.shortTermPath(id))
	if err != nil {
		return types.Memory{ConversationID: id}, err
	}
	longTerm, err := s.readList(ctx, s.longTermPath(id))
	if err != nil {
		return types.Memory{ConversationID: id}, err
	}

	now := time.Now()
	decayed := make([]types.MemoryItem, 0, len(longTerm))
	for _, item := range longTerm {
		days := now.Sub(item.Timestamp).Hours() / 24
		item.Relevance *= math.Pow(s.cfg.DecayFactor, days)
		if item.Relevance < s.cfg.RelevanceThreshold {
			continue
		}
		item.AccessCount++
		item.LastAccessed = now
		decayed = append(decayed, item)
	}

	for i := range shortTerm {
		shortTerm[i].AccessCount++
		shortTerm[i].LastAccessed = now
	}

	if len(decayed) != len(longTerm) {
		if err := s.writeList(ctx, s.longTermPath(id), decayed); err != nil {
			logx.Errorf("memory: failed to persist decay for %s: %v", id, err)
		}
	} else if len(longTerm) > 0 {
		if err := s.writeList(ctx, s.longTermPath(id), decayed); err != nil {
			logx.Errorf("memory: failed to persist access counters for %s: %v", id, err)
		}
	}
	if len(shortTerm) > 0 {
		if err := s.writeList(ctx, s.shortTermPath(id), shortTerm); err != nil {
			logx.Errorf("memory: failed to persist access counters for %s: %v", id, err)
		}
	}

	return types.Memory{
		ConversationID: id,
		ShortTerm:      shortTerm,
		LongTerm:       decayed,
		LastAccessed:   now,
		ItemCount:      len(shortTerm) + len(decayed),
	}, nil
}

// UpdateMemory scores item, prepends it to short-term, and demotes
// overflow into long-term per the policy in spec §4.5.
func (s *Store) UpdateMemory(ctx context.Context, id kernel.ConversationID, item types.MemoryItem) error {
	item.Relevance = score(item)
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}

	shortTerm, err := s.readList(ctx, s.shortTermPath(id))
	if err != nil {
		return err
	}
	longTerm, err := s.readList(ctx, s.longTermPath(id))
	if err != nil {
		return err
	}

	shortTerm = append([]types.MemoryItem{item}, shortTerm...)

	maxShort := s.cfg.MaxShortTermItems
	if maxShort <= 0 {
		maxShort = 25
	}
	if len(shortTerm) > maxShort {
		overflow := shortTerm[maxShort:]
		shortTerm = shortTerm[:maxShort]
		for _, o := range overflow {
			if o.Relevance >= relevanceThreshold {
				longTerm = append(longTerm, o)
			}
		}
	}

	sort.Slice(longTerm, func(i, j int) bool { return longTerm[i].Relevance > longTerm[j].Relevance })
	maxLong := s.cfg.MaxLongTermItems
	if maxLong <= 0 {
		maxLong = 100
	}
	if len(longTerm) > maxLong {
		longTerm = longTerm[:maxLong]
	}

	if err := s.writeList(ctx, s.shortTermPath(id), shortTerm); err != nil {
		return err
	}
	return s.writeList(ctx, s.longTermPath(id), longTerm)
}

// SearchMemory tokenizes query (tokens longer than 3 chars) and scores
// every item across both tiers by hit ratio against user/bot text and
// entity names, per spec §4.5.
func (s *Store) SearchMemory(ctx context.Context, id kernel.ConversationID, query string) ([]types.MemoryItem, error) {
	shortTerm, err := s.readList(ctx, s.shortTermPath(id))
	if err != nil {
		return nil, err
	}
	longTerm, err := s.readList(ctx, s.longTermPath(id))
	if err != nil {
		return nil, err
	}

	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	type scored struct {
		item  types.MemoryItem
		score float64
	}
	var results []scored
	for _, item := range append(append([]types.MemoryItem{}, shortTerm...), longTerm...) {
		userRatio := hitRatio(tokens, item.UserMessage)
		botRatio := hitRatio(tokens, item.BotResponse)
		entityHits := entityHitRatio(tokens, item.Entities)

		sc := (0.6*userRatio + 0.4*botRatio + 0.2*entityHits) * item.Relevance
		if sc > 0.1 {
			results = append(results, scored{item, sc})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].score > results[j].score })
	out := make([]types.MemoryItem, len(results))
	for i, r := range results {
		out[i] = r.item
	}
	return out, nil
}

func queryTokens(query string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if len(tok) > 3 {
			out = append(out, tok)
		}
	}
	return out
}

func hitRatio(tokens []string, text string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

func entityHitRatio(tokens []string, ents []types.Entity) float64 {
	if len(tokens) == 0 || len(ents) == 0 {
		return 0
	}
	hits := 0
	for _, tok := range tokens {
		for _, e := range ents {
			if strings.Contains(strings.ToLower(e.Name), tok) {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(tokens))
}

// PromoteToLongTerm moves the short-term items matching ids into long-term,
// boosting their relevance by 0.2 (capped at 1.0) and stamping PromotedAt.
func (s *Store) PromoteToLongTerm(ctx context.Context, id kernel.ConversationID, ids []string) error {
	shortTerm, err := s.readList(ctx, s.shortTermPath(id))
	if err != nil {
		return err
	}
	longTerm, err := s.readList(ctx, s.longTermPath(id))
	if err != nil {
		return err
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	now := time.Now()
	remaining := shortTerm[:0]
	for _, item := range shortTerm {
		if wanted[item.ID] {
			item.Relevance += 0.2
			if item.Relevance > 1 {
				item.Relevance = 1
			}
			item.PromotedAt = &now
			longTerm = append(longTerm, item)
			continue
		}
		remaining = append(remaining, item)
	}

	sort.Slice(longTerm, func(i, j int) bool { return longTerm[i].Relevance > longTerm[j].Relevance })
	if len(longTerm) > s.cfg.MaxLongTermItems {
		longTerm = longTerm[:s.cfg.MaxLongTermItems]
	}

	if err := s.writeList(ctx, s.shortTermPath(id), remaining); err != nil {
		return err
	}
	return s.writeList(ctx, s.longTermPath(id), longTerm)
}

// DeleteMemory removes both tiers for id.
func (s *Store) DeleteMemory(ctx context.Context, id kernel.ConversationID) error {
	if err := s.fs.DeleteFile(ctx, s.shortTermPath(id)); err != nil {
		return memoryErrors.NewWithCause(ErrStorageWriteFailed, err)
	}
	if err := s.fs.DeleteFile(ctx, s.longTermPath(id)); err != nil {
		return memoryErrors.NewWithCause(ErrStorageWriteFailed, err)
	}
	return nil
}

// ResetMemory copies both tiers to a timestamped backup directory, then
// deletes them, per spec §4.5.
func (s *Store) ResetMemory(ctx context.Context, id kernel.ConversationID) error {
	ts := time.Now().Format("20060102T150405")
	backupDir := s.fs.Join(s.cfg.BackupDir, ts)

	for _, pair := range []struct{ src, name string }{
		{s.shortTermPath(id), "short_term"},
		{s.longTermPath(id), "long_term"},
	} {
		exists, err := s.fs.Exists(ctx, pair.src)
		if err != nil {
			return memoryErrors.NewWithCause(ErrBackupFailed, err)
		}
		if !exists {
			continue
		}
		data, err := s.fs.ReadFile(ctx, pair.src)
		if err != nil {
			return memoryErrors.NewWithCause(ErrBackupFailed, err)
		}
		dst := s.fs.Join(backupDir, id.String()+"_"+pair.name+".json")
		if err := s.fs.WriteFile(ctx, dst, data); err != nil {
			return memoryErrors.NewWithCause(ErrBackupFailed, err)
		}
	}

	return s.DeleteMemory(ctx, id)
}

// PerformMaintenance unlinks short-term files older than the configured
// max age and compacts long-term files to the configured cap. The
// conversation ids to compact come from listing the long-term directory.
func (s *Store) PerformMaintenance(ctx context.Context) error {
	infos, err := s.fs.List(ctx, s.cfg.ShortTermDir)
	if err != nil {
		return nil
	}

	now := time.Now()
	for _, info := range infos {
		if info.IsDir {
			continue
		}
		if now.Sub(info.ModTime) > s.cfg.ShortTermMaxAge {
			path := s.fs.Join(s.cfg.ShortTermDir, info.Name)
			if err := s.fs.DeleteFile(ctx, path); err != nil {
				logx.Errorf("memory: maintenance failed to delete %s: %v", path, err)
			}
		}
	}

	longInfos, err := s.fs.List(ctx, s.cfg.LongTermDir)
	if err != nil {
		return nil
	}
	for _, info := range longInfos {
		if info.IsDir {
			continue
		}
		id := kernel.NewConversationID(strings.TrimSuffix(info.Name, ".json"))
		items, err := s.readList(ctx, s.longTermPath(id))
		if err != nil {
			continue
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Relevance > items[j].Relevance })
		if len(items) > s.cfg.MaxLongTermItems {
			items = items[:s.cfg.MaxLongTermItems]
		}
		if err := s.writeList(ctx, s.longTermPath(id), items); err != nil {
			logx.Errorf("memory: maintenance failed to compact %s: %v", id, err)
		}
	}
	return nil
}
