// Package contextmanager owns the ContextMap lifecycle: the LRU/TTL
// cache, per-conversation locking, fragmentation on large documents,
// versioned history, schema validation and merge, and the
// processMessage/processResponse orchestration wrapping ContextAnalyzer
// and GlobalMemory. This is the only package in the module that
// persists a ContextMap to disk (spec §4.7).
package contextmanager

import (
	"context"
	"encoding/json"

	"github.com/trigoo007/cagcore/pkg/asyncx"
	"github.com/trigoo007/cagcore/pkg/cag/collab"
	"github.com/trigoo007/cagcore/pkg/cag/contextanalyzer"
	"github.com/trigoo007/cagcore/pkg/cag/entities"
	"github.com/trigoo007/cagcore/pkg/cag/globalmemory"
	"github.com/trigoo007/cagcore/pkg/cag/memory"
	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/config"
	"github.com/trigoo007/cagcore/pkg/fsx"
	"github.com/trigoo007/cagcore/pkg/kernel"
	"github.com/trigoo007/cagcore/pkg/logx"
)

const processRetryAttempts = 2

// UpdateOptions configures updateContextMap. The zero value writes
// history, matching spec §4.7's default ("history is written unless
// options.saveHistory === false"); set SkipHistory to opt out.
type UpdateOptions struct {
	SkipHistory bool
	Strict      bool
}

// Manager is the ContextManager described in spec §4.7.
type Manager struct {
	fs  fsx.FileSystem
	cfg config.ContextManagerConfig

	cache *contextLRU
	locks *lockTable

	analyzer *contextanalyzer.Analyzer
	global   *globalmemory.GlobalMemory
	mem      *memory.Store
	entities *entities.Extractor
	docs     collab.DocumentProcessor
}

// New wires a Manager and starts its lock sweeper against ctx.
func New(ctx context.Context, fs fsx.FileSystem, cfg config.ContextManagerConfig, analyzer *contextanalyzer.Analyzer, global *globalmemory.GlobalMemory, mem *memory.Store, extractor *entities.Extractor, docs collab.DocumentProcessor) *Manager {
	m := &Manager{
		fs:       fs,
		cfg:      cfg,
		cache:    newContextLRU(cfg.MaxCacheSize, cfg.CacheTTL),
		locks:    newLockTable(cfg.LockTimeout, cfg.LockPollInterval, cfg.CacheTTL),
		analyzer: analyzer,
		global:   global,
		mem:      mem,
		entities: extractor,
		docs:     docs,
	}
	m.locks.runSweeper(ctx, cfg.LockSweepInterval)
	return m
}

func (m *Manager) contextPath(id kernel.ConversationID) string {
	return m.fs.Join(m.cfg.ContextDir, id.String()+".json")
}

// getContextMap returns the current ContextMap for a conversation,
// preferring the LRU cache, falling back to disk (reassembling
// fragments if needed).
func (m *Manager) GetContextMap(ctx context.Context, id kernel.ConversationID, userID kernel.UserID) (*types.ContextMap, error) {
	key := cacheKey(id.String(), userID.String())
	if cm, ok := m.cache.get(key); ok {
		return cm, nil
	}

	path := m.contextPath(id)
	exists, err := m.fs.Exists(ctx, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, managerErrors.New(ErrNotFound)
	}

	data, err := m.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var fragmented bool
	if v, ok := raw["_isFragmented"]; ok {
		_ = json.Unmarshal(v, &fragmented)
	}
	if fragmented {
		reassembled, err := reassembleFragments(ctx, m.fs, m.cfg.ContextDir, id.String(), fragmentableFields)
		if err != nil {
			return nil, err
		}
		for k, v := range reassembled {
			if _, inline := raw[k]; inline {
				continue
			}
			raw[k] = v
		}
	}

	merged, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var cm types.ContextMap
	if err := json.Unmarshal(merged, &cm); err != nil {
		return nil, err
	}

	m.cache.set(key, &cm)
	return &cm, nil
}

// updateContextMap persists cm under its conversation's lock: validates
// shape, fragments oversized array fields, writes the base document, and
// (unless opts.SkipHistory is set) appends a version file.
func (m *Manager) UpdateContextMap(ctx context.Context, cm *types.ContextMap, userID kernel.UserID, opts UpdateOptions) error {
	existing, err := m.GetContextMap(ctx, cm.ConversationID, userID)
	if err == nil && !existing.CanWrite(userID) {
		return managerErrors.New(ErrUnauthorized)
	}

	lockID, err := m.locks.acquire(ctx, cm.ConversationID)
	if err != nil {
		return err
	}
	defer m.locks.release(cm.ConversationID, lockID)

	if issues := validateContextMap(cm); len(issues) > 0 {
		logx.Warnf("contextmanager: validation issues for %s: %v", cm.ConversationID, issues)
		if opts.Strict {
			return managerErrors.New(ErrValidationFailed)
		}
	}

	data, err := json.Marshal(cm)
	if err != nil {
		return managerErrors.NewWithCause(ErrPersistFailed, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return managerErrors.NewWithCause(ErrPersistFailed, err)
	}

	base := raw
	var frags []fragment
	if len(data) > m.cfg.MaxFragmentSize {
		base, frags, err = splitFragments(raw)
		if err != nil {
			return managerErrors.NewWithCause(ErrPersistFailed, err)
		}
		base["_isFragmented"], _ = json.Marshal(true)
		for _, f := range frags {
			fdata, err := json.Marshal(f)
			if err != nil {
				return managerErrors.NewWithCause(ErrPersistFailed, err)
			}
			path := fragmentPath(m.fs, m.cfg.ContextDir, cm.ConversationID.String(), f.Key, f.Index)
			if err := m.fs.WriteFile(ctx, path, fdata); err != nil {
				return managerErrors.NewWithCause(ErrPersistFailed, err)
			}
		}
	}

	baseData, err := json.Marshal(base)
	if err != nil {
		return managerErrors.NewWithCause(ErrPersistFailed, err)
	}
	if err := m.fs.WriteFile(ctx, m.contextPath(cm.ConversationID), baseData); err != nil {
		return managerErrors.NewWithCause(ErrPersistFailed, err)
	}

	if !opts.SkipHistory {
		if err := writeHistory(ctx, m.fs, m.cfg.HistoryDir, cm); err != nil {
			logx.Warnf("contextmanager: failed to write history for %s: %v", cm.ConversationID, err)
		}
	}

	m.cache.set(cacheKey(cm.ConversationID.String(), userID.String()), cm)
	return nil
}

// deleteContext removes a conversation's cached and persisted ContextMap
// under its lock, after an ownership check.
func (m *Manager) DeleteContext(ctx context.Context, id kernel.ConversationID, userID kernel.UserID) error {
	cm, err := m.GetContextMap(ctx, id, userID)
	if err != nil {
		return err
	}
	if !cm.CanWrite(userID) {
		return managerErrors.New(ErrUnauthorized)
	}

	lockID, err := m.locks.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer m.locks.release(id, lockID)

	if err := m.fs.DeleteFile(ctx, m.contextPath(id)); err != nil {
		return managerErrors.NewWithCause(ErrPersistFailed, err)
	}
	m.cache.invalidate(cacheKey(id.String(), userID.String()))
	return nil
}

// enrichContext attaches GlobalMemory's relevant entities/topics. Failure
// is isolated: it logs and returns cm unchanged rather than failing the
// whole pipeline (spec §4.7's "errors isolated").
func (m *Manager) EnrichContext(ctx context.Context, cm *types.ContextMap) *types.ContextMap {
	if m.global == nil {
		return cm
	}
	topics := make([]string, 0, len(cm.Topics))
	for _, t := range cm.Topics {
		topics = append(topics, t.Name)
	}
	enriched, err := m.global.EnrichContextWithGlobalMemory(ctx, cm, globalmemory.EnrichOptions{CurrentTopics: topics})
	if err != nil {
		logx.Warnf("contextmanager: global memory enrichment failed for %s: %v", cm.ConversationID, err)
		return cm
	}
	return enriched
}

// processMessage is the user-turn pipeline: analyze (retried), enrich
// (errors isolated), persist.
func (m *Manager) ProcessMessage(ctx context.Context, conversationID kernel.ConversationID, userID kernel.UserID, message string) (*types.ContextMap, error) {
	cm, err := asyncx.Retry(ctx, processRetryAttempts, func(ctx context.Context) (*types.ContextMap, error) {
		return m.analyzer.AnalyzeMessage(ctx, conversationID, userID, message)
	})
	if err != nil {
		return nil, err
	}
	if cm.ConversationID.IsEmpty() {
		// Input guard tripped inside AnalyzeMessage (empty message or
		// missing conversationId): degrade to the minimal ContextMap,
		// no enrichment, no persistence.
		return cm, nil
	}

	cm = m.EnrichContext(ctx, cm)

	if err := m.UpdateContextMap(ctx, cm, userID, UpdateOptions{}); err != nil {
		logx.Errorf("contextmanager: failed to persist context for %s: %v", conversationID, err)
	}
	return cm, nil
}

// processResponse is the bot-turn pipeline: fold the response in
// (retried), update global memory (errors isolated), persist with
// history.
func (m *Manager) ProcessResponse(ctx context.Context, conversationID kernel.ConversationID, userID kernel.UserID, cm *types.ContextMap, userMessage, botResponse string) (*types.ContextMap, error) {
	updated, err := asyncx.Retry(ctx, processRetryAttempts, func(ctx context.Context) (*types.ContextMap, error) {
		return m.analyzer.UpdateAfterResponse(ctx, conversationID, userID, cm, userMessage, botResponse)
	})
	if err != nil {
		return nil, err
	}

	if m.global != nil {
		if _, err := m.global.UpdateGlobalMemory(ctx, updated, userMessage, botResponse, conversationID, globalmemory.UpdateOptions{}); err != nil {
			logx.Warnf("contextmanager: global memory update failed for %s: %v", conversationID, err)
		}
	}

	if err := m.UpdateContextMap(ctx, updated, userID, UpdateOptions{}); err != nil {
		logx.Errorf("contextmanager: failed to persist response context for %s: %v", conversationID, err)
	}
	return updated, nil
}

// SearchResult is the fanned-in result of searchContext: each slot is
// independently populated, with a failure yielding an empty slice rather
// than failing the whole search (spec §4.7).
type SearchResult struct {
	Entities []types.Entity
	Memory   []types.MemoryItem
	Documents []types.DocumentRef
}

// searchContext runs entity, memory and document search in parallel.
func (m *Manager) SearchContext(ctx context.Context, conversationID kernel.ConversationID, query string) SearchResult {
	var entFuture *asyncx.Future[[]types.Entity]
	if m.entities != nil {
		entFuture = asyncx.Run(func() ([]types.Entity, error) {
			return m.entities.SearchEntities(ctx, query, nil), nil
		})
	}

	var memFuture *asyncx.Future[[]types.MemoryItem]
	if m.mem != nil {
		memFuture = asyncx.Run(func() ([]types.MemoryItem, error) {
			return m.mem.SearchMemory(ctx, conversationID, query)
		})
	}

	var docFuture *asyncx.Future[[]types.DocumentRef]
	if m.docs != nil {
		docFuture = asyncx.Run(func() ([]types.DocumentRef, error) {
			return m.docs.SearchDocuments(ctx, conversationID, query)
		})
	}

	var result SearchResult
	if entFuture != nil {
		if v, err := entFuture.Await(); err == nil {
			result.Entities = v
		} else {
			logx.Warnf("contextmanager: entity search failed: %v", err)
		}
	}
	if memFuture != nil {
		if v, err := memFuture.Await(); err == nil {
			result.Memory = v
		} else {
			logx.Warnf("contextmanager: memory search failed: %v", err)
		}
	}
	if docFuture != nil {
		if v, err := docFuture.Await(); err == nil {
			result.Documents = v
		} else {
			logx.Warnf("contextmanager: document search failed: %v", err)
		}
	}
	return result
}

// getContextStats reports a cheap operational snapshot.
type Stats struct {
	CachedContexts int
	AnalyzerStats  contextanalyzer.Stats
}

func (m *Manager) GetContextStats() Stats {
	return Stats{
		CachedContexts: m.cache.inner.Len(),
		AnalyzerStats:  m.analyzer.GetStats(),
	}
}

func (m *Manager) GetContextVersion(ctx context.Context, id kernel.ConversationID, versionID string) (*types.ContextMap, error) {
	return readVersion(ctx, m.fs, m.cfg.HistoryDir, id.String(), versionID)
}

func (m *Manager) GetContextVersions(ctx context.Context, id kernel.ConversationID) ([]kernel.VersionID, error) {
	return listVersions(ctx, m.fs, m.cfg.HistoryDir, id.String())
}

// MergeContexts merges source into target following strategy, returning
// a new ContextMap (the inputs are left untouched).
func (m *Manager) MergeContexts(target, source *types.ContextMap, strategy MergeStrategy) (*types.ContextMap, error) {
	tData, err := json.Marshal(target)
	if err != nil {
		return nil, err
	}
	sData, err := json.Marshal(source)
	if err != nil {
		return nil, err
	}

	var tGeneric, sGeneric interface{}
	if err := json.Unmarshal(tData, &tGeneric); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sData, &sGeneric); err != nil {
		return nil, err
	}

	merged := mergeContexts(tGeneric, sGeneric, strategy)
	mergedData, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}

	var out types.ContextMap
	if err := json.Unmarshal(mergedData, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
