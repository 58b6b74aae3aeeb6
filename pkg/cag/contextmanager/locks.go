package contextmanager

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trigoo007/cagcore/pkg/kernel"
	"github.com/trigoo007/cagcore/pkg/logx"
)

type lockEntry struct {
	lockID     string
	acquiredAt time.Time
}

// lockTable is the process-wide conversationId → lock map described in
// spec §4.7. All mutating manager operations acquire a conversation's
// lock before touching its ContextMap; reads never take it.
type lockTable struct {
	mu       sync.Mutex
	entries  map[kernel.ConversationID]lockEntry
	timeout  time.Duration
	poll     time.Duration
	maxAge   time.Duration
}

func newLockTable(timeout, poll, maxAge time.Duration) *lockTable {
	return &lockTable{
		entries: make(map[kernel.ConversationID]lockEntry),
		timeout: timeout,
		poll:    poll,
		maxAge:  maxAge,
	}
}

// acquire spins with poll-interval retries until the conversation's slot
// is free or the timeout elapses, per spec §4.7.
func (t *lockTable) acquire(ctx context.Context, id kernel.ConversationID) (string, error) {
	deadline := time.Now().Add(t.timeout)
	lockID := uuid.NewString()

	for {
		t.mu.Lock()
		_, held := t.entries[id]
		if !held {
			t.entries[id] = lockEntry{lockID: lockID, acquiredAt: time.Now()}
			t.mu.Unlock()
			return lockID, nil
		}
		t.mu.Unlock()

		if time.Now().After(deadline) {
			return "", managerErrors.New(ErrLockTimeout)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(t.poll):
		}
	}
}

// release drops the lock only if lockID still matches the holder,
// preventing a timed-out caller from releasing a lock it no longer owns.
func (t *lockTable) release(id kernel.ConversationID, lockID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, ok := t.entries[id]; ok && entry.lockID == lockID {
		delete(t.entries, id)
	}
}

// sweep drops locks older than maxAge, protecting against orphaned locks
// left behind by a crashed holder.
func (t *lockTable) sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := time.Now().Add(-t.maxAge)
	for id, entry := range t.entries {
		if entry.acquiredAt.Before(cutoff) {
			logx.Warnf("contextmanager: sweeping orphaned lock for conversation %s", id)
			delete(t.entries, id)
		}
	}
}

// runSweeper starts a background goroutine that sweeps stale locks every
// interval until ctx is done.
func (t *lockTable) runSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.sweep()
			}
		}
	}()
}
