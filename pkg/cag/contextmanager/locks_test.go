package contextmanager

import (
	"context"
	"testing"
	"time"

	"github.com/trigoo007/cagcore/pkg/kernel"
)

func TestLockTable_AcquireReleaseRoundTrip(t *testing.T) {
	lt := newLockTable(time.Second, 5*time.Millisecond, time.Minute)
	id := kernel.NewConversationID("c1")

	lockID, err := lt.acquire(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lockID == "" {
		t.Fatal("expected a non-empty lock id")
	}
	lt.release(id, lockID)

	if _, held := lt.entries[id]; held {
		t.Fatal("expected the lock to be released")
	}
}

func TestLockTable_SecondAcquireBlocksUntilTimeout(t *testing.T) {
	lt := newLockTable(20*time.Millisecond, 5*time.Millisecond, time.Minute)
	id := kernel.NewConversationID("c1")

	if _, err := lt.acquire(context.Background(), id); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	_, err := lt.acquire(context.Background(), id)
	if err == nil {
		t.Fatal("expected a timeout error on the already-held lock")
	}
}

func TestLockTable_ReleaseIgnoresStaleLockID(t *testing.T) {
	lt := newLockTable(time.Second, 5*time.Millisecond, time.Minute)
	id := kernel.NewConversationID("c1")

	lockID, err := lt.acquire(context.Background(), id)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	lt.release(id, "not-the-real-lock-id")

	if _, held := lt.entries[id]; !held {
		t.Fatal("expected the lock to survive a release with the wrong lock id")
	}
	lt.release(id, lockID)
}

func TestLockTable_SweepDropsOrphanedLocks(t *testing.T) {
	lt := newLockTable(time.Second, 5*time.Millisecond, 10*time.Millisecond)
	id := kernel.NewConversationID("c1")

	if _, err := lt.acquire(context.Background(), id); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	lt.sweep()

	if _, held := lt.entries[id]; held {
		t.Fatal("expected sweep to drop the orphaned lock")
	}
}

func TestLockTable_AcquireRespectsContextCancellation(t *testing.T) {
	lt := newLockTable(time.Second, 50*time.Millisecond, time.Minute)
	id := kernel.NewConversationID("c1")
	if _, err := lt.acquire(context.Background(), id); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := lt.acquire(ctx, id)
	if err == nil {
		t.Fatal("expected context cancellation to abort the wait")
	}
}
