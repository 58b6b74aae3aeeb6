package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/trigoo007/cagcore/pkg/config"
)

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		CacheCleanupCron:     "@every 1h",
		MemoryCron:           "@every 1h",
		GlobalMemoryCron:     "@every 1h",
		MetricsRetentionCron: "@every 1h",
		MetricsRetention:     30 * 24 * time.Hour,
	}
}

func TestScheduler_StartTwiceReturnsAlreadyRunning(t *testing.T) {
	s := New(testConfig(), nil, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("first start: %v", err)
	}
	defer s.Stop()

	if err := s.Start(ctx); err == nil {
		t.Fatal("expected the second start to fail with already-running")
	}
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := New(testConfig(), nil, nil, nil, nil)
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
	s.Stop() // must not panic or block
}

func TestScheduler_StopBeforeStartIsNoop(t *testing.T) {
	s := New(testConfig(), nil, nil, nil, nil)
	s.Stop() // must not panic
}

func TestRunIsolated_RecoversPanic(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		runIsolated(context.Background(), "panicky", func(ctx context.Context) error {
			panic("boom")
		})
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected runIsolated to recover the panic and return")
	}
}

func TestRunIsolated_LogsErrorWithoutPanicking(t *testing.T) {
	runIsolated(context.Background(), "failing", func(ctx context.Context) error {
		return context.DeadlineExceeded
	})
}

func TestScheduler_ContextCancellationStopsScheduler(t *testing.T) {
	s := New(testConfig(), nil, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()
	time.Sleep(50 * time.Millisecond)

	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if running {
		t.Fatal("expected context cancellation to stop the scheduler")
	}
}
