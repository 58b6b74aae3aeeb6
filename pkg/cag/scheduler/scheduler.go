// Package scheduler hosts the periodic maintenance jobs described in
// spec §4.8: cache cleanup, memory-store maintenance, global-memory
// maintenance and metrics-retention pruning. Each job is registered as
// its own cron entry so a panic or error in one never stops the others,
// mirroring the teacher's jobx worker-loop isolation.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/trigoo007/cagcore/pkg/cag/cache"
	"github.com/trigoo007/cagcore/pkg/cag/globalmemory"
	"github.com/trigoo007/cagcore/pkg/cag/memory"
	"github.com/trigoo007/cagcore/pkg/config"
	"github.com/trigoo007/cagcore/pkg/logx"
	"github.com/trigoo007/cagcore/pkg/metricsx"
)

// Scheduler wires the maintenance jobs onto a robfig/cron scheduler.
type Scheduler struct {
	cfg     config.SchedulerConfig
	cache   *cache.Cache
	memory  *memory.Store
	global  *globalmemory.GlobalMemory
	metrics *metricsx.Metrics

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// New builds a Scheduler. Any collaborator may be nil, in which case its
// job is not registered.
func New(cfg config.SchedulerConfig, analysisCache *cache.Cache, mem *memory.Store, global *globalmemory.GlobalMemory, metrics *metricsx.Metrics) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		cache:   analysisCache,
		memory:  mem,
		global:  global,
		metrics: metrics,
	}
}

// runIsolated runs fn, recovering a panic and logging any error so one
// job's failure never brings down the scheduler or the other jobs.
func runIsolated(ctx context.Context, name string, fn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("scheduler: job %q panicked: %v", name, r)
		}
	}()
	if err := fn(ctx); err != nil {
		logx.Errorf("scheduler: job %q failed: %v", name, err)
		return
	}
	logx.Infof("scheduler: job %q completed", name)
}

// Start registers all four jobs and starts the cron scheduler. It
// returns immediately; jobs run on cron's own goroutines until Stop is
// called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return schedulerErrors.New(ErrAlreadyRunning)
	}
	s.running = true
	s.mu.Unlock()

	s.cron = cron.New()

	if s.cache != nil {
		if _, err := s.cron.AddFunc(s.cfg.CacheCleanupCron, func() {
			runIsolated(ctx, "analysis_cache_cleanup", s.cache.Cleanup)
		}); err != nil {
			return err
		}
	}

	if s.memory != nil {
		if _, err := s.cron.AddFunc(s.cfg.MemoryCron, func() {
			runIsolated(ctx, "memory_maintenance", s.memory.PerformMaintenance)
		}); err != nil {
			return err
		}
	}

	if s.global != nil {
		if _, err := s.cron.AddFunc(s.cfg.GlobalMemoryCron, func() {
			runIsolated(ctx, "global_memory_maintenance", s.global.PerformMaintenance)
		}); err != nil {
			return err
		}
	}

	if s.metrics != nil {
		retention := s.cfg.MetricsRetention
		if _, err := s.cron.AddFunc(s.cfg.MetricsRetentionCron, func() {
			runIsolated(ctx, "metrics_retention_prune", func(ctx context.Context) error {
				_, err := s.metrics.PruneRetention(ctx, retention)
				return err
			})
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	logx.Info("scheduler: maintenance jobs started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop gracefully stops the cron scheduler, waiting up to 30 seconds for
// in-flight jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logx.Warn("scheduler: shutdown timed out waiting for in-flight jobs")
	}
	s.running = false
	logx.Info("scheduler: maintenance jobs stopped")
}
