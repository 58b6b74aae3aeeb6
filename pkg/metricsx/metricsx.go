// Package metricsx implements Metrics: an append-only usage/feedback log
// plus an aggregated {entityType -> {totalUses, helpfulUses}} view, per
// spec §4.9. A Store interface backs it with either an in-memory or a
// Postgres implementation; prometheus counters provide additive
// operational visibility on top of the same events.
package metricsx

import (
	"context"
	"time"
)

// Event is one append-only log record.
type Event struct {
	Timestamp     time.Time              `json:"timestamp"`
	OperationType string                 `json:"operationType"`
	Details       map[string]interface{} `json:"details,omitempty"`
	WasHelpful    *bool                  `json:"wasHelpful,omitempty"`
}

// Aggregate is the rolled-up usage count for one entity type.
type Aggregate struct {
	TotalUses   int `json:"totalUses"`
	HelpfulUses int `json:"helpfulUses"`
}

// Store is the persistence backend behind Metrics.
type Store interface {
	Append(ctx context.Context, event Event) error
	Aggregate(ctx context.Context, entityType string) (Aggregate, error)
	IncrementAggregate(ctx context.Context, entityType string, helpful bool) error
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// Metrics is the public component described in spec §4.9.
type Metrics struct {
	store      Store
	prometheus *prometheusRecorder
}

func New(store Store, namespace string) *Metrics {
	return &Metrics{store: store, prometheus: newPrometheusRecorder(namespace)}
}

// Record appends a usage event and folds it into the per-entity-type
// aggregate when entityType is non-empty.
func (m *Metrics) Record(ctx context.Context, operationType, entityType string, wasHelpful *bool, details map[string]interface{}) error {
	if err := m.store.Append(ctx, Event{
		Timestamp:     time.Now(),
		OperationType: operationType,
		Details:       details,
		WasHelpful:    wasHelpful,
	}); err != nil {
		return err
	}

	if entityType == "" {
		return nil
	}
	helpful := wasHelpful != nil && *wasHelpful
	if err := m.store.IncrementAggregate(ctx, entityType, helpful); err != nil {
		return err
	}
	m.prometheus.observe(entityType, helpful)
	return nil
}

func (m *Metrics) GetAggregate(ctx context.Context, entityType string) (Aggregate, error) {
	return m.store.Aggregate(ctx, entityType)
}

// PruneRetention removes log entries older than retention, called by the
// MaintenanceScheduler's 30-day retention job.
func (m *Metrics) PruneRetention(ctx context.Context, retention time.Duration) (int, error) {
	return m.store.PruneOlderThan(ctx, time.Now().Add(-retention))
}
