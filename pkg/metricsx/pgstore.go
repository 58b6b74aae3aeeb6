package metricsx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trigoo007/cagcore/pkg/errx"
)

var pgErrors = errx.NewRegistry("METRICS_PG")

var ErrQueryFailed = pgErrors.Register("QUERY_FAILED", errx.TypeExternal, http.StatusInternalServerError, "metrics postgres query failed")

// PostgresStore persists the append-only log and aggregates in Postgres,
// for a durable feedback/usage history across restarts.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the tables this store needs if they do not exist yet.
// It is not run automatically: neither NewPostgresStore nor the CLI calls
// it, so callers with their own migration tooling can skip it.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cag_metrics_events (
			id BIGSERIAL PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			operation_type TEXT NOT NULL,
			details JSONB,
			was_helpful BOOLEAN
		);
		CREATE TABLE IF NOT EXISTS cag_metrics_aggregates (
			entity_type TEXT PRIMARY KEY,
			total_uses INTEGER NOT NULL DEFAULT 0,
			helpful_uses INTEGER NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return pgErrors.NewWithCause(ErrQueryFailed, err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return errx.Wrap(err, "failed to marshal metrics details", errx.TypeInternal)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cag_metrics_events (ts, operation_type, details, was_helpful) VALUES ($1, $2, $3, $4)`,
		event.Timestamp, event.OperationType, details, event.WasHelpful,
	)
	if err != nil {
		return pgErrors.NewWithCause(ErrQueryFailed, err)
	}
	return nil
}

func (s *PostgresStore) Aggregate(ctx context.Context, entityType string) (Aggregate, error) {
	var agg Aggregate
	err := s.db.GetContext(ctx, &agg,
		`SELECT total_uses AS "totaluses", helpful_uses AS "helpfuluses" FROM cag_metrics_aggregates WHERE entity_type = $1`,
		entityType,
	)
	if err != nil {
		return Aggregate{}, nil // unknown entity type: zero aggregate, not an error
	}
	return agg, nil
}

func (s *PostgresStore) IncrementAggregate(ctx context.Context, entityType string, helpful bool) error {
	helpfulDelta := 0
	if helpful {
		helpfulDelta = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cag_metrics_aggregates (entity_type, total_uses, helpful_uses)
		VALUES ($1, 1, $2)
		ON CONFLICT (entity_type) DO UPDATE SET
			total_uses = cag_metrics_aggregates.total_uses + 1,
			helpful_uses = cag_metrics_aggregates.helpful_uses + $2
	`, entityType, helpfulDelta)
	if err != nil {
		return pgErrors.NewWithCause(ErrQueryFailed, err)
	}
	return nil
}

func (s *PostgresStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cag_metrics_events WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, pgErrors.NewWithCause(ErrQueryFailed, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
