package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// execer is the slice of pgxpool.Pool the recorder needs; tests supply
// a fake to verify the emitted statements without a database.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGRecorder persists events to postgres for deployments whose
// compliance posture requires queryable decision history. Each event
// becomes exactly one row.
type PGRecorder struct {
	db execer
}

// NewPGRecorder creates a Recorder backed by the given connection pool.
func NewPGRecorder(pool *pgxpool.Pool) *PGRecorder {
	return &PGRecorder{db: pool}
}

// RecordDecision implements Recorder.
func (r *PGRecorder) RecordDecision(ctx context.Context, ev DecisionEvent) error {
	const query = `
		INSERT INTO access_decision (
			id, recorded_at, org_id, org_type, role, resource, action,
			allowed, has_purpose, purpose_of_use, break_glass
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

	_, err := r.db.Exec(ctx, query,
		ev.ID, ev.At, ev.OrgID, string(ev.OrgType), string(ev.Role),
		string(ev.Resource), string(ev.Action),
		ev.Allowed, ev.HasPurpose, ev.Purpose, ev.BreakGlass,
	)
	if err != nil {
		return fmt.Errorf("insert access_decision: %w", err)
	}
	return nil
}

// RecordOverride implements Recorder.
func (r *PGRecorder) RecordOverride(ctx context.Context, ev OverrideEvent) error {
	const query = `
		INSERT INTO break_glass_override (
			id, recorded_at, org_id, role, reason, minutes, until_millis
		) VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := r.db.Exec(ctx, query,
		ev.ID, ev.At, ev.OrgID, string(ev.Role), ev.Reason, ev.Minutes, ev.Until,
	)
	if err != nil {
		return fmt.Errorf("insert break_glass_override: %w", err)
	}
	return nil
}
