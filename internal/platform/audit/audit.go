// Package audit makes access decisions and break-glass overrides
// observable. The policy engine itself stays pure; the PDP shell emits
// one event per decision through a Recorder, which is the audit
// collaborator boundary. How events are ultimately stored is the
// deployment's choice: structured logs by default, postgres when a
// DATABASE_URL is configured.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cerberus100/Telehealthcrm-sub000/internal/policy"
)

// DecisionEvent records one evaluation of the access matrix.
type DecisionEvent struct {
	ID         uuid.UUID       `json:"id"`
	At         time.Time       `json:"at"`
	OrgID      string          `json:"org_id"`
	OrgType    policy.OrgType  `json:"org_type,omitempty"`
	Role       policy.Role     `json:"role"`
	Resource   policy.Resource `json:"resource"`
	Action     policy.Action   `json:"action"`
	Allowed    bool            `json:"allowed"`
	HasPurpose bool            `json:"has_purpose"`
	Purpose    string          `json:"purpose,omitempty"`
	BreakGlass bool            `json:"break_glass"`
}

// OverrideEvent records the minting of a break-glass session.
type OverrideEvent struct {
	ID      uuid.UUID   `json:"id"`
	At      time.Time   `json:"at"`
	OrgID   string      `json:"org_id"`
	Role    policy.Role `json:"role"`
	Reason  string      `json:"reason"`
	Minutes int         `json:"minutes"`
	Until   int64       `json:"until"`
}

// Recorder receives decision and override events. Implementations must
// be safe for concurrent use. Recorder failures are observability
// failures, never authorization failures: callers log them and serve the
// decision regardless.
type Recorder interface {
	RecordDecision(ctx context.Context, ev DecisionEvent) error
	RecordOverride(ctx context.Context, ev OverrideEvent) error
}

// Fanout returns a Recorder that forwards each event to every recorder
// in turn, returning the first error after all have been attempted.
func Fanout(recorders ...Recorder) Recorder {
	return fanout(recorders)
}

type fanout []Recorder

func (f fanout) RecordDecision(ctx context.Context, ev DecisionEvent) error {
	var first error
	for _, r := range f {
		if err := r.RecordDecision(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) RecordOverride(ctx context.Context, ev OverrideEvent) error {
	var first error
	for _, r := range f {
		if err := r.RecordOverride(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewDecisionEvent stamps an event with an id and timestamp and derives
// the claims-dependent fields.
func NewDecisionEvent(claims policy.Claims, resource policy.Resource, action policy.Action, allowed bool, now time.Time) DecisionEvent {
	return DecisionEvent{
		ID:         uuid.New(),
		At:         now.UTC(),
		OrgID:      claims.OrgID,
		OrgType:    claims.OrgType,
		Role:       claims.Role,
		Resource:   resource,
		Action:     action,
		Allowed:    allowed,
		HasPurpose: claims.HasPurpose(),
		Purpose:    claims.PurposeOfUse,
		BreakGlass: claims.BreakGlassActive(now),
	}
}

// LogRecorder writes events as structured log lines. Break-glass
// activity logs at WARN so it stands out in aggregation.
type LogRecorder struct {
	logger zerolog.Logger
}

// NewLogRecorder creates a Recorder backed by the given logger.
func NewLogRecorder(logger zerolog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

// RecordDecision implements Recorder.
func (r *LogRecorder) RecordDecision(_ context.Context, ev DecisionEvent) error {
	evt := r.logger.Info()
	if ev.BreakGlass {
		evt = r.logger.Warn()
	}
	evt.
		Str("type", "access_decision").
		Str("event_id", ev.ID.String()).
		Str("org_id", ev.OrgID).
		Str("role", string(ev.Role)).
		Str("resource", string(ev.Resource)).
		Str("action", string(ev.Action)).
		Bool("allowed", ev.Allowed).
		Bool("has_purpose", ev.HasPurpose).
		Bool("break_glass", ev.BreakGlass).
		Time("at", ev.At).
		Msg("access_decision")
	return nil
}

// RecordOverride implements Recorder.
func (r *LogRecorder) RecordOverride(_ context.Context, ev OverrideEvent) error {
	r.logger.Warn().
		Str("type", "break_glass_override").
		Str("event_id", ev.ID.String()).
		Str("org_id", ev.OrgID).
		Str("role", string(ev.Role)).
		Str("reason", ev.Reason).
		Int("minutes", ev.Minutes).
		Int64("until", ev.Until).
		Time("at", ev.At).
		Msg("break_glass_override")
	return nil
}
