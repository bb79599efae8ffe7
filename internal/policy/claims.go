package policy

import (
	"strings"
	"time"
)

// Claims carries the caller attributes the engine evaluates. Values are
// assembled upstream from a verified identity token; this package never
// parses or verifies tokens. Claims are ephemeral per-request values and
// must not be persisted.
type Claims struct {
	// OrgID identifies the caller's organization. Required.
	OrgID string `json:"org_id"`
	// OrgType classifies the organization. Informational only.
	OrgType OrgType `json:"org_type,omitempty"`
	// Role is the caller's platform role. An empty or unrecognized role
	// always denies.
	Role Role `json:"role"`
	// PurposeOfUse is a caller-supplied justification for accessing
	// clinical data. The engine gates on presence only and never
	// interprets the content.
	PurposeOfUse string `json:"purpose_of_use,omitempty"`
	// Scopes is reserved for fine-grained checks; the current matrix
	// does not evaluate it.
	Scopes []string `json:"scopes,omitempty"`
	// BreakGlassUntil is an epoch-millisecond expiry for an emergency
	// access session. Zero means no session.
	BreakGlassUntil int64 `json:"break_glass_until,omitempty"`
}

// HasPurpose reports whether a non-empty purpose-of-use accompanies the
// claims. Whitespace-only strings do not count.
func (c Claims) HasPurpose() bool {
	return strings.TrimSpace(c.PurposeOfUse) != ""
}

// BreakGlassActive reports whether the claims carry an unexpired
// break-glass session at the given instant. Callers must evaluate this
// at the moment of the access check; a cached result can outlive the
// session it was computed from.
func (c Claims) BreakGlassActive(now time.Time) bool {
	return c.BreakGlassUntil > now.UnixMilli()
}
