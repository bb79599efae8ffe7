package policy

import "time"

// Resource tags the object type an access check is about. Resources are
// opaque to the engine; only the tag participates in the decision.
type Resource string

const (
	ResourcePatient     Resource = "Patient"
	ResourceConsult     Resource = "Consult"
	ResourceRx          Resource = "Rx"
	ResourceLabOrder    Resource = "LabOrder"
	ResourceLabResult   Resource = "LabResult"
	ResourceShipment    Resource = "Shipment"
	ResourceRequisition Resource = "Requisition"
	ResourceClient      Resource = "Client"
	ResourceUser        Resource = "User"
	ResourceWebhook     Resource = "Webhook"
	ResourceAuditLog    Resource = "AuditLog"
)

var resources = map[Resource]bool{
	ResourcePatient: true, ResourceConsult: true, ResourceRx: true,
	ResourceLabOrder: true, ResourceLabResult: true, ResourceShipment: true,
	ResourceRequisition: true, ResourceClient: true, ResourceUser: true,
	ResourceWebhook: true, ResourceAuditLog: true,
}

// ParseResource validates a resource tag arriving over the wire.
func ParseResource(s string) (Resource, bool) {
	r := Resource(s)
	return r, resources[r]
}

// Action is the operation being attempted. List is gated identically to
// read: a role that may enumerate a resource may not thereby write it.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
	ActionList  Action = "list"
)

// ParseAction validates an action arriving over the wire.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionRead, ActionWrite, ActionList:
		return a, true
	default:
		return "", false
	}
}

// isWrite collapses the read/list distinction the matrix does not make.
func (a Action) isWrite() bool {
	return a == ActionWrite
}

// rule is the predicate a (role, resource) cell resolves to. Expressing
// the matrix as data keeps the full grid reviewable in one place instead
// of spread across per-role branch logic.
type rule int

const (
	denyAlways rule = iota
	allowAlways
	// readOnly permits read and list, denies write.
	readOnly
	// purposeOrBreakGlass permits any action when the caller presents a
	// purpose-of-use or holds an active break-glass session.
	purposeOrBreakGlass
	// breakGlassOnly permits any action only during an active
	// break-glass session; purpose-of-use alone is not sufficient.
	breakGlassOnly
)

// roleRules holds a role's default rule plus per-resource overrides.
// Overrides win over the default, so hard denials such as
// PHARMACIST/LabResult cannot be reopened by the role's permissive
// default.
type roleRules struct {
	fallback  rule
	overrides map[Resource]rule
}

// clinicalSet is the PHI-bearing resource set that purpose-of-use and
// break-glass gating protects for administrative roles.
var clinicalSet = []Resource{
	ResourcePatient, ResourceConsult, ResourceRx, ResourceLabOrder, ResourceLabResult,
}

// doctorProtectedSet additionally covers Shipment: clinicians reach
// shipments only in the context of a patient's care.
var doctorProtectedSet = append([]Resource{ResourceShipment}, clinicalSet...)

func overrideAll(resources []Resource, r rule) map[Resource]rule {
	m := make(map[Resource]rule, len(resources))
	for _, res := range resources {
		m[res] = r
	}
	return m
}

// matrix is the full role-by-resource access grid. Empty cells fall back
// to the role's default rule; roles absent from the matrix deny
// everything.
var matrix = map[Role]roleRules{
	RoleMarketer: {
		fallback: denyAlways,
		overrides: map[Resource]rule{
			// Status-only visibility into fulfillment; the caller is
			// responsible for narrowing consults to status fields.
			ResourceConsult:  readOnly,
			ResourceShipment: readOnly,
		},
	},
	RolePharmacist: {
		fallback: readOnly,
		overrides: map[Resource]rule{
			ResourceRx:        allowAlways,
			ResourceShipment:  readOnly,
			ResourceLabResult: denyAlways,
		},
	},
	RoleLabTech: {
		fallback: readOnly,
		overrides: map[Resource]rule{
			ResourceLabOrder:  allowAlways,
			ResourceLabResult: allowAlways,
			ResourceShipment:  allowAlways,
			ResourceRx:        denyAlways,
		},
	},
	RoleDoctor: {
		fallback:  allowAlways,
		overrides: overrideAll(doctorProtectedSet, purposeOrBreakGlass),
	},
	RoleMarketerAdmin: {
		// Administrative role: never PHI-entitled by default, only a
		// concurrent clinical purpose elevates it.
		fallback:  allowAlways,
		overrides: overrideAll(clinicalSet, purposeOrBreakGlass),
	},
	RoleSuperAdmin: {
		// Superuser default is zero PHI access; only an active
		// break-glass session opens the clinical set.
		fallback:  allowAlways,
		overrides: overrideAll(clinicalSet, breakGlassOnly),
	},
	RoleSupport: {
		fallback: allowAlways,
		overrides: map[Resource]rule{
			ResourceRx:        denyAlways,
			ResourceLabResult: denyAlways,
			ResourcePatient:   denyAlways,
		},
	},
	RoleAuditor: {
		fallback: allowAlways,
		overrides: map[Resource]rule{
			ResourceRx:        denyAlways,
			ResourceLabResult: denyAlways,
			ResourcePatient:   denyAlways,
		},
	},
}

// CanAccess decides whether the caller described by claims may perform
// action on resource, evaluated against the current wall clock. It is
// total: every input yields a decision and malformed claims simply deny.
// Decisions must be recomputed per request; caching a grant across
// requests can outlive a break-glass session.
func CanAccess(resource Resource, action Action, claims Claims) bool {
	return CanAccessAt(resource, action, claims, time.Now())
}

// CanAccessAt is CanAccess with an explicit evaluation instant, for
// callers that manage their own clock.
func CanAccessAt(resource Resource, action Action, claims Claims, now time.Time) bool {
	rules, ok := matrix[claims.Role]
	if !ok {
		// Unrecognized role, including the ADMIN/ORG_ADMIN hierarchy
		// aliases, which carry no matrix entry of their own.
		return false
	}

	r := rules.fallback
	if override, ok := rules.overrides[resource]; ok {
		r = override
	}

	switch r {
	case allowAlways:
		return true
	case readOnly:
		return !action.isWrite()
	case purposeOrBreakGlass:
		return claims.HasPurpose() || claims.BreakGlassActive(now)
	case breakGlassOnly:
		return claims.BreakGlassActive(now)
	default:
		return false
	}
}
