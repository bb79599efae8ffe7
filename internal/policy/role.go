// Package policy implements the access decision matrix, PHI redaction
// transform, and break-glass helpers for the telehealth platform. Every
// exported function is a pure function of its arguments (plus, for
// break-glass evaluation, the supplied clock); the package performs no
// I/O and holds no mutable state, so it is safe to call concurrently
// without coordination.
package policy

// Role identifies a caller's platform role. The set is closed: the
// decision matrix in this package dispatches exhaustively over it and
// denies anything it does not recognize.
type Role string

const (
	RoleSuperAdmin    Role = "SUPER_ADMIN"
	RoleAdmin         Role = "ADMIN"
	RoleOrgAdmin      Role = "ORG_ADMIN"
	RoleMarketerAdmin Role = "MARKETER_ADMIN"
	RoleMarketer      Role = "MARKETER"
	RoleDoctor        Role = "DOCTOR"
	RolePharmacist    Role = "PHARMACIST"
	RoleLabTech       Role = "LAB_TECH"
	RoleSupport       Role = "SUPPORT"
	RoleAuditor       Role = "AUDITOR"
)

// roleLevels orders roles for relative-permission comparisons (e.g.
// "can user A administer user B"). SUPPORT and AUDITOR are intentionally
// tied at the lowest non-zero level. The decision matrix never consults
// this ordering.
var roleLevels = map[Role]int{
	RoleSuperAdmin:    9,
	RoleAdmin:         8,
	RoleOrgAdmin:      7,
	RoleMarketerAdmin: 6,
	RoleDoctor:        5,
	RolePharmacist:    4,
	RoleLabTech:       3,
	RoleMarketer:      2,
	RoleSupport:       1,
	RoleAuditor:       1,
}

// Level returns the role's position in the administration hierarchy.
// Unknown or empty roles map to 0, below every recognized role.
func (r Role) Level() int {
	return roleLevels[r]
}

// Known reports whether r is a member of the closed role set, including
// the ADMIN and ORG_ADMIN admin-tier aliases.
func (r Role) Known() bool {
	_, ok := roleLevels[r]
	return ok
}

// OrgType classifies the caller's organization. The decision matrix does
// not consult it; it travels with Claims for audit purposes.
type OrgType string

const (
	OrgProvider OrgType = "PROVIDER"
	OrgLab      OrgType = "LAB"
	OrgPharmacy OrgType = "PHARMACY"
	OrgMarketer OrgType = "MARKETER"
)
