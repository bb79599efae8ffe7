package policy

import (
	"sync"
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func claimsFor(role Role) Claims {
	return Claims{OrgID: "org-1", Role: role}
}

func withPurpose(c Claims) Claims {
	c.PurposeOfUse = "treatment of presenting complaint"
	return c
}

func withBreakGlass(c Claims, d time.Duration) Claims {
	c.BreakGlassUntil = testNow.Add(d).UnixMilli()
	return c
}

func TestCanAccessAt_UnknownRoleDeniesEverything(t *testing.T) {
	resources := []Resource{
		ResourcePatient, ResourceConsult, ResourceRx, ResourceLabOrder,
		ResourceLabResult, ResourceShipment, ResourceRequisition,
		ResourceClient, ResourceUser, ResourceWebhook, ResourceAuditLog,
	}
	roles := []Role{"", "INTERN", "admin", RoleAdmin, RoleOrgAdmin}
	actions := []Action{ActionRead, ActionWrite, ActionList}

	for _, role := range roles {
		for _, res := range resources {
			for _, act := range actions {
				if CanAccessAt(res, act, claimsFor(role), testNow) {
					t.Errorf("role %q: expected deny for %s %s", role, act, res)
				}
			}
		}
	}
}

func TestCanAccessAt_Marketer(t *testing.T) {
	c := claimsFor(RoleMarketer)

	tests := []struct {
		resource Resource
		action   Action
		want     bool
	}{
		{ResourceConsult, ActionRead, true},
		{ResourceConsult, ActionList, true},
		{ResourceConsult, ActionWrite, false},
		{ResourceShipment, ActionRead, true},
		{ResourceShipment, ActionWrite, false},
		{ResourcePatient, ActionRead, false},
		{ResourceRx, ActionRead, false},
		{ResourceLabResult, ActionList, false},
		{ResourceClient, ActionRead, false},
	}
	for _, tt := range tests {
		got := CanAccessAt(tt.resource, tt.action, c, testNow)
		if got != tt.want {
			t.Errorf("MARKETER %s %s = %v, want %v", tt.action, tt.resource, got, tt.want)
		}
	}
}

func TestCanAccessAt_Pharmacist(t *testing.T) {
	c := claimsFor(RolePharmacist)

	tests := []struct {
		resource Resource
		action   Action
		want     bool
	}{
		{ResourceRx, ActionRead, true},
		{ResourceRx, ActionWrite, true},
		{ResourceRx, ActionList, true},
		{ResourceShipment, ActionRead, true},
		{ResourceShipment, ActionWrite, false},
		{ResourcePatient, ActionRead, true},
		{ResourcePatient, ActionWrite, false},
		{ResourceConsult, ActionList, true},
	}
	for _, tt := range tests {
		got := CanAccessAt(tt.resource, tt.action, c, testNow)
		if got != tt.want {
			t.Errorf("PHARMACIST %s %s = %v, want %v", tt.action, tt.resource, got, tt.want)
		}
	}

	// LabResult stays closed no matter what the claims carry.
	for _, claims := range []Claims{c, withPurpose(c), withBreakGlass(c, time.Hour)} {
		for _, act := range []Action{ActionRead, ActionWrite, ActionList} {
			if CanAccessAt(ResourceLabResult, act, claims, testNow) {
				t.Errorf("PHARMACIST %s LabResult: expected deny", act)
			}
		}
	}
}

func TestCanAccessAt_LabTech(t *testing.T) {
	c := claimsFor(RoleLabTech)

	tests := []struct {
		resource Resource
		action   Action
		want     bool
	}{
		{ResourceLabOrder, ActionWrite, true},
		{ResourceLabResult, ActionWrite, true},
		{ResourceShipment, ActionWrite, true},
		{ResourcePatient, ActionRead, true},
		{ResourcePatient, ActionWrite, false},
	}
	for _, tt := range tests {
		got := CanAccessAt(tt.resource, tt.action, c, testNow)
		if got != tt.want {
			t.Errorf("LAB_TECH %s %s = %v, want %v", tt.action, tt.resource, got, tt.want)
		}
	}

	for _, claims := range []Claims{c, withPurpose(c), withBreakGlass(c, time.Hour)} {
		for _, act := range []Action{ActionRead, ActionWrite, ActionList} {
			if CanAccessAt(ResourceRx, act, claims, testNow) {
				t.Errorf("LAB_TECH %s Rx: expected deny", act)
			}
		}
	}
}

func TestCanAccessAt_DoctorPurposeGate(t *testing.T) {
	protected := []Resource{
		ResourcePatient, ResourceConsult, ResourceRx,
		ResourceLabOrder, ResourceLabResult, ResourceShipment,
	}
	base := claimsFor(RoleDoctor)

	for _, res := range protected {
		if CanAccessAt(res, ActionRead, base, testNow) {
			t.Errorf("DOCTOR read %s without purpose: expected deny", res)
		}
		if !CanAccessAt(res, ActionRead, withPurpose(base), testNow) {
			t.Errorf("DOCTOR read %s with purpose: expected allow", res)
		}
		if !CanAccessAt(res, ActionRead, withBreakGlass(base, time.Hour), testNow) {
			t.Errorf("DOCTOR read %s with break-glass: expected allow", res)
		}
	}

	// Expired break-glass is as good as none.
	expired := base
	expired.BreakGlassUntil = testNow.UnixMilli() - 1
	if CanAccessAt(ResourcePatient, ActionRead, expired, testNow) {
		t.Error("DOCTOR with expired break-glass: expected deny")
	}

	// Non-protected resources are open to doctors unconditionally.
	for _, res := range []Resource{ResourceClient, ResourceUser, ResourceRequisition} {
		if !CanAccessAt(res, ActionWrite, base, testNow) {
			t.Errorf("DOCTOR write %s: expected allow", res)
		}
	}
}

func TestCanAccessAt_MarketerAdminShipmentUngated(t *testing.T) {
	base := claimsFor(RoleMarketerAdmin)

	// The clinical set requires purpose or break-glass.
	if CanAccessAt(ResourcePatient, ActionRead, base, testNow) {
		t.Error("MARKETER_ADMIN read Patient without purpose: expected deny")
	}
	if !CanAccessAt(ResourcePatient, ActionRead, withPurpose(base), testNow) {
		t.Error("MARKETER_ADMIN read Patient with purpose: expected allow")
	}

	// Shipment is excluded from the gated set for this role.
	if !CanAccessAt(ResourceShipment, ActionRead, base, testNow) {
		t.Error("MARKETER_ADMIN read Shipment: expected allow")
	}
}

func TestCanAccessAt_SuperAdminBreakGlassOnly(t *testing.T) {
	base := claimsFor(RoleSuperAdmin)

	// Purpose-of-use alone never opens PHI for the superuser.
	if CanAccessAt(ResourceLabResult, ActionRead, withPurpose(base), testNow) {
		t.Error("SUPER_ADMIN with purpose only: expected deny")
	}
	if !CanAccessAt(ResourceLabResult, ActionRead, withBreakGlass(base, time.Minute), testNow) {
		t.Error("SUPER_ADMIN with active break-glass: expected allow")
	}

	// Expiry is strict: a timestamp equal to now has already lapsed.
	atNow := base
	atNow.BreakGlassUntil = testNow.UnixMilli()
	if CanAccessAt(ResourceLabResult, ActionRead, atNow, testNow) {
		t.Error("SUPER_ADMIN with break-glass expiring now: expected deny")
	}

	// Everything outside the clinical set is open.
	if !CanAccessAt(ResourceUser, ActionWrite, base, testNow) {
		t.Error("SUPER_ADMIN write User: expected allow")
	}
	if !CanAccessAt(ResourceAuditLog, ActionRead, base, testNow) {
		t.Error("SUPER_ADMIN read AuditLog: expected allow")
	}
}

func TestCanAccessAt_SupportAndAuditor(t *testing.T) {
	for _, role := range []Role{RoleSupport, RoleAuditor} {
		c := claimsFor(role)
		for _, res := range []Resource{ResourceRx, ResourceLabResult, ResourcePatient} {
			if CanAccessAt(res, ActionRead, withPurpose(c), testNow) {
				t.Errorf("%s read %s: expected deny", role, res)
			}
		}
		for _, res := range []Resource{ResourceConsult, ResourceShipment, ResourceAuditLog, ResourceUser} {
			if !CanAccessAt(res, ActionRead, c, testNow) {
				t.Errorf("%s read %s: expected allow", role, res)
			}
		}
	}
}

// TestCanAccessAt_Concurrent fans out evaluations with mixed active and
// expired break-glass claims; each result must depend only on its own
// input.
func TestCanAccessAt_Concurrent(t *testing.T) {
	const n = 200

	var wg sync.WaitGroup
	errs := make(chan string, n)

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := claimsFor(RoleSuperAdmin)
			active := i%2 == 0
			if active {
				c.BreakGlassUntil = testNow.Add(time.Minute).UnixMilli()
			} else {
				c.BreakGlassUntil = testNow.Add(-time.Minute).UnixMilli()
			}
			got := CanAccessAt(ResourcePatient, ActionRead, c, testNow)
			if got != active {
				errs <- "decision did not match its own claims"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}
