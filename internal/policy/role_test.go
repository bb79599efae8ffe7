package policy

import "testing"

func TestRoleLevelOrdering(t *testing.T) {
	ordered := []Role{
		RoleSuperAdmin, RoleAdmin, RoleOrgAdmin, RoleMarketerAdmin,
		RoleDoctor, RolePharmacist, RoleLabTech, RoleMarketer,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Level() <= ordered[i].Level() {
			t.Errorf("%s (%d) should outrank %s (%d)",
				ordered[i-1], ordered[i-1].Level(), ordered[i], ordered[i].Level())
		}
	}

	if RoleSupport.Level() != RoleAuditor.Level() {
		t.Errorf("SUPPORT (%d) and AUDITOR (%d) should be tied", RoleSupport.Level(), RoleAuditor.Level())
	}
	if RoleMarketer.Level() <= RoleSupport.Level() {
		t.Error("MARKETER should outrank SUPPORT")
	}
	if RoleSupport.Level() <= 0 {
		t.Error("SUPPORT should sit above the unknown level")
	}
}

func TestRoleLevelUnknown(t *testing.T) {
	for _, r := range []Role{"", "INTERN", "doctor"} {
		if r.Level() != 0 {
			t.Errorf("Level(%q) = %d, want 0", r, r.Level())
		}
		if r.Known() {
			t.Errorf("Known(%q) = true, want false", r)
		}
	}
}

func TestRoleLevelStable(t *testing.T) {
	for _, r := range []Role{RoleSuperAdmin, RoleDoctor, RoleAuditor} {
		first := r.Level()
		for i := 0; i < 10; i++ {
			if r.Level() != first {
				t.Fatalf("Level(%q) changed between calls", r)
			}
		}
	}
}
