package policy

import "time"

// BreakGlassUntil computes the expiry timestamp, in epoch milliseconds,
// for an emergency access session starting now and lasting the given
// number of minutes. The approval workflow that mints the session owns
// duration limits and auditing; this helper only does the arithmetic.
func BreakGlassUntil(minutes int) int64 {
	return BreakGlassUntilAt(minutes, time.Now())
}

// BreakGlassUntilAt is BreakGlassUntil with an explicit starting
// instant.
func BreakGlassUntilAt(minutes int, now time.Time) int64 {
	return now.UnixMilli() + int64(minutes)*60_000
}

// UIContext names a screen region that may prompt for purpose-of-use
// before attempting a clinical read.
type UIContext string

const (
	UIPatientDetails   UIContext = "patient_details"
	UIRxScript         UIContext = "rx_script"
	UILabResultDetails UIContext = "lab_result_details"
)

// RequiresPurposeOfUse reports whether a just-in-time purpose prompt
// should be shown before the given role opens the given UI context. It
// is advisory, for driving the prompt ahead of the read; CanAccess
// remains the sole authorization boundary.
func RequiresPurposeOfUse(role Role, ctx UIContext) bool {
	switch role {
	case RoleDoctor, RolePharmacist, RoleLabTech:
	default:
		return false
	}
	switch ctx {
	case UIPatientDetails, UIRxScript, UILabResultDetails:
		return true
	default:
		return false
	}
}
