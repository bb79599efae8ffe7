package policy

import (
	"fmt"
	"strings"
	"time"
)

// RecordContext tells the redaction transform which clinical workflow a
// record is being returned for, so role-specific payloads survive within
// that role's own workflow but not outside it.
type RecordContext string

const (
	ContextNone RecordContext = ""
	ContextRx   RecordContext = "rx"
	ContextLab  RecordContext = "lab"
)

// Fixed placeholders. Placeholders carry no information derived from the
// input value.
const (
	maskedSSN   = "***-**-****"
	maskedDOB   = "**/**/****"
	maskedPhone = "(***) ***-****"
	maskedEmail = "***@***.***"
)

// Clinical payload fields stripped per role. Records are open-ended bags,
// so the transform matches field names, never record shapes.
var (
	marketerStripped = []string{
		"script_blob_encrypted", "result_blob_encrypted",
		"diagnosis", "medications", "allergies", "medical_history",
	}
	pharmacistStripped = []string{"result_blob_encrypted", "lab_values"}
	labTechStripped    = []string{"script_blob_encrypted", "medications", "refills"}
)

// MaskPHI returns a deep copy of record with regulated fields redacted
// for the given role. The input is never mutated. A nil record comes
// back nil and absent fields are skipped: this transform sits on the
// data-return path after the access check, where failing would be worse
// than degrading, so it has no error conditions at all. It performs no
// authorization; callers must have passed CanAccess first.
func MaskPHI(record map[string]any, role Role, ctx RecordContext) map[string]any {
	if record == nil {
		return nil
	}

	out := deepCopyMap(record)

	if v, ok := stringField(out, "ssn"); ok {
		out["ssn"] = maskSSN(v)
	}
	if v, ok := out["dob"]; ok {
		out["dob"] = maskDOB(v, role)
	}
	if v, ok := stringField(out, "phone"); ok {
		out["phone"] = maskPhone(v, role)
	}
	if v, ok := stringField(out, "email"); ok {
		out["email"] = maskEmail(v, role)
	}
	if role == RoleMarketer {
		maskAddress(out)
	}

	switch role {
	case RoleMarketer:
		stripFields(out, marketerStripped)
	case RolePharmacist:
		if ctx != ContextRx {
			stripFields(out, pharmacistStripped)
		}
	case RoleLabTech:
		if ctx != ContextLab {
			stripFields(out, labTechStripped)
		}
	}

	return out
}

// maskSSN keeps the last four characters under a fixed mask. Re-masking
// already-masked output is a fixed point: the last four survive both
// passes.
func maskSSN(ssn string) string {
	if len(ssn) < 4 {
		return maskedSSN
	}
	return "***-**-" + ssn[len(ssn)-4:]
}

// maskDOB normalizes a date of birth to M/D/YYYY for clinical roles and
// replaces it entirely for marketers. Unparseable values pass through
// unchanged rather than failing the whole record.
func maskDOB(v any, role Role) any {
	if role == RoleMarketer {
		return maskedDOB
	}
	var t time.Time
	switch d := v.(type) {
	case time.Time:
		t = d
	case string:
		parsed, ok := parseDate(d)
		if !ok {
			return v
		}
		t = parsed
	default:
		return v
	}
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "01/02/2006", "1/2/2006"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// maskPhone preserves area code and the last four digits for clinical
// roles. Marketers get a placeholder unrelated to the input number.
func maskPhone(phone string, role Role) string {
	if role == RoleMarketer {
		return maskedPhone
	}
	digits := digitsOf(phone)
	if len(digits) < 10 {
		return maskedPhone
	}
	// Use the trailing 10 digits so a leading country code does not
	// shift the area code.
	digits = digits[len(digits)-10:]
	return fmt.Sprintf("(%s) ***-%s", digits[:3], digits[6:])
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// maskEmail keeps the first character of the local part and the full
// domain for clinical roles.
func maskEmail(email string, role Role) string {
	if role == RoleMarketer {
		return maskedEmail
	}
	at := strings.Index(email, "@")
	if at < 1 {
		return maskedEmail
	}
	local, domain := email[:at], email[at+1:]
	return local[:1] + strings.Repeat("*", len(local)-1) + "@" + domain
}

// maskAddress blanks the street lines of a marketer-visible address
// while preserving city/state/zip, which remain shipping-relevant. A
// bare-string address is blanked entirely since the street cannot be
// separated out.
func maskAddress(out map[string]any) {
	v, ok := out["address"]
	if !ok {
		return
	}
	switch addr := v.(type) {
	case map[string]any:
		for _, key := range []string{"street", "street2", "line1", "line2"} {
			if _, ok := addr[key]; ok {
				addr[key] = ""
			}
		}
	case string:
		out["address"] = ""
	}
}

func stripFields(out map[string]any, fields []string) {
	for _, f := range fields {
		delete(out, f)
	}
}

func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// deepCopyMap copies nested maps and slices so masking never writes
// through to the caller's record.
func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = deepCopyValue(e)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
