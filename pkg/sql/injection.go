package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult contains the result of an injection check on a
// free-text field value.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	FieldName   string // Name of the field that failed the check
	FieldValue  string // The value that was checked
}

// CheckFieldForInjection uses libinjection to detect SQL injection
// patterns in a free-text field (for example the result description that
// accompanies a simulated query). The designer never executes SQL, but
// these fields are echoed into formatted output, so hostile fragments are
// flagged for a caution note rather than silently passed along.
//
// Returns nil if no injection pattern is detected.
func CheckFieldForInjection(fieldName, value string) *InjectionCheckResult {
	if value == "" {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}

	return &InjectionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
		FieldName:   fieldName,
		FieldValue:  value,
	}
}
