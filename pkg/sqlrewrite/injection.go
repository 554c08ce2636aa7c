package sqlrewrite

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheck describes a resolved entity value that libinjection flagged
// as a SQL injection pattern.
type InjectionCheck struct {
	Field       string
	Value       string
	Fingerprint string
}

// CheckResolvedValue screens a value about to be spliced into SQL as a
// quoted literal. Returns nil when the value is clean.
func CheckResolvedValue(field string, value string) *InjectionCheck {
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &InjectionCheck{
		Field:       field,
		Value:       value,
		Fingerprint: string(fingerprint),
	}
}
