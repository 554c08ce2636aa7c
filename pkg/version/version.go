// Package version formats API versions into the fixed-width form used to
// partition the query cache.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatError reports a version string that cannot be canonicalized.
type FormatError struct {
	Version string
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Version, e.Reason)
}

// Format converts "MAJOR.MINOR.PATCH" into "%03d.%03d.%03d" so that
// lexicographic ordering of the result matches numeric ordering for
// segments up to 999. Cache rows and embedding metadata are always keyed
// by this form, never by the raw version.
func Format(v string) (string, error) {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return "", &FormatError{Version: v, Reason: "expected three dot-separated parts"}
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return "", &FormatError{Version: v, Reason: fmt.Sprintf("part %d is not a non-negative integer", i+1)}
		}
		nums[i] = n
	}

	return fmt.Sprintf("%03d.%03d.%03d", nums[0], nums[1], nums[2]), nil
}
