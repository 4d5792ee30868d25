package jira

import (
	"regexp"
	"strings"
	"time"
)

// TimeFormat is the Jira REST timestamp layout after fractional-second
// normalization, e.g. "2024-03-01T09:30:00.000+0100".
const TimeFormat = "2006-01-02T15:04:05.000-0700"

// fractionPattern matches the fractional-second run of a Jira timestamp.
var fractionPattern = regexp.MustCompile(`\.\d+`)

// ParseTimestamp converts a Jira timestamp string into a time.Time with its
// zone offset preserved. Jira instances are not consistent about sub-second
// precision, so the fractional part is normalized to exactly three digits
// (truncated or zero-padded) before parsing.
//
// An empty input is "no value" and returns the zero time with a nil error;
// absent timestamps (unassigned fields, issues without comments) are valid.
// Anything else that fails to parse returns a *MalformedTimestampError.
func ParseTimestamp(ts string) (time.Time, error) {
	if ts == "" {
		return time.Time{}, nil
	}

	normalized := normalizeFraction(ts)
	t, err := time.Parse(TimeFormat, normalized)
	if err != nil {
		return time.Time{}, &MalformedTimestampError{Value: ts}
	}
	return t, nil
}

// normalizeFraction rewrites the first fractional-second run to exactly
// three digits.
func normalizeFraction(ts string) string {
	loc := fractionPattern.FindStringIndex(ts)
	if loc == nil {
		return ts
	}

	digits := ts[loc[0]+1 : loc[1]]
	if len(digits) > 3 {
		digits = digits[:3]
	} else if len(digits) < 3 {
		digits += strings.Repeat("0", 3-len(digits))
	}
	return ts[:loc[0]] + "." + digits + ts[loc[1]:]
}

// EpochSeconds converts a parsed timestamp to floating-point seconds since
// the Unix epoch, millisecond precision.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000.0
}
