package directory

import "strings"

// FormatPhone canonicalizes a free-text phone number for display.
//
// All non-digit characters are stripped. A 10-digit number formats as
// AAA-BBB-CCCC; an 11-digit number as AAA-BBBB-CCCC (the 3-4-4 grouping used
// for Korean mobile numbers). Any other digit count returns the input
// unchanged, which makes the function idempotent: formatted output contains
// dashes, still has the same digit count, and reformats to itself.
func FormatPhone(raw string) string {
	if raw == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	d := digits.String()
	switch len(d) {
	case 10:
		return d[:3] + "-" + d[3:6] + "-" + d[6:]
	case 11:
		return d[:3] + "-" + d[3:7] + "-" + d[7:]
	default:
		return raw
	}
}
