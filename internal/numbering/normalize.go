// Package numbering derives the human-readable complaint numbers: it
// normalizes free-text scope fields into short tokens, computes the day and
// month keys, and formats/parses the final identifier.
package numbering

import "strings"

// TokenMaxLength bounds normalized tokens so complaint numbers stay short
// and display-safe.
const TokenMaxLength = 12

// NormalizeToken turns free text (location, department) into a short
// uppercase alphanumeric token for use inside a complaint number: trim,
// uppercase, drop everything outside [A-Z0-9], truncate to maxLen. When the
// result is empty the fallback token is returned instead.
//
// NormalizeToken is idempotent: applying it to its own output is a no-op.
func NormalizeToken(freeText, fallback string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = TokenMaxLength
	}

	s := strings.ToUpper(strings.TrimSpace(freeText))

	var b strings.Builder
	b.Grow(maxLen)
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == maxLen {
				break
			}
		}
	}

	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}
