package vhc

import (
	"fmt"
	"strings"
	"unicode"
)

// DisplayID synthesizes the fallback identifier for a checksheet item that
// carries no explicit vhc_id: section and heading sanitized independently,
// joined with the item's index inside its section.
func DisplayID(section, heading string, index int) string {
	return fmt.Sprintf("%s-%s-%d", sanitizeIDPart(section), sanitizeIDPart(heading), index)
}

// ResolveCanonicalID returns the single id used for all downstream lookups
// (override row, authorized set, parts lines) for one checksheet item.
// An explicit vhc_id is canonical; otherwise the alias map translates the
// display id; otherwise the display id itself is the id (a payload-only
// finding that no override row will match, which is valid).
func ResolveCanonicalID(vhcID, section, heading string, index int, aliases map[string]string) string {
	if vhcID != "" {
		return vhcID
	}
	displayID := DisplayID(section, heading, index)
	if canonical, ok := aliases[displayID]; ok && canonical != "" {
		return canonical
	}
	return displayID
}

func sanitizeIDPart(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
