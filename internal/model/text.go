package model

import (
	"strings"
	"unicode"
)

// NormalizeText lower-cases s and collapses every run of characters that are
// neither letters nor digits into a single space.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// NormalizeCode upper-cases and trims a state or lane code
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeEquipment maps "Dry Van" and "dry-van" to "dry_van"
func NormalizeEquipment(s string) string {
	return strings.ReplaceAll(NormalizeText(s), " ", "_")
}
