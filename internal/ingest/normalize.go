package ingest

import (
	"regexp"
	"strings"
	"time"
)

var (
	nonDigit     = regexp.MustCompile(`\D`)
	emailPattern = regexp.MustCompile(`^[\w.\-+]+@[\w.\-]+\.\w{2,}$`)
)

// NormalizePhone reduces a North American number to E.164 ("+15551234567").
// Numbers with fewer than 10 digits are rejected.
func NormalizePhone(raw string) (string, bool) {
	digits := nonDigit.ReplaceAllString(raw, "")
	switch {
	case len(digits) == 10:
		return "+1" + digits, true
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, true
	case len(digits) > 10:
		return "+1" + digits[len(digits)-10:], true
	default:
		return "", false
	}
}

// NormalizeEmail lower-cases and trims an address and checks its shape
func NormalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailPattern.MatchString(email) {
		return "", false
	}
	return email, true
}

// NormalizeRegistration strips an MC or DOT number down to its digits
func NormalizeRegistration(raw string) string {
	return nonDigit.ReplaceAllString(raw, "")
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02-Jan-2006",
	"20060102",
	"01-02-2006",
	time.RFC3339,
}

// ParseDate accepts the date layouts found in carrier registration exports
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// equipmentHints maps cargo keywords to the trailer type that hauls them
var equipmentHints = []struct {
	equipment string
	keywords  []string
}{
	{"reefer", []string{"refrigerated", "reefer", "frozen", "fresh", "produce", "meat"}},
	{"flatbed", []string{"flatbed", "flat bed", "machinery", "steel", "lumber", "building"}},
	{"tanker", []string{"tanker", "tank", "liquid", "petroleum", "fuel", "chemical"}},
	{"car_hauler", []string{"auto", "car hauler", "vehicle"}},
}

// InferEquipment guesses trailer types from a free-text cargo description.
// General freight, or nothing recognizable, implies a dry van.
func InferEquipment(cargo string) []string {
	text := strings.ToLower(cargo)

	var out []string
	for _, h := range equipmentHints {
		for _, kw := range h.keywords {
			if strings.Contains(text, kw) {
				out = append(out, h.equipment)
				break
			}
		}
	}
	if len(out) == 0 || strings.Contains(text, "general") || strings.Contains(text, "freight") {
		out = append(out, "dry_van")
	}
	return out
}
