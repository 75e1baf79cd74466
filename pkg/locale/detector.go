// Package locale infers regional defaults for professionals who do not
// state them.
package locale

import "strings"

// DefaultTimezone applies when nothing else identifies the zone; the
// marketplace operates in Israel.
const DefaultTimezone = "Asia/Jerusalem"

type Country struct {
	Code            string   // ISO 3166-1 alpha-2 country code (e.g., "IL", "US")
	Name            string   // Human-readable country name
	PhonePrefixes   []string // Valid phone number prefixes (e.g., ["+972", "972"])
	DefaultTimezone string   // IANA timezone identifier (e.g., "Asia/Jerusalem")
}

// Countries is checked in order, so longer prefixes come first.
var Countries = []Country{
	{
		Code:            "IL",
		Name:            "Israel",
		PhonePrefixes:   []string{"+972", "972"},
		DefaultTimezone: "Asia/Jerusalem",
	},
	{
		Code:            "US",
		Name:            "United States",
		PhonePrefixes:   []string{"+1", "1"},
		DefaultTimezone: "America/New_York",
	},
}

func InferCountryFromPhone(phone string) *Country {
	normalized := strings.TrimSpace(phone)
	if normalized == "" {
		return nil
	}

	for i := range Countries {
		for _, prefix := range Countries[i].PhonePrefixes {
			if strings.HasPrefix(normalized, prefix) {
				return &Countries[i]
			}
		}
	}
	return nil
}

func InferTimezoneFromPhone(phone string) string {
	if c := InferCountryFromPhone(phone); c != nil {
		return c.DefaultTimezone
	}
	return DefaultTimezone
}

// ResolveTimeZone prefers an explicit zone, then the phone's country.
func ResolveTimeZone(explicit, phone string) string {
	if tz := strings.TrimSpace(explicit); tz != "" {
		return tz
	}
	return InferTimezoneFromPhone(phone)
}
