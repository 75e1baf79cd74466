package sanitizer

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reValidTZ    = regexp.MustCompile(`^[A-Za-z0-9_\-+/]+$`)
	reMultiSlash = regexp.MustCompile(`/+`)
)

// TrimAndNormalize trims s and collapses every run of whitespace to one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}
	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeTimeZone cleans an IANA zone name. It does not check that the
// zone exists; anything with characters no zone name uses becomes "".
func NormalizeTimeZone(tz string) string {
	p := Pipeline{
		strings.TrimSpace,
		func(s string) string { return reMultiSlash.ReplaceAllString(s, "/") },
		func(s string) string { return strings.Trim(s, "/") },
	}
	s := p.Apply(tz)
	if s == "" || !reValidTZ.MatchString(s) {
		return ""
	}
	return s
}

// SanitizeSlice applies strategy to every value, dropping empties and
// duplicates while keeping first-seen order.
func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// NormalizeDates de-duplicates YYYY-MM-DD strings and sorts them, which for
// that layout is chronological order.
func NormalizeDates(dates []string) []string {
	out := SanitizeSlice(dates, strings.TrimSpace)
	slices.Sort(out)
	return out
}
