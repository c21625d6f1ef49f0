package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// CollapseWhitespace trims the string and squashes internal runs of
// whitespace into single spaces.
func CollapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// TitleCase upper-cases the first letter of every space-separated word and
// lower-cases the rest. Region and vehicle names arrive in arbitrary case.
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}

var parentheticalRegex = regexp.MustCompile(`\([^)]*\)`)

// StripParenthetical removes parenthesized segments, e.g. the numeric codes
// the portal appends to state names like "Karnataka(29)".
func StripParenthetical(s string) string {
	return strings.TrimSpace(parentheticalRegex.ReplaceAllString(s, ""))
}

var yearRegex = regexp.MustCompile(`(\d{4})`)

// ExtractYear pulls the first 4-digit year out of a free-form label like
// "2023 (Jan-Dec)". Returns 0 when no year is present.
func ExtractYear(s string) int {
	m := yearRegex.FindString(s)
	if m == "" {
		return 0
	}
	year := 0
	for _, c := range m {
		year = year*10 + int(c-'0')
	}
	return year
}
