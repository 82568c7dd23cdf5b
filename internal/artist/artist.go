// Package artist parses freeform artist credit strings into ordered lists
// of individual artist names and serializes them back to the canonical
// on-disk representations.
package artist

import (
	"regexp"
	"strings"
)

// Delimiter joins multiple artists in formats that store a single string.
const Delimiter = ";"

// splitRules rewrites recognized join tokens to a neutral comma before
// splitting. The rules are applied in this exact order: the featuring
// variants must run before the bare "and" rule so a credit like
// "A featuring B and C" is never split mid-token. Changing the order
// changes parse results, so treat this table as versioned.
var splitRules = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\s+feat\.?\s+`), ", "},
	{regexp.MustCompile(`(?i)\s+ft\.?\s+`), ", "},
	{regexp.MustCompile(`(?i)\s+featuring\s+`), ", "},
	{regexp.MustCompile(`\s+&\s+`), ", "},
	{regexp.MustCompile(`(?i)\s+and\s+`), ", "},
}

// Parse splits a freeform artist credit into individual artist names.
// Credit order is preserved and duplicates are kept; only separator
// artifacts are dropped. An empty or blank credit yields an empty list,
// a credit with no recognized separators yields the trimmed credit as a
// single element.
func Parse(credit string) []string {
	if strings.TrimSpace(credit) == "" {
		return nil
	}

	result := credit
	for _, rule := range splitRules {
		result = rule.pattern.ReplaceAllString(result, rule.replacement)
	}

	parts := strings.Split(result, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Join serializes a name list using the delimited-string convention.
// Zero names yield an empty string, a single name is returned unchanged.
func Join(names []string) string {
	return strings.Join(names, Delimiter)
}
