package deals

import (
	"regexp"
	"strings"
)

// specialMarks are trademark-like symbols storefronts decorate titles with.
// They never distinguish games, only listings.
var specialMarks = regexp.MustCompile(`[™®©℗℠]`)

// NormalizeTitle produces the deduplication key for a deal title: special
// marks stripped, whitespace collapsed, lowercased. Normalization is
// idempotent: applying it twice yields the same key.
func NormalizeTitle(title string) string {
	s := specialMarks.ReplaceAllString(title, "")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
