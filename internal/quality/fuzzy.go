package quality

import (
	"regexp"
	"strings"
)

// editionSuffixes are trailing qualifiers that vary between storefronts for
// what is the same game.
var editionSuffixes = []string{
	" complete edition", " definitive edition", " goty",
	" enhanced edition", " director's cut", " remastered",
	" game of the year", " ultimate edition", " deluxe edition",
}

var nonWord = regexp.MustCompile(`[^\w\s]`)

// normalizeLoose lowercases a title, strips edition suffixes and
// punctuation, and collapses whitespace. Used for loose popularity-index
// matching, where "The Witcher 3 GOTY" should hit "The Witcher 3".
func normalizeLoose(title string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	for _, suffix := range editionSuffixes {
		normalized = strings.ReplaceAll(normalized, suffix, "")
	}
	normalized = nonWord.ReplaceAllString(normalized, " ")
	return strings.Join(strings.Fields(normalized), " ")
}

// TitlesMatchFuzzy reports whether two titles likely name the same game,
// tolerating edition suffixes and punctuation differences. Substring
// containment only applies to reasonably long titles to limit false
// positives.
func TitlesMatchFuzzy(title1, title2 string) bool {
	if title1 == title2 {
		return true
	}

	norm1 := normalizeLoose(title1)
	norm2 := normalizeLoose(title2)
	if norm1 == norm2 {
		return true
	}

	if len(norm1) > 8 && len(norm2) > 8 {
		shorter, longer := norm1, norm2
		if len(shorter) > len(longer) {
			shorter, longer = longer, shorter
		}
		if strings.Contains(longer, shorter) {
			return true
		}
	}
	return false
}
