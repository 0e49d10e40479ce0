package priority

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`\w+`)

// MatchScore computes how well a deal title matches a database title.
// Both inputs are lowercased and trimmed before comparison.
//
// Score bands:
//
//	1.0       exact match
//	0.9       database title contained in the search title
//	0.85      search title contained in the database title
//	0.1-0.8   word-overlap bands
//	0.0       no overlap
//
// The containment scores are asymmetric: a short curated title fully inside
// a longer upstream title is a stronger signal than the reverse. Containment
// is also a known false-positive source for short titles ("Raft" inside an
// unrelated longer name); callers needing precision should require exact
// normalized equality instead of trusting these bands.
func MatchScore(searchTitle, dbTitle string) float64 {
	search := strings.ToLower(strings.TrimSpace(searchTitle))
	db := strings.ToLower(strings.TrimSpace(dbTitle))

	if search == db {
		return 1.0
	}
	if db != "" && strings.Contains(search, db) {
		return 0.9
	}
	if search != "" && strings.Contains(db, search) {
		return 0.85
	}

	searchWords := wordSet(search)
	dbWords := wordSet(db)
	if len(searchWords) == 0 || len(dbWords) == 0 {
		return 0.0
	}

	common := 0
	for w := range searchWords {
		if _, ok := dbWords[w]; ok {
			common++
		}
	}
	if common == 0 {
		return 0.0
	}

	smaller := min(len(searchWords), len(dbWords))
	ratio := float64(common) / float64(smaller)
	switch {
	case ratio >= 0.8:
		return 0.8
	case ratio >= 0.6:
		return 0.7
	case ratio >= 0.4:
		return 0.6
	case ratio >= 0.2:
		return 0.4
	default:
		return 0.1
	}
}

func wordSet(s string) map[string]struct{} {
	words := wordPattern.FindAllString(s, -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
