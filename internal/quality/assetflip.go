package quality

import (
	"regexp"
	"strings"

	"github.com/guarzo/gamedealer/internal/model"
)

var trailingNumber = regexp.MustCompile(` \d+$`)

// IsLikelyAssetFlip flags a deal as probable shovelware. It is a
// precision-oriented heuristic used to deprioritize, not to exclude
// absolutely: false positives and negatives are expected.
//
// Checks short-circuit in order: price/discount signals, suspicious title
// patterns, keyword density, community traction, then title length.
func IsLikelyAssetFlip(title string, price float64, discountPct int, stats *model.PopularityStats) bool {
	titleLower := strings.ToLower(title)

	// Very cheap games with steep discounts are the classic flip profile.
	if price < 1.0 && discountPct > 80 {
		return true
	}
	if price < 0.5 {
		return true
	}

	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(titleLower) {
			return true
		}
	}

	words := strings.Fields(titleLower)
	keywordCount := 0
	for _, w := range words {
		if _, ok := assetFlipKeywords[w]; ok {
			keywordCount++
		}
	}
	if len(words) > 0 && float64(keywordCount)/float64(len(words)) > 0.6 {
		return true
	}

	// Negligible community traction across all three counts.
	if stats != nil &&
		stats.WaitlistedCount < 5 &&
		stats.CollectedCount < 10 &&
		stats.PopularityScore < 10 {
		return true
	}

	if len(title) < 5 || len(words) < 2 {
		return true
	}

	// "Game 2", "Sim 3": a bare number suffix on a very short title.
	if trailingNumber.MatchString(titleLower) && len(words) <= 3 {
		return true
	}

	return false
}
