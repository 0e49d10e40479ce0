package quality

import (
	"strings"

	"github.com/guarzo/gamedealer/internal/model"
)

// Score computes a ranking-only quality score for a deal. It is additive:
// a discount component (0-40), a popularity component (0-30, halved for
// fuzzy matches), a flat publisher/franchise bonus (+20), and a flat
// shovelware penalty (-10), floored at zero. The number has no absolute
// meaning; it exists to order candidates.
func Score(title string, discountPct int, popular map[string]model.PopularityStats) float64 {
	score := 0.0
	titleLower := strings.ToLower(title)

	// Discount component, banded to favor steep cuts.
	switch {
	case discountPct >= 90:
		score += 40
	case discountPct >= 80:
		score += 35
	case discountPct >= 70:
		score += 30
	case discountPct >= 60:
		score += 25
	case discountPct >= 50:
		score += 20
	case discountPct >= 30:
		score += 15
	default:
		score += float64(discountPct) * 0.3
	}

	// Popularity component, banded by rank position. Fuzzy hits get half
	// credit since the match itself is uncertain.
	if stats, ok := popular[titleLower]; ok {
		switch rank := rankOrWorst(stats.Rank); {
		case rank <= 50:
			score += 30
		case rank <= 100:
			score += 25
		case rank <= 200:
			score += 20
		case rank <= 500:
			score += 15
		default:
			score += 10
		}
	} else {
		for popTitle, stats := range popular {
			if TitlesMatchFuzzy(titleLower, popTitle) {
				switch rank := rankOrWorst(stats.Rank); {
				case rank <= 100:
					score += 15
				case rank <= 300:
					score += 10
				default:
					score += 5
				}
				break
			}
		}
	}

	for _, indicator := range qualityIndicators {
		if strings.Contains(titleLower, indicator) {
			score += 20
			break
		}
	}

	for _, indicator := range shovelwareIndicators {
		if strings.Contains(titleLower, indicator) {
			score -= 10
			break
		}
	}

	return max(0, score)
}

// rankOrWorst maps the zero value (unranked) onto the worst band.
func rankOrWorst(rank int) int {
	if rank <= 0 {
		return 999
	}
	return rank
}
