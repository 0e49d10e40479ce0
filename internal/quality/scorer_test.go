package quality

import (
	"math"
	"testing"

	"github.com/guarzo/gamedealer/internal/model"
)

func TestScore_DiscountBands(t *testing.T) {
	// Title chosen to avoid every publisher, franchise, and shovelware
	// substring so only the discount component contributes.
	const title = "Kart Kings"

	cases := []struct {
		discount int
		want     float64
	}{
		{95, 40},
		{85, 35},
		{75, 30},
		{65, 25},
		{55, 20},
		{35, 15},
		{20, 6},
	}

	for _, tc := range cases {
		got := Score(title, tc.discount, nil)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Score(%q, %d, nil) = %v, want %v", title, tc.discount, got, tc.want)
		}
	}
}

func TestScore_PopularityComponent(t *testing.T) {
	popular := map[string]model.PopularityStats{
		"kart kings": {Title: "Kart Kings", Rank: 10},
	}
	if got := Score("Kart Kings", 95, popular); got != 70 {
		t.Errorf("exact popularity hit = %v, want 70", got)
	}

	// Edition suffix differs; the fuzzy path awards half credit.
	if got := Score("Kart Kings Deluxe Edition", 95, popular); got != 55 {
		t.Errorf("fuzzy popularity hit = %v, want 55", got)
	}

	// Rank zero means unranked and lands in the worst band.
	unranked := map[string]model.PopularityStats{
		"kart kings": {Title: "Kart Kings", WaitlistedCount: 3},
	}
	if got := Score("Kart Kings", 95, unranked); got != 50 {
		t.Errorf("unranked popularity hit = %v, want 50", got)
	}
}

func TestScore_BonusAndPenalty(t *testing.T) {
	// Known franchise earns the flat bonus once.
	if got := Score("Hades", 65, nil); got != 45 {
		t.Errorf("franchise bonus = %v, want 45", got)
	}

	// Shovelware substrings cost 10, and the score never goes negative.
	if got := Score("Mini Golf Pack", 10, nil); got != 0 {
		t.Errorf("penalized low-discount score = %v, want 0", got)
	}
}

func TestTitlesMatchFuzzy(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "hades", "hades", true},
		{"edition suffix stripped", "the witcher 3 game of the year", "the witcher 3", true},
		{"punctuation ignored", "nier: automata", "nier automata", true},
		{"containment on long titles", "divinity original sin 2 definitive edition", "divinity original sin 2", true},
		{"short titles never contained", "raft", "raft survival craft", false},
		{"unrelated", "celeste", "doom eternal", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TitlesMatchFuzzy(tc.a, tc.b); got != tc.want {
				t.Errorf("TitlesMatchFuzzy(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
