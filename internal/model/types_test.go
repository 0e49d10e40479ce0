package model

import "testing"

func TestPopularityStats_IsPopular(t *testing.T) {
	cases := []struct {
		name  string
		stats PopularityStats
		want  bool
	}{
		{"no traction", PopularityStats{}, false},
		{"just below every floor", PopularityStats{WaitlistedCount: 9, CollectedCount: 49, PopularityScore: 29}, false},
		{"waitlist floor", PopularityStats{WaitlistedCount: 10}, true},
		{"collection floor", PopularityStats{CollectedCount: 50}, true},
		{"score floor", PopularityStats{PopularityScore: 30}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.stats.IsPopular(); got != tc.want {
				t.Errorf("IsPopular() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPopularityStats_QualityScore(t *testing.T) {
	cases := []struct {
		name  string
		stats PopularityStats
		want  float64
	}{
		{"zero", PopularityStats{}, 0},
		{"base only", PopularityStats{PopularityScore: 400}, 40},
		{"base capped at 80", PopularityStats{PopularityScore: 5000}, 80},
		{"bonuses capped", PopularityStats{PopularityScore: 5000, WaitlistedCount: 10000, CollectedCount: 100000}, 100},
		{"mixed", PopularityStats{PopularityScore: 100, WaitlistedCount: 500, CollectedCount: 1000}, 17},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.stats.QualityScore(); got != tc.want {
				t.Errorf("QualityScore() = %v, want %v", got, tc.want)
			}
		})
	}
}
