package quality

import (
	"testing"

	"github.com/guarzo/gamedealer/internal/model"
)

func TestIsLikelyAssetFlip(t *testing.T) {
	popular := &model.PopularityStats{
		Title:           "The Witcher 3: Wild Hunt",
		Rank:            12,
		WaitlistedCount: 5000,
		CollectedCount:  20000,
		PopularityScore: 8000,
	}
	obscure := &model.PopularityStats{
		WaitlistedCount: 1,
		CollectedCount:  2,
		PopularityScore: 3,
	}

	cases := []struct {
		name     string
		title    string
		price    float64
		discount int
		stats    *model.PopularityStats
		want     bool
	}{
		{"cheap and steep discount", "Zombie Tycoon Simulator 2", 0.49, 95, nil, true},
		{"nearly free", "Forgotten Kingdoms", 0.25, 50, nil, true},
		{"suspicious simulator pattern", "Goat Simulator", 9.99, 50, popular, true},
		{"bare number sequel pattern", "Game 2", 4.99, 50, nil, true},
		{"zombie theme", "Zombie Outbreak", 4.99, 50, nil, true},
		{"keyword stuffed", "Super Mega Zombie Craft", 4.99, 50, nil, true},
		{"no community traction", "Obscure Farming Chronicle", 4.99, 50, obscure, true},
		{"too short", "Go", 4.99, 50, nil, true},
		{"single word", "Minecraft", 4.99, 50, nil, true},
		{"trailing number on short title", "Big Kart 3", 4.99, 50, nil, true},
		{"real game with traction", "The Witcher 3: Wild Hunt", 9.99, 75, popular, false},
		{"real game without stats", "The Witcher 3: Wild Hunt", 9.99, 75, nil, false},
		{"long title with trailing number", "Heroes of Might and Magic 3", 4.99, 50, nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsLikelyAssetFlip(tc.title, tc.price, tc.discount, tc.stats)
			if got != tc.want {
				t.Errorf("IsLikelyAssetFlip(%q, %v, %d) = %v, want %v",
					tc.title, tc.price, tc.discount, got, tc.want)
			}
		})
	}
}
