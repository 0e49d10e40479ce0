package model

// Deal is one normalized discount listing for a game at a specific store.
// Deals are built fresh from each API response and never persisted.
type Deal struct {
	Title         string
	Price         string // formatted with currency prefix; "Free" or "Unknown" for edge cases
	OriginalPrice string
	Store         string
	URL           string
	Discount      string // formatted as "NN%", empty when unknown
}

// PriorityGame is one curated entry from the priority database.
type PriorityGame struct {
	Title    string `json:"title"`
	Priority int    `json:"priority"` // 1-10
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

// MatchResult pairs a priority database entry with how well a deal title
// matched it. Produced per matching call, never stored.
type MatchResult struct {
	Game  PriorityGame
	Score float64 // 0.0-1.0
}

// PopularityStats is the aggregated popularity signal for one title, merged
// from the upstream most-popular / most-waitlisted / most-collected lists.
type PopularityStats struct {
	Title           string
	Rank            int    // best (lowest) position across source lists, 0 = unranked
	Source          string // which list produced the rank
	WaitlistedCount int
	CollectedCount  int
	PopularityScore int
}

// IsPopular reports whether the title has any meaningful community traction.
func (s PopularityStats) IsPopular() bool {
	return s.WaitlistedCount >= 10 ||
		s.CollectedCount >= 50 ||
		s.PopularityScore >= 30
}

// QualityScore derives a 0-100 popularity quality score. Waitlist counts
// indicate future demand, collection counts proven ownership.
func (s PopularityStats) QualityScore() float64 {
	base := min(80.0, float64(s.PopularityScore)/10)
	waitlistBonus := min(10.0, float64(s.WaitlistedCount)/100)
	collectionBonus := min(10.0, float64(s.CollectedCount)/500)
	return min(100.0, base+waitlistBonus+collectionBonus)
}
