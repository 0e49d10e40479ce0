// Package stores maps human store names to ITAD shop IDs and back.
package stores

import (
	"strings"

	"github.com/samber/lo"
)

// shopIDs maps lowercase store names and aliases to ITAD shop IDs.
var shopIDs = map[string]int{
	// Major PC stores
	"steam":           61,
	"epic game store": 16,
	"epic":            16,
	"gog":             35,
	"gog.com":         35,

	// Other PC stores
	"humble bundle":    7,
	"humble store":     7,
	"humble":           7,
	"fanatical":        15,
	"green man gaming": 4,
	"gmg":              4,
	"gamesplanet":      17,
	"gamersgate":       8,
	"origin":           13,
	"uplay":            25,
	"ubisoft connect":  25,
	"ubisoft store":    25,
	"battle.net":       37,
	"blizzard":         37,
	"itch.io":          33,
	"itch":             33,

	// Console stores
	"microsoft store":   48,
	"xbox":              48,
	"playstation store": 49,
	"psn":               49,
	"nintendo eshop":    50,
	"nintendo":          50,
}

// aliases groups alternate spellings under each canonical name, used when
// matching a filter against a deal's display name.
var aliases = map[string][]string{
	"epic game store":   {"epic", "epic games"},
	"gog.com":           {"gog"},
	"humble store":      {"humble", "humble bundle"},
	"green man gaming":  {"gmg"},
	"ubisoft connect":   {"uplay", "ubisoft store"},
	"battle.net":        {"blizzard"},
	"microsoft store":   {"xbox"},
	"playstation store": {"psn"},
	"nintendo eshop":    {"nintendo"},
}

// displayNames converts upstream shop names to the names we show users.
var displayNames = map[string]string{
	"Epic Games Store": "Epic Game Store",
}

// defaultStores are used when the caller supplies no store filter.
var defaultStores = []string{"steam", "epic game store", "gog"}

// ShopID resolves a store name or alias to its ITAD shop ID. The lookup is
// case-insensitive and whitespace-trimmed; unknown names return ok=false.
func ShopID(name string) (int, bool) {
	id, ok := shopIDs[normalize(name)]
	return id, ok
}

// DefaultShopIDs returns the shop IDs used when no store filter is given:
// Steam, Epic, and GOG.
func DefaultShopIDs() []int {
	ids := make([]int, 0, len(defaultStores))
	for _, name := range defaultStores {
		if id, ok := ShopID(name); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// MatchesFilter reports whether a deal's display store name satisfies the
// user-supplied filter, accounting for canonical-name/alias relationships
// in both directions (filter "xbox" matches display name "Microsoft Store").
func MatchesFilter(storeName, filter string) bool {
	if filter == "" {
		return true
	}
	store := normalize(storeName)
	want := normalize(filter)
	if store == want {
		return true
	}

	for canonical, alts := range aliases {
		if store == canonical {
			return want == canonical || lo.Contains(alts, want)
		}
		if lo.Contains(alts, store) {
			return want == canonical || lo.Contains(alts, want)
		}
	}
	return false
}

// DisplayName converts an upstream shop name into its display form.
func DisplayName(apiName string) string {
	if apiName == "" {
		return "Unknown Store"
	}
	if display, ok := displayNames[apiName]; ok {
		return display
	}
	return apiName
}

// AvailableStores lists the canonical store names users can filter by.
func AvailableStores() []string {
	return []string{
		"Steam", "Epic Game Store", "GOG", "Humble Store",
		"Fanatical", "Green Man Gaming", "GamesPlanet",
		"Ubisoft Connect", "Origin", "Microsoft Store",
		"PlayStation Store", "Nintendo eShop", "Battle.net", "itch.io",
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
