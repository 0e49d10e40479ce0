// Package quality holds the heuristic signals used to separate real games
// from shovelware: shared keyword tables, the asset-flip detector, and the
// deal quality scorer. The tables live here, in one place, because the
// detector and the scorer consume the same signal sets.
package quality

import "regexp"

// assetFlipKeywords are title tokens common in low-effort, mass-produced
// releases. A high ratio of these to total tokens flags a title.
var assetFlipKeywords = map[string]struct{}{
	// Generic/low-effort genre words
	"simulator": {}, "tycoon": {}, "adventure": {}, "puzzle": {}, "arcade": {},
	"casual": {}, "indie": {}, "pixel": {}, "retro": {}, "classic": {},
	"simple": {}, "easy": {}, "quick": {},

	// Common asset-flip themes
	"zombie": {}, "survival": {}, "battle": {}, "royal": {}, "craft": {},
	"mine": {}, "build": {}, "farm": {}, "city": {}, "tower": {},
	"defense": {}, "endless": {}, "runner": {}, "jump": {}, "dash": {},
	"rush": {}, "speed": {}, "fast": {}, "super": {}, "mega": {},
	"ultra": {}, "hyper": {},

	// Low-effort descriptors
	"fun": {}, "cool": {}, "awesome": {}, "amazing": {}, "best": {},
	"ultimate": {}, "extreme": {}, "pro": {}, "premium": {}, "deluxe": {},
	"special": {}, "edition": {}, "collection": {},

	// Suspicious qualifiers
	"2d": {}, "3d": {}, "hd": {}, "vr": {}, "ar": {}, "mobile": {},
	"android": {}, "ios": {}, "free": {}, "cheap": {}, "budget": {},
	"low": {}, "poly": {}, "minimal": {}, "basic": {},
}

// suspiciousPatterns are red-flag title shapes.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\w+ \d+$`),        // "Game 2"
	regexp.MustCompile(`^\w+ simulator$`),  // "X Simulator"
	regexp.MustCompile(`^\w+ tycoon$`),     // "X Tycoon"
	regexp.MustCompile(`^\w+ adventure$`),  // "X Adventure"
	regexp.MustCompile(`zombie \w+`),
	regexp.MustCompile(`\w+ zombie`),
	regexp.MustCompile(`battle royale`),
	regexp.MustCompile(`survival \w+`),
	regexp.MustCompile(`\w+ survival`),
}

// qualityIndicators are publisher and franchise substrings that earn a flat
// scoring bonus: known-good publishers, long-running franchises, and
// well-reviewed indies.
var qualityIndicators = []string{
	// Publishers/studios
	"valve", "nintendo", "sony", "microsoft", "blizzard", "rockstar",
	"bethesda", "ubisoft", "ea", "activision", "square enix", "capcom",
	"fromsoftware", "cd projekt", "larian", "obsidian", "insomniac",
	// Franchises
	"call of duty", "assassin", "final fantasy", "grand theft", "elder scrolls",
	"fallout", "bioshock", "borderlands", "civilization", "total war",
	"resident evil", "street fighter", "mortal kombat", "tekken",
	"dark souls", "sekiro", "bloodborne", "witcher", "cyberpunk",
	// Indies
	"stardew", "terraria", "hollow knight", "celeste", "hades",
	"cuphead", "ori and", "steamworld", "shovel knight", "undertale",
}

// shovelwareIndicators are substrings that earn a flat scoring penalty.
var shovelwareIndicators = []string{
	"hentai", "anime girl", "waifu", "strip", "adult only",
	"quick ", "simple ", "easy ", "basic ", "mini ",
	"volume", "pack", "bundle", "collection",
	"livingforest", "gamemaker", "unity asset",
	"simulator 20", "tycoon 20", "manager 20",
	"vr chat", "vrchat", "metaverse",
}
