// Package priority holds the curated priority-game database and the fuzzy
// title matcher used to recognize deals for games worth surfacing.
package priority

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/guarzo/gamedealer/internal/model"
)

// DefaultMinScore is the match-score threshold below which a fuzzy match is
// not considered a match.
const DefaultMinScore = 0.6

// Database is the curated collection of priority games, loaded from a JSON
// file. The collection is read-only during matching and reloadable on demand.
type Database struct {
	path string
	log  *slog.Logger

	mu    sync.RWMutex
	games []model.PriorityGame
}

type dbFile struct {
	Games []model.PriorityGame `json:"games"`
}

// Open loads the database at path. A missing file is not fatal: the bot
// still works, it just cannot do priority filtering, so we warn and carry on
// with an empty collection.
func Open(path string, log *slog.Logger) (*Database, error) {
	db := &Database{path: path, log: log}
	if err := db.Reload(); err != nil {
		return nil, err
	}
	return db, nil
}

// Reload re-reads the database file, replacing the in-memory collection.
func (db *Database) Reload() error {
	games, err := loadGames(db.path)
	if err != nil {
		if os.IsNotExist(err) {
			db.log.Warn("priority database not found, priority filtering disabled", "path", db.path)
			db.mu.Lock()
			db.games = nil
			db.mu.Unlock()
			return nil
		}
		return fmt.Errorf("loading priority database: %w", err)
	}

	db.mu.Lock()
	db.games = games
	db.mu.Unlock()
	db.log.Info("priority database loaded", "path", db.path, "games", len(games))
	return nil
}

func loadGames(path string) ([]model.PriorityGame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f dbFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f.Games, nil
}

// HasGames reports whether the database holds any entries.
func (db *Database) HasGames() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.games) > 0
}

// Games returns a copy of the current collection.
func (db *Database) Games() []model.PriorityGame {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]model.PriorityGame, len(db.games))
	copy(out, db.games)
	return out
}

// FindMatches returns database entries matching the title, sorted by
// priority descending then match score descending. Entries scoring zero are
// omitted.
func (db *Database) FindMatches(title string) []model.MatchResult {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var matches []model.MatchResult
	for _, game := range db.games {
		score := MatchScore(title, game.Title)
		if score > 0 {
			matches = append(matches, model.MatchResult{Game: game, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Game.Priority != matches[j].Game.Priority {
			return matches[i].Game.Priority > matches[j].Game.Priority
		}
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// IsPriorityGame reports whether the title matches a database entry at or
// above the given priority with at least the given match score.
func (db *Database) IsPriorityGame(title string, minPriority int, minScore float64) bool {
	for _, m := range db.FindMatches(title) {
		if m.Game.Priority >= minPriority && m.Score >= minScore {
			return true
		}
	}
	return false
}

// Priority returns the priority of the best sufficiently-scored match.
func (db *Database) Priority(title string) (int, bool) {
	for _, m := range db.FindMatches(title) {
		if m.Score >= DefaultMinScore {
			return m.Game.Priority, true
		}
	}
	return 0, false
}

// Stats summarizes the database contents for the admin command.
type Stats struct {
	TotalGames int
	ByPriority map[int]int
	ByCategory map[string]int
}

// DatabaseStats computes distribution statistics over the collection.
func (db *Database) DatabaseStats() Stats {
	db.mu.RLock()
	defer db.mu.RUnlock()

	stats := Stats{
		TotalGames: len(db.games),
		ByPriority: make(map[int]int),
		ByCategory: make(map[string]int),
	}
	for _, g := range db.games {
		stats.ByPriority[g.Priority]++
		category := g.Category
		if category == "" {
			category = "Unknown"
		}
		stats.ByCategory[category]++
	}
	return stats
}
