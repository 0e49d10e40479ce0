// Package popularity merges the upstream most-popular, most-waitlisted, and
// most-collected lists into one per-title reference map.
package popularity

import (
	"context"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/guarzo/gamedealer/internal/itad"
	"github.com/guarzo/gamedealer/internal/model"
)

// DefaultTTL is how long an aggregated reference stays fresh.
const DefaultTTL = time.Hour

// fetchLimit caps each source list; the reference is a broad net, not a
// complete census.
const fetchLimit = 500

const cacheKey = "popularity-reference"

// Fetcher is the slice of the ITAD client the aggregator needs.
type Fetcher interface {
	FetchStats(ctx context.Context, kind itad.StatsKind, limit, offset int) ([]itad.StatsEntry, error)
}

// Reference maps lowercase titles to merged popularity stats.
type Reference map[string]model.PopularityStats

// Aggregator owns the popularity reference and its TTL cache. Two
// concurrent refreshes may both recompute; the race is benign and cheap,
// so no coordination is attempted.
type Aggregator struct {
	client Fetcher
	cache  *gocache.Cache
	ttl    time.Duration
	log    *slog.Logger
}

// New builds an aggregator caching results for ttl (DefaultTTL if zero).
func New(client Fetcher, ttl time.Duration, log *slog.Logger) *Aggregator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Aggregator{
		client: client,
		cache:  gocache.New(ttl, 10*time.Minute),
		ttl:    ttl,
		log:    log,
	}
}

// Load returns the popularity reference, fetching and merging the three
// source lists when the cached copy has expired. Individual source failures
// are logged and skipped; only the sources that answered contribute. If
// every source fails the reference is empty, which callers treat as "no
// popularity data", not as an error.
func (a *Aggregator) Load(ctx context.Context) Reference {
	if cached, ok := a.cache.Get(cacheKey); ok {
		return cached.(Reference)
	}

	ref := a.fetchAll(ctx)
	if len(ref) > 0 {
		a.cache.Set(cacheKey, ref, a.ttl)
	}
	return ref
}

// Invalidate drops the cached reference so the next Load refetches.
func (a *Aggregator) Invalidate() {
	a.cache.Delete(cacheKey)
}

func (a *Aggregator) fetchAll(ctx context.Context) Reference {
	ref := make(Reference)

	sources := []struct {
		kind  itad.StatsKind
		apply func(stats *model.PopularityStats, entry itad.StatsEntry)
	}{
		{itad.StatsMostWaitlisted, func(s *model.PopularityStats, e itad.StatsEntry) {
			s.WaitlistedCount = e.Count
		}},
		{itad.StatsMostCollected, func(s *model.PopularityStats, e itad.StatsEntry) {
			s.CollectedCount = e.Count
		}},
		{itad.StatsMostPopular, func(s *model.PopularityStats, e itad.StatsEntry) {
			s.PopularityScore = e.Count
		}},
	}

	fetched := 0
	for _, src := range sources {
		entries, err := a.client.FetchStats(ctx, src.kind, fetchLimit, 0)
		if err != nil {
			a.log.Warn("popularity source failed, continuing without it",
				"source", src.kind, "error", err)
			continue
		}
		fetched++

		for _, entry := range entries {
			if entry.Title == "" {
				continue
			}
			key := strings.ToLower(entry.Title)
			stats := ref[key]
			stats.Title = entry.Title
			src.apply(&stats, entry)

			// Keep the best (numerically lowest) rank seen across lists,
			// and remember which list produced it.
			if entry.Position > 0 && (stats.Rank == 0 || entry.Position < stats.Rank) {
				stats.Rank = entry.Position
				stats.Source = string(src.kind)
			}
			ref[key] = stats
		}
	}

	// Titles seen only on the waitlist/collection lists still get a
	// combined score.
	for key, stats := range ref {
		if stats.PopularityScore == 0 {
			stats.PopularityScore = stats.WaitlistedCount + stats.CollectedCount
			ref[key] = stats
		}
	}

	a.log.Info("popularity reference loaded", "titles", len(ref), "sources", fetched)
	return ref
}
