// Package deals orchestrates the filtering pipeline: fetch, normalize,
// filter, dedupe, score, sort, truncate, with a bounded escalation loop when
// the first pass comes up short.
package deals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/guarzo/gamedealer/internal/itad"
	"github.com/guarzo/gamedealer/internal/model"
	"github.com/guarzo/gamedealer/internal/popularity"
	"github.com/guarzo/gamedealer/internal/priority"
	"github.com/guarzo/gamedealer/internal/quality"
	"github.com/guarzo/gamedealer/internal/stores"
)

// ErrNoPriorityDatabase means a priority-only search was requested but the
// curated database is empty or missing.
var ErrNoPriorityDatabase = errors.New("priority database is empty")

const (
	// maxFetchRounds bounds the escalation loop: one initial fetch plus two
	// escalation rounds.
	maxFetchRounds = 3
	// relaxStep is how far the priority threshold drops per escalation
	// round. It never drops below 1.
	relaxStep        = 2
	minPriorityFloor = 1
)

// Query carries the caller-supplied search parameters.
type Query struct {
	MinDiscount   int
	Limit         int
	Store         string // display name or alias; empty means default stores
	MinPriority   int
	QualityFilter bool
}

// RankedDeal is a deal annotated with the signals used to rank it.
type RankedDeal struct {
	model.Deal
	DiscountPct int
	Priority    int // 0 when the title is not in the priority database
	MatchScore  float64
	Category    string
	Notes       string
	Quality     float64 // hybrid-search score, 0 elsewhere
}

// Fetcher is the slice of the ITAD client the pipeline needs.
type Fetcher interface {
	FetchDeals(ctx context.Context, q itad.DealsQuery) (*itad.DealsPage, error)
}

// PopularityLoader supplies the merged popularity reference.
type PopularityLoader interface {
	Load(ctx context.Context) popularity.Reference
}

// Service runs deal searches. One instance serves all commands; it holds no
// per-search state.
type Service struct {
	client  Fetcher
	db      *priority.Database
	popular PopularityLoader
	log     *slog.Logger
}

// NewService wires the pipeline.
func NewService(client Fetcher, db *priority.Database, popular PopularityLoader, log *slog.Logger) *Service {
	return &Service{client: client, db: db, popular: popular, log: log}
}

// Search runs the general pipeline. An unknown store filter yields an empty
// result, not an error. An empty result after filtering is the no-results
// outcome: nil error, for the caller to phrase as "relax your filters".
//
// When a round produces fewer results than requested, the loop escalates:
// it fetches the next page if the upstream says one exists, and relaxes the
// priority threshold by relaxStep (never below 1), re-admitting candidates
// previously held back only for priority. Upstream errors in an escalation
// round abort that round but keep results accumulated so far.
func (s *Service) Search(ctx context.Context, q Query) ([]RankedDeal, error) {
	q = q.withDefaults()
	shopIDs, ok := s.resolveShops(q.Store)
	if !ok {
		s.log.Warn("unknown store filter", "store", q.Store)
		return nil, nil
	}

	var popular popularity.Reference
	if q.QualityFilter && s.popular != nil {
		popular = s.popular.Load(ctx)
	}

	minPriority := q.MinPriority
	offset := 0
	seen := make(map[string]int)
	var results []RankedDeal
	var held []RankedDeal // below the priority threshold, may re-admit later

	for round := 0; round < maxFetchRounds; round++ {
		page, err := s.client.FetchDeals(ctx, itad.DealsQuery{
			Offset:  offset,
			Limit:   itad.MaxPageSize,
			Sort:    itad.SortByDiscount,
			ShopIDs: shopIDs,
		})
		if err != nil {
			if round == 0 {
				return nil, fmt.Errorf("fetching deals: %w", err)
			}
			s.log.Warn("escalation fetch failed, keeping partial results",
				"round", round, "error", err)
			break
		}

		for _, rec := range page.Records {
			if rec.DiscountPct < q.MinDiscount {
				continue
			}
			if q.Store != "" && !stores.MatchesFilter(rec.Deal.Store, q.Store) {
				continue
			}

			rd := s.annotate(rec)
			if q.QualityFilter {
				pass, priorityOnly := s.passesQuality(rd, rec, popular, minPriority)
				if !pass {
					if priorityOnly {
						held = append(held, rd)
					}
					continue
				}
			}
			admit(&results, seen, rd)
		}

		if len(results) >= q.Limit {
			break
		}
		if !page.HasMore && minPriority <= minPriorityFloor {
			break
		}

		if page.HasMore {
			offset += itad.MaxPageSize
		}
		minPriority = max(minPriorityFloor, minPriority-relaxStep)
		held = s.readmit(&results, seen, held, minPriority)
	}

	sortRanked(results)
	if len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

// SearchPriority matches deals against the curated database using exact
// normalized-title equality only. The looser containment bands of the fuzzy
// matcher are deliberately not used here: this is the high-precision path,
// and substring matching lets short curated titles ride along inside
// unrelated longer ones.
func (s *Service) SearchPriority(ctx context.Context, q Query) ([]RankedDeal, error) {
	q = q.withDefaults()
	if !s.db.HasGames() {
		return nil, ErrNoPriorityDatabase
	}
	shopIDs, ok := s.resolveShops(q.Store)
	if !ok {
		s.log.Warn("unknown store filter", "store", q.Store)
		return nil, nil
	}

	// Canonical index: normalized curated title to its best entry.
	index := make(map[string]model.PriorityGame)
	for _, g := range s.db.Games() {
		key := NormalizeTitle(g.Title)
		if existing, ok := index[key]; !ok || g.Priority > existing.Priority {
			index[key] = g
		}
	}

	offset := 0
	seen := make(map[string]int)
	var results []RankedDeal

	for round := 0; round < maxFetchRounds; round++ {
		page, err := s.client.FetchDeals(ctx, itad.DealsQuery{
			Offset:  offset,
			Limit:   itad.MaxPageSize,
			Sort:    itad.SortByDiscount,
			ShopIDs: shopIDs,
		})
		if err != nil {
			if round == 0 {
				return nil, fmt.Errorf("fetching deals: %w", err)
			}
			s.log.Warn("escalation fetch failed, keeping partial results",
				"round", round, "error", err)
			break
		}

		for _, rec := range page.Records {
			if rec.DiscountPct < q.MinDiscount {
				continue
			}
			if q.Store != "" && !stores.MatchesFilter(rec.Deal.Store, q.Store) {
				continue
			}

			game, ok := index[NormalizeTitle(rec.Deal.Title)]
			if !ok || game.Priority < q.MinPriority {
				continue
			}

			admit(&results, seen, RankedDeal{
				Deal:        rec.Deal,
				DiscountPct: rec.DiscountPct,
				Priority:    game.Priority,
				MatchScore:  1.0,
				Category:    game.Category,
				Notes:       game.Notes,
			})
		}

		if len(results) >= q.Limit || !page.HasMore {
			break
		}
		offset += itad.MaxPageSize
	}

	sortRanked(results)
	if len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

// SearchHybrid scores every candidate against the popularity reference and
// returns the top scorers. When the popularity fetch fails the reference is
// empty and the scoring degrades gracefully to discount-dominant ordering.
func (s *Service) SearchHybrid(ctx context.Context, q Query) ([]RankedDeal, error) {
	q = q.withDefaults()
	shopIDs, ok := s.resolveShops(q.Store)
	if !ok {
		s.log.Warn("unknown store filter", "store", q.Store)
		return nil, nil
	}

	page, err := s.client.FetchDeals(ctx, itad.DealsQuery{
		Limit:   itad.MaxPageSize,
		Sort:    itad.SortByDiscount,
		ShopIDs: shopIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching deals: %w", err)
	}

	var popular popularity.Reference
	if s.popular != nil {
		popular = s.popular.Load(ctx)
	}

	seen := make(map[string]int)
	var results []RankedDeal
	for _, rec := range page.Records {
		if rec.DiscountPct < q.MinDiscount {
			continue
		}
		score := quality.Score(rec.Deal.Title, rec.DiscountPct, popular)
		if score <= 0 {
			continue
		}
		rd := s.annotate(rec)
		rd.Quality = score
		admit(&results, seen, rd)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Quality > results[j].Quality
	})
	if len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func (q Query) withDefaults() Query {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	return q
}

func (s *Service) resolveShops(store string) ([]int, bool) {
	if store == "" {
		return stores.DefaultShopIDs(), true
	}
	id, ok := stores.ShopID(store)
	if !ok {
		return nil, false
	}
	return []int{id}, true
}

// annotate attaches the best fuzzy priority match, if any, to a record.
func (s *Service) annotate(rec itad.DealRecord) RankedDeal {
	rd := RankedDeal{Deal: rec.Deal, DiscountPct: rec.DiscountPct}
	for _, m := range s.db.FindMatches(rec.Deal.Title) {
		if m.Score >= priority.DefaultMinScore {
			rd.Priority = m.Game.Priority
			rd.MatchScore = m.Score
			rd.Category = m.Game.Category
			rd.Notes = m.Game.Notes
			break // matches are sorted best-first
		}
	}
	return rd
}

// passesQuality applies the quality gate. The second return value reports
// that the only reason for rejection was the priority threshold, which the
// escalation loop may later relax.
func (s *Service) passesQuality(rd RankedDeal, rec itad.DealRecord, popular popularity.Reference, minPriority int) (bool, bool) {
	stats := lookupStats(popular, rec.Deal.Title)
	if quality.IsLikelyAssetFlip(rec.Deal.Title, rec.PriceAmount, rec.DiscountPct, stats) {
		return false, false
	}

	if s.db.HasGames() && rd.Priority > 0 {
		// Known to the curated database: the priority decides.
		return rd.Priority >= minPriority, rd.Priority < minPriority
	}

	// Unknown to the database: require community traction when we have a
	// popularity reference to consult.
	if len(popular) == 0 {
		return true, false
	}
	return stats != nil && stats.IsPopular(), false
}

// admit appends rd unless a deal with the same normalized title is already
// present, in which case the higher priority wins and the first-seen entry
// wins ties.
func admit(results *[]RankedDeal, seen map[string]int, rd RankedDeal) {
	key := NormalizeTitle(rd.Title)
	if idx, ok := seen[key]; ok {
		if rd.Priority > (*results)[idx].Priority {
			(*results)[idx] = rd
		}
		return
	}
	seen[key] = len(*results)
	*results = append(*results, rd)
}

// readmit moves held candidates that clear the relaxed threshold into the
// result set, returning the still-held remainder.
func (s *Service) readmit(results *[]RankedDeal, seen map[string]int, held []RankedDeal, minPriority int) []RankedDeal {
	var remaining []RankedDeal
	for _, rd := range held {
		if rd.Priority >= minPriority {
			admit(results, seen, rd)
		} else {
			remaining = append(remaining, rd)
		}
	}
	return remaining
}

// sortRanked orders deals by the 50% rule: above a 50% discount, well-known
// titles outrank raw discount depth; at or below, discount dominates. The
// boundary is strictly greater-than.
func sortRanked(deals []RankedDeal) {
	sort.SliceStable(deals, func(i, j int) bool {
		ki, kj := sortKey(deals[i]), sortKey(deals[j])
		if ki[0] != kj[0] {
			return ki[0] < kj[0]
		}
		return ki[1] < kj[1]
	})
}

func sortKey(d RankedDeal) [2]int {
	if d.DiscountPct > 50 {
		return [2]int{-d.Priority, -d.DiscountPct}
	}
	return [2]int{-d.DiscountPct, -d.Priority}
}

func lookupStats(ref popularity.Reference, title string) *model.PopularityStats {
	if len(ref) == 0 {
		return nil
	}
	if stats, ok := ref[strings.ToLower(title)]; ok {
		return &stats
	}
	return nil
}
