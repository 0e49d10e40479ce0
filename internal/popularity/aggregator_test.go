package popularity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/gamedealer/internal/itad"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeFetcher struct {
	responses map[itad.StatsKind][]itad.StatsEntry
	errs      map[itad.StatsKind]error
	calls     int
}

func (f *fakeFetcher) FetchStats(_ context.Context, kind itad.StatsKind, _, _ int) ([]itad.StatsEntry, error) {
	f.calls++
	if err := f.errs[kind]; err != nil {
		return nil, err
	}
	return f.responses[kind], nil
}

func TestAggregator_MergesSources(t *testing.T) {
	fetcher := &fakeFetcher{
		responses: map[itad.StatsKind][]itad.StatsEntry{
			itad.StatsMostWaitlisted: {
				{Title: "Hollow Knight: Silksong", Count: 120000, Position: 1},
				{Title: "Hades II", Count: 90000, Position: 2},
			},
			itad.StatsMostCollected: {
				{Title: "Hades II", Count: 40000, Position: 8},
			},
			itad.StatsMostPopular: {
				{Title: "Hades II", Count: 7000, Position: 3},
			},
		},
	}

	agg := New(fetcher, time.Minute, testLogger())
	ref := agg.Load(context.Background())

	require.Len(t, ref, 2)

	hades := ref["hades ii"]
	assert.Equal(t, "Hades II", hades.Title)
	assert.Equal(t, 90000, hades.WaitlistedCount)
	assert.Equal(t, 40000, hades.CollectedCount)
	assert.Equal(t, 7000, hades.PopularityScore)
	// Best rank across lists wins, tagged with its source.
	assert.Equal(t, 2, hades.Rank)
	assert.Equal(t, string(itad.StatsMostWaitlisted), hades.Source)

	// Absent from the popular list: score falls back to the other counts.
	silksong := ref["hollow knight: silksong"]
	assert.Equal(t, 120000, silksong.PopularityScore)
	assert.Equal(t, 1, silksong.Rank)
}

func TestAggregator_PartialSourceFailure(t *testing.T) {
	fetcher := &fakeFetcher{
		responses: map[itad.StatsKind][]itad.StatsEntry{
			itad.StatsMostWaitlisted: {
				{Title: "Hades II", Count: 90000, Position: 2},
			},
		},
		errs: map[itad.StatsKind]error{
			itad.StatsMostCollected: errors.New("boom"),
			itad.StatsMostPopular:   errors.New("boom"),
		},
	}

	agg := New(fetcher, time.Minute, testLogger())
	ref := agg.Load(context.Background())

	require.Len(t, ref, 1)
	assert.Equal(t, 90000, ref["hades ii"].WaitlistedCount)
	assert.Equal(t, 90000, ref["hades ii"].PopularityScore)
}

func TestAggregator_AllSourcesFailYieldsEmpty(t *testing.T) {
	boom := errors.New("boom")
	fetcher := &fakeFetcher{
		errs: map[itad.StatsKind]error{
			itad.StatsMostWaitlisted: boom,
			itad.StatsMostCollected:  boom,
			itad.StatsMostPopular:    boom,
		},
	}

	agg := New(fetcher, time.Minute, testLogger())
	ref := agg.Load(context.Background())
	assert.Empty(t, ref)

	// Empty results are not cached: the next Load tries again.
	agg.Load(context.Background())
	assert.Equal(t, 6, fetcher.calls)
}

func TestAggregator_CachesUntilInvalidated(t *testing.T) {
	fetcher := &fakeFetcher{
		responses: map[itad.StatsKind][]itad.StatsEntry{
			itad.StatsMostPopular: {{Title: "Hades II", Count: 7000, Position: 3}},
		},
	}

	agg := New(fetcher, time.Minute, testLogger())
	agg.Load(context.Background())
	agg.Load(context.Background())
	assert.Equal(t, 3, fetcher.calls, "second Load must be served from cache")

	agg.Invalidate()
	agg.Load(context.Background())
	assert.Equal(t, 6, fetcher.calls, "Invalidate must force a refetch")
}

func TestAggregator_SkipsUntitledEntries(t *testing.T) {
	fetcher := &fakeFetcher{
		responses: map[itad.StatsKind][]itad.StatsEntry{
			itad.StatsMostPopular: {
				{Title: "", Count: 100, Position: 1},
				{Title: "Hades II", Count: 7000, Position: 3},
			},
		},
	}

	agg := New(fetcher, time.Minute, testLogger())
	ref := agg.Load(context.Background())
	require.Len(t, ref, 1)
}
