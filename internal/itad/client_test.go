package itad

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const dealsPayload = `{
	"list": [
		{
			"title": "Hades",
			"deal": {
				"shop": {"id": 61, "name": "Steam"},
				"price": {"amount": 6.24},
				"regular": {"amount": 24.99},
				"cut": 75,
				"url": "https://example.com/hades"
			}
		}
	],
	"hasMore": true
}`

func newTestClient(t *testing.T, srvURL string, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithBaseURL(srvURL),
		WithRateLimit(1000),
		WithSleeper(func(time.Duration) {}),
	}
	c, err := NewClient("test-key", testLogger(), append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient("", testLogger())
	require.Error(t, err)
}

func TestFetchDeals_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "false", r.URL.Query().Get("nondeals"))
		assert.Equal(t, "false", r.URL.Query().Get("mature"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, dealsPayload)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	page, err := c.FetchDeals(context.Background(), DealsQuery{Limit: 10})
	require.NoError(t, err)

	require.Len(t, page.Records, 1)
	assert.True(t, page.HasMore)

	rec := page.Records[0]
	assert.Equal(t, "Hades", rec.Deal.Title)
	assert.Equal(t, "$6.24", rec.Deal.Price)
	assert.Equal(t, "$24.99", rec.Deal.OriginalPrice)
	assert.Equal(t, "75%", rec.Deal.Discount)
	assert.Equal(t, "Steam", rec.Deal.Store)
	assert.Equal(t, 75, rec.DiscountPct)
	assert.InDelta(t, 6.24, rec.PriceAmount, 0.001)
	assert.Equal(t, 61, rec.ShopID)
}

func TestFetchDeals_ShopFilterAndPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "61,35", r.URL.Query().Get("shops"))
		assert.Equal(t, "200", r.URL.Query().Get("offset"))
		assert.Equal(t, "200", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"list": [], "hasMore": false}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	page, err := c.FetchDeals(context.Background(), DealsQuery{
		Offset:  200,
		Limit:   999, // over the cap, clamped to 200
		ShopIDs: []int{61, 35},
	})
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.False(t, page.HasMore)
}

func TestFetchDeals_EmptyListIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"list": [], "hasMore": false}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	page, err := c.FetchDeals(context.Background(), DealsQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Records)
}

func TestFetchDeals_MissingListKeyIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"hasMore": false}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.FetchDeals(context.Background(), DealsQuery{})
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestFetchDeals_SkipsItemsMissingRequiredFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"list": [
				{"title": "No Deal Block"},
				{"title": "", "deal": {"shop": {"id": 61, "name": "Steam"}, "cut": 50}},
				{"title": "Valid", "deal": {"shop": {"id": 61, "name": "Steam"}, "price": {"amount": 0}, "cut": 100, "url": "u"}}
			],
			"hasMore": false
		}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	page, err := c.FetchDeals(context.Background(), DealsQuery{})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "Valid", page.Records[0].Deal.Title)
	assert.Equal(t, "Free", page.Records[0].Deal.Price)
}

func TestClientError_NotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.FetchDeals(context.Background(), DealsQuery{})

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, http.StatusBadRequest, clientErr.Status)
	assert.Equal(t, int32(1), hits.Load(), "4xx must not be retried")
}

func TestMalformedResponse_NotRetried(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"html content type", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			io.WriteString(w, "<html>maintenance</html>")
		}},
		{"null body", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, "null")
		}},
		{"empty body", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				tc.handler(w, r)
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			_, err := c.FetchDeals(context.Background(), DealsQuery{})

			var malformed *MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, int32(1), hits.Load(), "malformed responses must not be retried")
		})
	}
}

func TestTransientError_RetriedUntilSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			http.Error(w, "bad gateway", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, dealsPayload)
	}))
	defer srv.Close()

	var sleeps []time.Duration
	c := newTestClient(t, srv.URL, WithSleeper(func(d time.Duration) {
		sleeps = append(sleeps, d)
	}))

	page, err := c.FetchDeals(context.Background(), DealsQuery{})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, int32(3), hits.Load())

	// First backoff ~0.5s, second ~1s, each plus up to 0.25s jitter.
	require.Len(t, sleeps, 2)
	assert.GreaterOrEqual(t, sleeps[0], 500*time.Millisecond)
	assert.Less(t, sleeps[0], 750*time.Millisecond)
	assert.GreaterOrEqual(t, sleeps[1], time.Second)
	assert.Less(t, sleeps[1], 1250*time.Millisecond)
}

func TestTransientError_ExhaustedRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var total time.Duration
	c := newTestClient(t, srv.URL,
		WithRetries(3),
		WithSleeper(func(d time.Duration) { total += d }),
	)

	_, err := c.FetchDeals(context.Background(), DealsQuery{})

	var transient *TransientError
	require.ErrorAs(t, err, &transient)
	assert.Equal(t, http.StatusServiceUnavailable, transient.Status)
	assert.Equal(t, int32(4), hits.Load(), "3 retries means 4 attempts")

	// Three sleeps of 0.5s, 1s, 2s plus at most 0.25s jitter each.
	assert.GreaterOrEqual(t, total, 3500*time.Millisecond)
	assert.LessOrEqual(t, total, 4250*time.Millisecond)
}

func TestClient_DecodesGzipResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "gzip")

		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		io.WriteString(gz, dealsPayload)
		gz.Close()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	page, err := c.FetchDeals(context.Background(), DealsQuery{})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "Hades", page.Records[0].Deal.Title)
}

func TestFetchStats_BareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats/most-waitlisted/v1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"title": "Hollow Knight: Silksong", "slug": "hollow-knight-silksong", "count": 120000, "position": 1},
			{"title": "Hades II", "slug": "hades-ii", "count": 90000, "position": 2}
		]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	entries, err := c.FetchStats(context.Background(), StatsMostWaitlisted, 500, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Hollow Knight: Silksong", entries[0].Title)
	assert.Equal(t, 1, entries[0].Position)
}
