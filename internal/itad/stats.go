package itad

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// StatsKind selects one of the popularity list endpoints.
type StatsKind string

const (
	StatsMostPopular    StatsKind = "most-popular"
	StatsMostWaitlisted StatsKind = "most-waitlisted"
	StatsMostCollected  StatsKind = "most-collected"
)

// StatsEntry is one row of a popularity list. Unlike the deals endpoint,
// these endpoints return a bare JSON array.
type StatsEntry struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Count    int    `json:"count"`
	Position int    `json:"position"`
}

// FetchStats requests one popularity list page.
func (c *Client) FetchStats(ctx context.Context, kind StatsKind, limit, offset int) ([]StatsEntry, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	raw, err := c.getJSON(ctx, fmt.Sprintf("/stats/%s/v1", kind), params)
	if err != nil {
		return nil, err
	}

	var entries []StatsEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("decoding %s stats: %v", kind, err)}
	}
	return entries, nil
}
