package itad

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/guarzo/gamedealer/internal/model"
	"github.com/guarzo/gamedealer/internal/stores"
)

// Sort orders accepted by the deals endpoint.
const (
	SortByDiscount   = "-cut"
	SortByPopularity = "-waitlisted"
	SortByNewest     = "-time"
)

// MaxPageSize is the largest page the deals endpoint serves.
const MaxPageSize = 200

// DealsQuery describes one page request against /deals/v2.
type DealsQuery struct {
	Offset  int
	Limit   int
	Sort    string // SortBy* constant, defaults to SortByDiscount
	ShopIDs []int
}

// DealRecord is one upstream deal item mapped into the canonical Deal shape,
// keeping the raw numeric fields the filtering pipeline needs.
type DealRecord struct {
	Deal        model.Deal
	DiscountPct int
	PriceAmount float64
	ShopID      int
}

// DealsPage is one page of deal records plus the upstream pagination hint.
type DealsPage struct {
	Records []DealRecord
	HasMore bool
}

// dealsResponse mirrors the /deals/v2 payload. The top-level "list" key is
// required; its absence is a malformed response, not an empty result.
type dealsResponse struct {
	List    []dealItem `json:"list"`
	HasMore bool       `json:"hasMore"`
}

type dealItem struct {
	Title string    `json:"title"`
	Deal  *dealInfo `json:"deal"`
}

type dealInfo struct {
	Shop struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"shop"`
	Price   *priceBlock `json:"price"`
	Regular *priceBlock `json:"regular"`
	Cut     *int        `json:"cut"`
	URL     string      `json:"url"`
}

type priceBlock struct {
	Amount float64 `json:"amount"`
}

// FetchDeals requests one page of current deals. Items missing required
// fields are rejected individually; the page as a whole succeeds as long as
// the envelope is well-formed.
func (c *Client) FetchDeals(ctx context.Context, q DealsQuery) (*DealsPage, error) {
	if q.Limit <= 0 || q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	sortOrder := q.Sort
	if sortOrder == "" {
		sortOrder = SortByDiscount
	}

	params := url.Values{}
	params.Set("offset", strconv.Itoa(q.Offset))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("sort", sortOrder)
	params.Set("nondeals", "false")
	params.Set("mature", "false")
	if len(q.ShopIDs) > 0 {
		ids := make([]string, len(q.ShopIDs))
		for i, id := range q.ShopIDs {
			ids[i] = strconv.Itoa(id)
		}
		params.Set("shops", strings.Join(ids, ","))
	}

	raw, err := c.getJSON(ctx, "/deals/v2", params)
	if err != nil {
		return nil, err
	}

	// Probe for the list key first: an object without it means the server
	// answered with something other than a deals page.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &MalformedResponseError{Reason: "deals response is not an object"}
	}
	if _, ok := probe["list"]; !ok {
		return nil, &MalformedResponseError{Reason: `deals response missing "list" key`}
	}

	var resp dealsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("decoding deals response: %v", err)}
	}

	page := &DealsPage{HasMore: resp.HasMore}
	for _, item := range resp.List {
		rec, err := mapDealItem(item)
		if err != nil {
			c.log.Warn("skipping deal item", "title", item.Title, "error", err)
			continue
		}
		page.Records = append(page.Records, rec)
	}
	return page, nil
}

// mapDealItem converts a raw upstream item into a DealRecord. Title, the
// deal block, and the discount cut are required; missing ones reject the
// item rather than defaulting silently.
func mapDealItem(item dealItem) (DealRecord, error) {
	if item.Title == "" {
		return DealRecord{}, fmt.Errorf("missing title")
	}
	if item.Deal == nil {
		return DealRecord{}, fmt.Errorf("missing deal block")
	}
	if item.Deal.Cut == nil {
		return DealRecord{}, fmt.Errorf("missing discount cut")
	}

	current, amount := formatPrice(item.Deal.Price)
	original, _ := formatPrice(item.Deal.Regular)
	if item.Deal.Regular == nil {
		original = current
	}

	cut := *item.Deal.Cut
	discount := ""
	if cut > 0 {
		discount = fmt.Sprintf("%d%%", cut)
	}

	return DealRecord{
		Deal: model.Deal{
			Title:         item.Title,
			Price:         current,
			OriginalPrice: original,
			Store:         stores.DisplayName(item.Deal.Shop.Name),
			URL:           item.Deal.URL,
			Discount:      discount,
		},
		DiscountPct: cut,
		PriceAmount: amount,
		ShopID:      item.Deal.Shop.ID,
	}, nil
}

func formatPrice(p *priceBlock) (string, float64) {
	if p == nil {
		return "Unknown", 0
	}
	if p.Amount == 0 {
		return "Free", 0
	}
	return fmt.Sprintf("$%.2f", p.Amount), p.Amount
}
