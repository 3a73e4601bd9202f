package market

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/listingwatch/listingwatch/internal/domain"
	"github.com/listingwatch/listingwatch/internal/recovery"
)

// VintedClient monitors Vinted search URLs through the public catalog
// API.
type VintedClient struct {
	tr       *transport
	ledger   Ledger
	lookback time.Duration
	now      func() time.Time
	baseURL  string
}

func NewVintedClient(ledger Ledger, cfg Config) *VintedClient {
	cfg = cfg.withDefaults()
	return &VintedClient{
		tr:       newTransport(cfg.FetchTimeout, cfg.Proxies),
		ledger:   ledger,
		lookback: cfg.Lookback,
		now:      cfg.Now,
		baseURL:  cfg.BaseURL,
	}
}

func (c *VintedClient) Name() string { return "vinted" }

// ValidateURL accepts URLs on any vinted.* host.
func (c *VintedClient) ValidateURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Hostname()), "vinted.")
}

// Catalog API response shapes. Only the fields the normalizer needs.
type vintedResponse struct {
	Items []vintedItem `json:"items"`
}

type vintedItem struct {
	ID         int64        `json:"id"`
	Title      string       `json:"title"`
	Price      vintedPrice  `json:"price"`
	URL        string       `json:"url"`
	BrandTitle string       `json:"brand_title"`
	Photo      *vintedPhoto `json:"photo"`
}

type vintedPrice struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

type vintedPhoto struct {
	URL            string `json:"url"`
	HighResolution *struct {
		Timestamp int64 `json:"timestamp"`
	} `json:"high_resolution"`
}

func (c *VintedClient) Search(ctx context.Context, queryURL string, maxItems int) ([]domain.Item, error) {
	c.tr.beginFetch()

	apiURL, err := c.apiURL(queryURL, maxItems)
	if err != nil {
		return nil, recovery.NewError(recovery.ClassTransient, "building catalog url", err)
	}

	var resp vintedResponse
	if err := c.tr.getJSON(ctx, apiURL, &resp); err != nil {
		return nil, err
	}

	raw := resp.Items
	if len(raw) > maxItems {
		raw = raw[:maxItems]
	}

	items := make([]domain.Item, 0, len(raw))
	for _, ri := range raw {
		items = append(items, c.normalize(ri, queryURL))
	}

	c.tr.fetchSucceeded()
	return items, nil
}

func (c *VintedClient) NewItems(ctx context.Context, queryURL, subscriberID string, maxItems int) ([]domain.Item, error) {
	items, err := c.Search(ctx, queryURL, maxItems)
	if err != nil {
		return nil, err
	}
	return filterNew(ctx, c.ledger, c.now(), c.lookback, subscriberID, queryURL, items)
}

// apiURL translates a catalog search URL into its API equivalent,
// carrying the search parameters over and bounding the page size.
func (c *VintedClient) apiURL(queryURL string, maxItems int) (string, error) {
	u, err := url.Parse(queryURL)
	if err != nil {
		return "", fmt.Errorf("parsing search url: %w", err)
	}

	base := c.baseURL
	if base == "" {
		base = u.Scheme + "://" + u.Host
	}

	params := u.Query()
	params.Set("per_page", strconv.Itoa(maxItems))
	params.Set("page", "1")

	return base + "/api/v2/catalog/items?" + params.Encode(), nil
}

// normalize converts a raw catalog entry into a domain Item. Missing
// fields degrade to zero values rather than failing; the ID is the only
// field the pipeline depends on.
func (c *VintedClient) normalize(ri vintedItem, queryURL string) domain.Item {
	item := domain.Item{
		ID:          strconv.FormatInt(ri.ID, 10),
		Title:       ri.Title,
		Price:       ri.Price.Amount,
		Currency:    ri.Price.CurrencyCode,
		DetailURL:   ri.URL,
		Brand:       ri.BrandTitle,
		SourceQuery: queryURL,
	}
	if item.Brand == "" {
		item.Brand = "Unknown brand"
	}
	if ri.Photo != nil {
		item.PhotoURL = ri.Photo.URL
		if ri.Photo.HighResolution != nil {
			item.ListedAt = time.Unix(ri.Photo.HighResolution.Timestamp, 0).UTC()
		}
	}
	return item
}

// FormatMessage renders an item notification. Optional fields are
// simply omitted; formatting never fails.
func (c *VintedClient) FormatMessage(item domain.Item, sourceURL string) string {
	return formatItemMessage(item, sourceURL, "View on Vinted")
}

// RotateProxy implements recovery.Rotator.
func (c *VintedClient) RotateProxy() bool { return c.tr.RotateProxy() }

// RefreshIdentity implements recovery.Rotator.
func (c *VintedClient) RefreshIdentity() { c.tr.RefreshIdentity() }

// ConsecutiveFailures implements recovery.Rotator.
func (c *VintedClient) ConsecutiveFailures() int { return c.tr.ConsecutiveFailures() }

var _ Client = (*VintedClient)(nil)
