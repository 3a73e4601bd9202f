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

const leboncoinAPIBase = "https://api.leboncoin.fr"

// leboncoin reports publication times as naive UTC timestamps.
const leboncoinTimeLayout = "2006-01-02 15:04:05"

// LeboncoinClient monitors leboncoin search URLs through the finder
// API.
type LeboncoinClient struct {
	tr       *transport
	ledger   Ledger
	lookback time.Duration
	now      func() time.Time
	baseURL  string
}

func NewLeboncoinClient(ledger Ledger, cfg Config) *LeboncoinClient {
	cfg = cfg.withDefaults()
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = leboncoinAPIBase
	}
	return &LeboncoinClient{
		tr:       newTransport(cfg.FetchTimeout, cfg.Proxies),
		ledger:   ledger,
		lookback: cfg.Lookback,
		now:      cfg.Now,
		baseURL:  baseURL,
	}
}

func (c *LeboncoinClient) Name() string { return "leboncoin" }

// ValidateURL accepts URLs on any leboncoin host.
func (c *LeboncoinClient) ValidateURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Hostname()), "leboncoin")
}

// Finder API response shapes.
type leboncoinResponse struct {
	Ads []leboncoinAd `json:"ads"`
}

type leboncoinAd struct {
	ListID               int64                `json:"list_id"`
	Subject              string               `json:"subject"`
	Price                []float64            `json:"price"`
	URL                  string               `json:"url"`
	Images               leboncoinImages      `json:"images"`
	FirstPublicationDate string               `json:"first_publication_date"`
	Attributes           []leboncoinAttribute `json:"attributes"`
}

type leboncoinImages struct {
	URLs []string `json:"urls"`
}

type leboncoinAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (c *LeboncoinClient) Search(ctx context.Context, queryURL string, maxItems int) ([]domain.Item, error) {
	c.tr.beginFetch()

	apiURL, err := c.apiURL(queryURL, maxItems)
	if err != nil {
		return nil, recovery.NewError(recovery.ClassTransient, "building finder url", err)
	}

	var resp leboncoinResponse
	if err := c.tr.getJSON(ctx, apiURL, &resp); err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(resp.Ads))
	for _, ad := range resp.Ads {
		// Listings already pending or sold are not worth reporting.
		if adConcluded(ad) {
			continue
		}
		items = append(items, c.normalize(ad, queryURL))
		if len(items) == maxItems {
			break
		}
	}

	c.tr.fetchSucceeded()
	return items, nil
}

func (c *LeboncoinClient) NewItems(ctx context.Context, queryURL, subscriberID string, maxItems int) ([]domain.Item, error) {
	items, err := c.Search(ctx, queryURL, maxItems)
	if err != nil {
		return nil, err
	}
	return filterNew(ctx, c.ledger, c.now(), c.lookback, subscriberID, queryURL, items)
}

func adConcluded(ad leboncoinAd) bool {
	for _, attr := range ad.Attributes {
		if attr.Key == "transaction_status" && (attr.Value == "pending" || attr.Value == "sold") {
			return true
		}
	}
	return false
}

// apiURL maps a search URL onto the finder endpoint, carrying the
// search parameters over. Search URLs arrive percent-encoded from chat
// clients, so the query is decoded first.
func (c *LeboncoinClient) apiURL(queryURL string, maxItems int) (string, error) {
	decoded, err := url.QueryUnescape(queryURL)
	if err != nil {
		decoded = queryURL
	}

	u, err := url.Parse(decoded)
	if err != nil {
		return "", fmt.Errorf("parsing search url: %w", err)
	}

	params := u.Query()
	params.Set("limit", strconv.Itoa(maxItems))
	params.Set("page", "1")

	return c.baseURL + "/finder/search?" + params.Encode(), nil
}

// normalize converts a raw ad into a domain Item, degrading to zero
// values on missing fields.
func (c *LeboncoinClient) normalize(ad leboncoinAd, queryURL string) domain.Item {
	item := domain.Item{
		ID:          strconv.FormatInt(ad.ListID, 10),
		Title:       ad.Subject,
		Currency:    "EUR",
		DetailURL:   ad.URL,
		Brand:       "Unknown brand",
		SourceQuery: queryURL,
	}
	if len(ad.Price) > 0 {
		item.Price = strconv.FormatFloat(ad.Price[0], 'f', -1, 64)
	}
	if len(ad.Images.URLs) > 0 {
		item.PhotoURL = ad.Images.URLs[0]
	}
	if ts, err := time.Parse(leboncoinTimeLayout, ad.FirstPublicationDate); err == nil {
		item.ListedAt = ts.UTC()
	}
	return item
}

// FormatMessage renders an item notification. Optional fields are
// simply omitted; formatting never fails.
func (c *LeboncoinClient) FormatMessage(item domain.Item, sourceURL string) string {
	return formatItemMessage(item, sourceURL, "View on leboncoin")
}

// RotateProxy implements recovery.Rotator.
func (c *LeboncoinClient) RotateProxy() bool { return c.tr.RotateProxy() }

// RefreshIdentity implements recovery.Rotator.
func (c *LeboncoinClient) RefreshIdentity() { c.tr.RefreshIdentity() }

// ConsecutiveFailures implements recovery.Rotator.
func (c *LeboncoinClient) ConsecutiveFailures() int { return c.tr.ConsecutiveFailures() }

var _ Client = (*LeboncoinClient)(nil)
