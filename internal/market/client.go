// Package market defines the uniform contract over heterogeneous
// marketplace sources and the concrete clients implementing it.
package market

import (
	"context"
	"time"

	"github.com/listingwatch/listingwatch/internal/domain"
	"github.com/listingwatch/listingwatch/internal/recovery"
)

// Ledger is the seen-item dedup store consulted by NewItems.
type Ledger interface {
	// IsNew reports whether the item has never been seen for the
	// (subscriber, query) pair.
	IsNew(ctx context.Context, subscriberID, url, itemID string) (bool, error)
	// MarkSeen records the item as seen. Idempotent.
	MarkSeen(ctx context.Context, subscriberID, url, itemID string) error
}

// Client is the capability set every supported marketplace exposes.
// Clients own their recovery state (proxy selection, request identity,
// failure streak), so they also satisfy recovery.Rotator.
type Client interface {
	// Name identifies the marketplace in logs and events.
	Name() string

	// ValidateURL reports whether this client handles the URL. Pure
	// predicate on the URL host; no network call.
	ValidateURL(rawURL string) bool

	// Search fetches up to maxItems current listings for the search
	// URL, newest first as the marketplace returns them. Failures are
	// classified recovery errors. The call increments the failure
	// streak on entry and resets it to zero on success.
	Search(ctx context.Context, queryURL string, maxItems int) ([]domain.Item, error)

	// NewItems calls Search, then filters and records against the
	// dedup ledger per item, discarding listings older than the
	// look-back window even when never seen before.
	NewItems(ctx context.Context, queryURL, subscriberID string, maxItems int) ([]domain.Item, error)

	// FormatMessage renders an item as notification text. Never fails;
	// optional fields are omitted when absent.
	FormatMessage(item domain.Item, sourceURL string) string

	recovery.Rotator
}

// Config carries the knobs shared by all marketplace clients.
type Config struct {
	FetchTimeout time.Duration
	Lookback     time.Duration
	Proxies      *recovery.ProxyPool

	// BaseURL overrides the marketplace API origin. Tests point it at
	// an httptest server; empty means the client's default.
	BaseURL string

	// Now overrides the clock for the look-back filter.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.Lookback <= 0 {
		c.Lookback = 7 * 24 * time.Hour
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Registry resolves a query URL to the one client whose predicate
// accepts it. URL shapes are disjoint by construction (each predicate
// matches a different marketplace host), so first-match is the only
// match.
type Registry struct {
	clients []Client
}

func NewRegistry(clients ...Client) *Registry {
	return &Registry{clients: clients}
}

// Resolve returns the client handling rawURL, or nil when no client
// accepts it (the URL is unsupported, not an error).
func (r *Registry) Resolve(rawURL string) Client {
	for _, c := range r.clients {
		if c.ValidateURL(rawURL) {
			return c
		}
	}
	return nil
}

// Clients returns the registered clients in resolution order.
func (r *Registry) Clients() []Client {
	return r.clients
}
