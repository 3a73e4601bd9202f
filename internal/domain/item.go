package domain

import (
	"time"
)

// Item is a normalized, read-only snapshot of a marketplace listing at
// fetch time. Items are transient value objects; only the ID is ever
// persisted (in the seen-item ledger).
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Price       string    `json:"price"`
	Currency    string    `json:"currency"`
	DetailURL   string    `json:"detail_url"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	ListedAt    time.Time `json:"listed_at"`
	SourceQuery string    `json:"source_query"`
}
