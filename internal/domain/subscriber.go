package domain

import (
	"time"
)

// Subscriber is a tenant watching one or more marketplace searches.
// Subscribers are created on first interaction and never hard-deleted;
// Paused gates both background polling and notifications.
type Subscriber struct {
	ID        string    `json:"id"`
	Paused    bool      `json:"paused"`
	PriceMin  *float64  `json:"price_min,omitempty"`
	PriceMax  *float64  `json:"price_max,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateSubscriberRequest struct {
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
}

// Stats summarizes the store for the status endpoint.
type Stats struct {
	SubscriberCount int64 `json:"subscriber_count"`
	QueryCount      int64 `json:"query_count"`
	SeenItemCount   int64 `json:"seen_item_count"`
}
