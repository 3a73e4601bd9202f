package domain

import (
	"time"
)

// Query is a saved marketplace search URL monitored for one subscriber.
// The URL identifies both the marketplace and the search parameters;
// (SubscriberID, URL) is unique.
type Query struct {
	SubscriberID string    `json:"subscriber_id"`
	URL          string    `json:"url"`
	AddedAt      time.Time `json:"added_at"`
}

type AddQueryRequest struct {
	URL string `json:"url"`
}

type RemoveQueryRequest struct {
	URL string `json:"url"`
}
