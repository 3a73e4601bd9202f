// Package notify turns new items into rate-limited outbound messages.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/listingwatch/listingwatch/internal/domain"
	ws "github.com/listingwatch/listingwatch/internal/websocket"
)

// Notifier delivers a text message to a subscriber's channel. The core
// never knows the transport behind it.
type Notifier interface {
	Send(ctx context.Context, subscriberID, text string) error
}

// Dispatcher paces and delivers notifications. A delivery failure is
// logged and swallowed: one bad send must never abort the cycle that
// produced it.
type Dispatcher struct {
	notifier Notifier
	limiter  *RateLimiter // optional backstop; nil disables it
	hub      *ws.Hub      // optional live event stream; nil disables it
	logger   *slog.Logger
	delay    time.Duration
	limit    int

	mu       sync.Mutex
	lastSend map[string]time.Time
}

func NewDispatcher(notifier Notifier, limiter *RateLimiter, hub *ws.Hub, logger *slog.Logger, delay time.Duration) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		limiter:  limiter,
		hub:      hub,
		logger:   logger,
		delay:    delay,
		limit:    1, // sends per second per subscriber through the backstop
		lastSend: make(map[string]time.Time),
	}
}

// NotifyItem delivers one new-item message to a subscriber, waiting out
// the inter-message delay since that subscriber's previous notification
// first. Successive items within one query's result set therefore
// arrive at most one per delay interval; different subscribers are
// never delayed by each other.
func (d *Dispatcher) NotifyItem(ctx context.Context, subscriberID string, item domain.Item, text string) {
	d.pace(ctx, subscriberID)

	if err := d.notifier.Send(ctx, subscriberID, text); err != nil {
		d.logger.Error("failed to deliver item notification",
			"subscriber_id", subscriberID,
			"item_id", item.ID,
			"error", err,
		)
		return
	}

	if d.hub != nil {
		d.hub.Broadcast(ws.Event{
			Type:         ws.EventNewItem,
			SubscriberID: subscriberID,
			Query:        item.SourceQuery,
			ItemID:       item.ID,
			Title:        item.Title,
			Price:        item.Price,
			Currency:     item.Currency,
			ItemURL:      item.DetailURL,
			Timestamp:    time.Now().UTC(),
		})
	}
}

// NotifyError delivers a short, best-effort error note to a subscriber.
// Non-blocking with respect to the cycle: failures are only logged.
func (d *Dispatcher) NotifyError(ctx context.Context, subscriberID, queryURL, text string) {
	if err := d.notifier.Send(ctx, subscriberID, text); err != nil {
		d.logger.Error("failed to deliver error notification",
			"subscriber_id", subscriberID,
			"error", err,
		)
	}

	if d.hub != nil {
		d.hub.Broadcast(ws.Event{
			Type:         ws.EventQueryError,
			SubscriberID: subscriberID,
			Query:        queryURL,
			Error:        text,
			Timestamp:    time.Now().UTC(),
		})
	}
}

// pace waits until the inter-message delay since the subscriber's last
// send has elapsed, then consults the sliding-window backstop. A denied
// backstop check waits one more delay interval and proceeds —
// notifications are delayed, never dropped.
func (d *Dispatcher) pace(ctx context.Context, subscriberID string) {
	d.mu.Lock()
	last, ok := d.lastSend[subscriberID]
	d.mu.Unlock()

	if ok {
		if wait := d.delay - time.Since(last); wait > 0 {
			sleepCtx(ctx, wait)
		}
	}

	if d.limiter != nil && !d.limiter.Allow(ctx, subscriberID, d.limit) {
		sleepCtx(ctx, d.delay)
	}

	d.mu.Lock()
	now := time.Now()
	d.lastSend[subscriberID] = now
	// Entries past the delay window impose no wait, so drop them
	// instead of letting the map grow with every subscriber ever seen.
	for id, last := range d.lastSend {
		if now.Sub(last) > d.delay {
			delete(d.lastSend, id)
		}
	}
	d.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
