// Package scheduler drives the periodic and on-demand polling cycles.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/listingwatch/listingwatch/internal/domain"
	"github.com/listingwatch/listingwatch/internal/market"
	"github.com/listingwatch/listingwatch/internal/notify"
	"github.com/listingwatch/listingwatch/internal/recovery"
)

// ErrUnsupportedURL is returned by SearchNow when no marketplace client
// accepts the URL. During background cycles unsupported queries are
// skipped silently instead.
var ErrUnsupportedURL = errors.New("no marketplace client accepts this url")

// Store is the subset of the subscription store the scheduler reads.
type Store interface {
	ListActiveSubscribers(ctx context.Context) ([]domain.Subscriber, error)
	ListQueries(ctx context.Context, subscriberID string) ([]domain.Query, error)
}

// Scheduler walks all (subscriber, query) pairs sequentially each
// cycle. Sequential processing is deliberate: it keeps marketplace
// request rates low and makes cycles deterministic.
type Scheduler struct {
	store      Store
	registry   *market.Registry
	controller *recovery.Controller
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	interval   time.Duration
	maxItems   int
}

func NewScheduler(
	store Store,
	registry *market.Registry,
	controller *recovery.Controller,
	dispatcher *notify.Dispatcher,
	logger *slog.Logger,
	interval time.Duration,
	maxItems int,
) *Scheduler {
	if interval <= 0 {
		interval = 300 * time.Second
	}
	if maxItems <= 0 {
		maxItems = 10
	}
	return &Scheduler{
		store:      store,
		registry:   registry,
		controller: controller,
		dispatcher: dispatcher,
		logger:     logger,
		interval:   interval,
		maxItems:   maxItems,
	}
}

// Start runs poll cycles on the configured interval until the context
// is cancelled. Cancellation is checked between cycles only; a cycle
// already in flight is allowed to finish.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("poll scheduler started",
		"interval", s.interval,
		"max_items_per_check", s.maxItems,
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("poll scheduler stopped")
			return
		case <-ticker.C:
			// The cycle runs on a detached context so cancellation
			// takes effect between cycles, not mid-fetch.
			if err := s.RunCycle(context.WithoutCancel(ctx)); err != nil {
				s.logger.Error("poll cycle failed", "error", err)
			}
		}
	}
}

// task is one unit of per-cycle work. attempt counts how many times the
// query has already been tried this cycle; the work queue never accepts
// a task past attempt 1, bounding work per cycle.
type task struct {
	query   domain.Query
	attempt int
}

// RunCycle walks every non-paused subscriber and each of its queries in
// insertion order, fetching new items and notifying. A failing query
// never prevents its siblings from being processed.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	start := time.Now()

	subscribers, err := s.store.ListActiveSubscribers(ctx)
	if err != nil {
		return fmt.Errorf("listing subscribers: %w", err)
	}

	var queryCount, itemCount int
	for _, sub := range subscribers {
		queries, err := s.store.ListQueries(ctx, sub.ID)
		if err != nil {
			s.logger.Error("failed to list queries",
				"subscriber_id", sub.ID,
				"error", err,
			)
			continue
		}

		queryCount += len(queries)
		itemCount += s.runSubscriber(ctx, sub, queries)
	}

	s.logger.Info("poll cycle complete",
		"subscribers", len(subscribers),
		"queries", queryCount,
		"new_items", itemCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// runSubscriber drains a bounded work queue of the subscriber's
// queries. A query the recovery controller deems retryable is pushed
// back once with attempt=1 and retried later in the same cycle, never a
// second time.
func (s *Scheduler) runSubscriber(ctx context.Context, sub domain.Subscriber, queries []domain.Query) int {
	queue := make([]task, 0, len(queries))
	for _, q := range queries {
		queue = append(queue, task{query: q})
	}

	var sent int
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		client := s.registry.Resolve(t.query.URL)
		if client == nil {
			// Unsupported marketplace, not an error.
			s.logger.Debug("skipping unsupported query url",
				"subscriber_id", sub.ID,
				"url", t.query.URL,
			)
			continue
		}

		items, err := client.NewItems(ctx, t.query.URL, sub.ID, s.maxItems)
		if err != nil {
			if t.attempt == 0 && s.controller.ShouldRetry(client, err) {
				queue = append(queue, task{query: t.query, attempt: 1})
				continue
			}

			s.logger.Error("query check failed",
				"subscriber_id", sub.ID,
				"marketplace", client.Name(),
				"url", t.query.URL,
				"attempt", t.attempt+1,
				"class", string(recovery.Classify(err)),
				"error", err,
			)
			s.dispatcher.NotifyError(ctx, sub.ID, t.query.URL, userErrorMessage(t.query.URL, err))
			continue
		}

		items = filterPriceBounds(sub, items)
		for _, item := range items {
			text := "🆕 New item found!\n\n" + client.FormatMessage(item, t.query.URL)
			s.dispatcher.NotifyItem(ctx, sub.ID, item, text)
		}

		if len(items) > 0 {
			s.logger.Info("sent new item notifications",
				"subscriber_id", sub.ID,
				"url", t.query.URL,
				"count", len(items),
			)
			sent += len(items)
		}
	}

	return sent
}

// SearchNow runs the fetch pipeline for one URL synchronously. It
// bypasses the dedup ledger entirely: results are returned regardless
// of seen state and nothing is recorded, so a background cycle that
// runs afterwards will still treat those items as new.
func (s *Scheduler) SearchNow(ctx context.Context, url string, maxItems int) ([]domain.Item, market.Client, error) {
	client := s.registry.Resolve(url)
	if client == nil {
		return nil, nil, ErrUnsupportedURL
	}

	if maxItems <= 0 || maxItems > s.maxItems {
		maxItems = s.maxItems
	}

	items, err := client.Search(ctx, url, maxItems)
	if err != nil {
		return nil, client, fmt.Errorf("searching %s: %w", client.Name(), err)
	}
	return items, client, nil
}

// filterPriceBounds drops items outside the subscriber's optional price
// range. Items whose price cannot be parsed pass through: a formatting
// quirk on the marketplace side must not silently hide listings.
// Filtering happens after the dedup ledger has recorded the items, so
// changing the bounds later never resurfaces old listings.
func filterPriceBounds(sub domain.Subscriber, items []domain.Item) []domain.Item {
	if sub.PriceMin == nil && sub.PriceMax == nil {
		return items
	}

	kept := items[:0]
	for _, item := range items {
		price, err := strconv.ParseFloat(item.Price, 64)
		if err != nil {
			kept = append(kept, item)
			continue
		}
		if sub.PriceMin != nil && price < *sub.PriceMin {
			continue
		}
		if sub.PriceMax != nil && price > *sub.PriceMax {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// userErrorMessage produces the short, subscriber-facing description of
// a query failure. Raw transport errors are never shown verbatim.
func userErrorMessage(url string, err error) string {
	var reason string
	switch recovery.Classify(err) {
	case recovery.ClassBlocked:
		reason = "the marketplace is temporarily blocking our requests"
	case recovery.ClassUnauthorized:
		reason = "the marketplace rejected our session"
	case recovery.ClassStore:
		reason = "an internal storage error occurred"
	default:
		reason = "the marketplace could not be reached"
	}
	return fmt.Sprintf("⚠️ Could not check %s — %s. Will retry on the next cycle.", url, reason)
}
