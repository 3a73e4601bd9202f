package market

import (
	"context"
	"time"

	"github.com/listingwatch/listingwatch/internal/domain"
	"github.com/listingwatch/listingwatch/internal/recovery"
)

// filterNew applies the dedup ledger and the look-back window to
// fetched items. Each item is judged and durably marked seen before the
// next one is considered, so a crash mid-list never loses seen-state
// for items already processed. Stale back-catalog matches are marked
// but not returned, so a fresh subscription doesn't flood the
// subscriber with old listings.
func filterNew(
	ctx context.Context,
	ledger Ledger,
	now time.Time,
	lookback time.Duration,
	subscriberID, queryURL string,
	items []domain.Item,
) ([]domain.Item, error) {
	var fresh []domain.Item
	for _, item := range items {
		isNew, err := ledger.IsNew(ctx, subscriberID, queryURL, item.ID)
		if err != nil {
			return nil, recovery.NewError(recovery.ClassStore, "checking seen item", err)
		}
		if !isNew {
			continue
		}

		if err := ledger.MarkSeen(ctx, subscriberID, queryURL, item.ID); err != nil {
			return nil, recovery.NewError(recovery.ClassStore, "recording seen item", err)
		}

		if now.Sub(item.ListedAt) <= lookback {
			fresh = append(fresh, item)
		}
	}
	return fresh, nil
}
