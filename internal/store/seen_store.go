package store

import (
	"context"
	"fmt"

	"github.com/listingwatch/listingwatch/internal/domain"
)

// MarkSeen records that an item has been observed for a (subscriber,
// query) pair. Marking an already-seen item is a no-op, never an error,
// which makes concurrent calls from the poll cycle and on-demand paths
// safe without external locking.
func (s *PostgresStore) MarkSeen(ctx context.Context, subscriberID, url, itemID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO seen_items (subscriber_id, url, item_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (subscriber_id, url, item_id) DO NOTHING
	`, subscriberID, url, itemID)
	if err != nil {
		return fmt.Errorf("inserting seen item: %w", err)
	}
	return nil
}

// IsNew reports whether an item has never been seen for the given
// (subscriber, query) pair.
func (s *PostgresStore) IsNew(ctx context.Context, subscriberID, url, itemID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM seen_items
			WHERE subscriber_id = $1 AND url = $2 AND item_id = $3
		)
	`, subscriberID, url, itemID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking seen item: %w", err)
	}
	return !exists, nil
}

// CleanupOldSeenItems deletes seen records older than daysOld days and
// returns the number removed. Queries and subscribers are never touched.
func (s *PostgresStore) CleanupOldSeenItems(ctx context.Context, daysOld int) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM seen_items
		WHERE seen_at < NOW() - make_interval(days => $1)
	`, daysOld)
	if err != nil {
		return 0, fmt.Errorf("deleting old seen items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Stats returns store-wide counts for the status endpoint.
func (s *PostgresStore) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM subscribers),
			(SELECT COUNT(*) FROM queries),
			(SELECT COUNT(*) FROM seen_items)
	`).Scan(&stats.SubscriberCount, &stats.QueryCount, &stats.SeenItemCount)
	if err != nil {
		return stats, fmt.Errorf("querying stats: %w", err)
	}
	return stats, nil
}
