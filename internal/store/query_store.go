package store

import (
	"context"
	"fmt"

	"github.com/listingwatch/listingwatch/internal/domain"
)

// AddQuery saves a search URL for a subscriber. Returns false if the
// (subscriber, url) pair already exists.
func (s *PostgresStore) AddQuery(ctx context.Context, subscriberID, url string) (bool, error) {
	if err := s.EnsureSubscriber(ctx, subscriberID); err != nil {
		return false, err
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO queries (subscriber_id, url)
		VALUES ($1, $2)
		ON CONFLICT (subscriber_id, url) DO NOTHING
	`, subscriberID, url)
	if err != nil {
		return false, fmt.Errorf("inserting query: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListQueries returns a subscriber's saved searches in insertion order.
func (s *PostgresStore) ListQueries(ctx context.Context, subscriberID string) ([]domain.Query, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT subscriber_id, url, added_at
		FROM queries
		WHERE subscriber_id = $1
		ORDER BY added_at, url
	`, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("querying queries: %w", err)
	}
	defer rows.Close()

	var queries []domain.Query
	for rows.Next() {
		var q domain.Query
		if err := rows.Scan(&q.SubscriberID, &q.URL, &q.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning query: %w", err)
		}
		queries = append(queries, q)
	}

	if queries == nil {
		queries = []domain.Query{}
	}

	return queries, nil
}

// RemoveQuery deletes a saved search and all of its seen-item records in
// one transaction, so the dedup ledger never holds rows for a query that
// no longer exists. Returns false if the query was not found.
func (s *PostgresStore) RemoveQuery(ctx context.Context, subscriberID, url string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM seen_items
		WHERE subscriber_id = $1 AND url = $2
	`, subscriberID, url)
	if err != nil {
		return false, fmt.Errorf("deleting seen items: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM queries
		WHERE subscriber_id = $1 AND url = $2
	`, subscriberID, url)
	if err != nil {
		return false, fmt.Errorf("deleting query: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
