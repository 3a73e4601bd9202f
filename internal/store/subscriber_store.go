package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/listingwatch/listingwatch/internal/domain"
)

// EnsureSubscriber creates the subscriber if it does not exist yet.
// Subscribers are registered on first interaction and never hard-deleted.
func (s *PostgresStore) EnsureSubscriber(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscribers (id)
		VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, id)
	if err != nil {
		return fmt.Errorf("ensuring subscriber: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSubscriber(ctx context.Context, id string) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	err := s.pool.QueryRow(ctx, `
		SELECT id, paused, price_min, price_max, created_at
		FROM subscribers WHERE id = $1
	`, id).Scan(&sub.ID, &sub.Paused, &sub.PriceMin, &sub.PriceMax, &sub.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying subscriber: %w", err)
	}
	return &sub, nil
}

// ListActiveSubscribers returns all non-paused subscribers in creation
// order. The order is stable so poll cycles are deterministic.
func (s *PostgresStore) ListActiveSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, paused, price_min, price_max, created_at
		FROM subscribers
		WHERE paused = false
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []domain.Subscriber
	for rows.Next() {
		var sub domain.Subscriber
		err := rows.Scan(&sub.ID, &sub.Paused, &sub.PriceMin, &sub.PriceMax, &sub.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		subscribers = append(subscribers, sub)
	}

	if subscribers == nil {
		subscribers = []domain.Subscriber{}
	}

	return subscribers, nil
}

// SetPaused pauses or resumes a subscriber. Paused subscribers are
// skipped by the poll cycle and receive no notifications.
func (s *PostgresStore) SetPaused(ctx context.Context, id string, paused bool) error {
	if err := s.EnsureSubscriber(ctx, id); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE subscribers SET paused = $2 WHERE id = $1
	`, id, paused)
	if err != nil {
		return fmt.Errorf("updating paused flag: %w", err)
	}
	return nil
}

// UpdatePriceBounds sets the optional price filters for a subscriber.
// Nil values clear the corresponding bound.
func (s *PostgresStore) UpdatePriceBounds(ctx context.Context, id string, min, max *float64) (*domain.Subscriber, error) {
	if err := s.EnsureSubscriber(ctx, id); err != nil {
		return nil, err
	}

	var sub domain.Subscriber
	err := s.pool.QueryRow(ctx, `
		UPDATE subscribers SET price_min = $2, price_max = $3
		WHERE id = $1
		RETURNING id, paused, price_min, price_max, created_at
	`, id, min, max).Scan(&sub.ID, &sub.Paused, &sub.PriceMin, &sub.PriceMax, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("updating price bounds: %w", err)
	}
	return &sub, nil
}
