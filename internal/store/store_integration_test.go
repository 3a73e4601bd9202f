package store

import (
	"context"
	"os"
	"testing"
)

// setupIntegrationStore connects to the database named by
// TEST_DATABASE_URL, applies migrations, and wipes the tables. Skipped
// when the variable is unset so the suite runs without Postgres.
func setupIntegrationStore(t *testing.T) *PostgresStore {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := NewPostgres(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(s.Close)

	if err := s.RunMigrations(ctx, "../../migrations"); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	for _, table := range []string{"seen_items", "queries", "subscribers"} {
		if _, err := s.pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("wiping %s: %v", table, err)
		}
	}

	return s
}

func TestIntegration_MarkSeenIsIdempotent(t *testing.T) {
	s := setupIntegrationStore(t)
	ctx := context.Background()

	queryURL := "https://www.vinted.fr/catalog?search_text=coat"
	if _, err := s.AddQuery(ctx, "chat-1", queryURL); err != nil {
		t.Fatal(err)
	}

	if err := s.MarkSeen(ctx, "chat-1", queryURL, "item-1"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkSeen(ctx, "chat-1", queryURL, "item-1"); err != nil {
		t.Fatalf("second MarkSeen should be a no-op, got: %v", err)
	}

	isNew, err := s.IsNew(ctx, "chat-1", queryURL, "item-1")
	if err != nil {
		t.Fatal(err)
	}
	if isNew {
		t.Error("item should be seen after MarkSeen")
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SeenItemCount != 1 {
		t.Errorf("seen count = %d, want exactly 1 row", stats.SeenItemCount)
	}
}

func TestIntegration_PausedSubscriberExcludedFromListing(t *testing.T) {
	s := setupIntegrationStore(t)
	ctx := context.Background()

	queryURL := "https://www.vinted.fr/catalog?search_text=coat"
	if _, err := s.AddQuery(ctx, "chat-active", queryURL); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddQuery(ctx, "chat-paused", queryURL); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkSeen(ctx, "chat-paused", queryURL, "item-1"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPaused(ctx, "chat-paused", true); err != nil {
		t.Fatal(err)
	}

	subs, err := s.ListActiveSubscribers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].ID != "chat-active" {
		t.Errorf("active subscribers = %v, want only chat-active", subs)
	}

	// Pausing must leave the subscriber's seen records intact
	isNew, err := s.IsNew(ctx, "chat-paused", queryURL, "item-1")
	if err != nil {
		t.Fatal(err)
	}
	if isNew {
		t.Error("pausing should not touch seen records")
	}
}

func TestIntegration_RemoveQueryCascadesSeenRecords(t *testing.T) {
	s := setupIntegrationStore(t)
	ctx := context.Background()

	queryURL := "https://www.vinted.fr/catalog?search_text=coat"
	if _, err := s.AddQuery(ctx, "chat-1", queryURL); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"item-1", "item-2"} {
		if err := s.MarkSeen(ctx, "chat-1", queryURL, id); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.RemoveQuery(ctx, "chat-1", queryURL)
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("expected the query to be found")
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SeenItemCount != 0 {
		t.Errorf("seen count after cascade = %d, want 0", stats.SeenItemCount)
	}
	if stats.QueryCount != 0 {
		t.Errorf("query count = %d, want 0", stats.QueryCount)
	}

	removed, err = s.RemoveQuery(ctx, "chat-1", queryURL)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("removing an absent query should report not found")
	}
}

func TestIntegration_SweepDeletesOnlyOldRows(t *testing.T) {
	s := setupIntegrationStore(t)
	ctx := context.Background()

	queryURL := "https://www.vinted.fr/catalog?search_text=coat"
	if _, err := s.AddQuery(ctx, "chat-1", queryURL); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"item-old", "item-recent"} {
		if err := s.MarkSeen(ctx, "chat-1", queryURL, id); err != nil {
			t.Fatal(err)
		}
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE seen_items SET seen_at = NOW() - INTERVAL '40 days'
		WHERE item_id = 'item-old'
	`)
	if err != nil {
		t.Fatal(err)
	}

	removed, err := s.CleanupOldSeenItems(ctx, 30)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("sweep removed %d rows, want exactly 1", removed)
	}

	isNew, err := s.IsNew(ctx, "chat-1", queryURL, "item-recent")
	if err != nil {
		t.Fatal(err)
	}
	if isNew {
		t.Error("recent record should survive the sweep")
	}
	isNew, err = s.IsNew(ctx, "chat-1", queryURL, "item-old")
	if err != nil {
		t.Fatal(err)
	}
	if !isNew {
		t.Error("old record should be gone after the sweep")
	}
}
