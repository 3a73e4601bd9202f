package scheduler

import (
	"context"
	"log/slog"
	"time"

	ws "github.com/listingwatch/listingwatch/internal/websocket"
	"github.com/robfig/cron/v3"
)

// SweepStore is the retention side of the store.
type SweepStore interface {
	CleanupOldSeenItems(ctx context.Context, daysOld int) (int64, error)
}

// Sweeper runs the daily seen-item retention sweep. It is scheduled
// independently of the poll cycle and never blocks it; dedup state for
// removed queries is handled by cascade delete, so the sweep only ever
// evicts old records.
type Sweeper struct {
	store         SweepStore
	hub           *ws.Hub // optional
	logger        *slog.Logger
	retentionDays int
	cron          *cron.Cron
}

func NewSweeper(store SweepStore, hub *ws.Hub, logger *slog.Logger, retentionDays int) *Sweeper {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Sweeper{
		store:         store,
		hub:           hub,
		logger:        logger,
		retentionDays: retentionDays,
	}
}

// Start schedules the sweep daily at 03:00 and stops it when the
// context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("retention sweeper scheduled",
		"retention_days", s.retentionDays,
	)

	go func() {
		<-ctx.Done()
		s.cron.Stop()
		s.logger.Info("retention sweeper stopped")
	}()

	return nil
}

// RunOnce performs a single retention sweep.
func (s *Sweeper) RunOnce(ctx context.Context) {
	removed, err := s.store.CleanupOldSeenItems(ctx, s.retentionDays)
	if err != nil {
		s.logger.Error("retention sweep failed", "error", err)
		return
	}

	if removed > 0 {
		s.logger.Info("retention sweep removed old seen items",
			"removed", removed,
			"retention_days", s.retentionDays,
		)
		if s.hub != nil {
			s.hub.Broadcast(ws.Event{
				Type:      ws.EventSweep,
				Removed:   removed,
				Timestamp: time.Now().UTC(),
			})
		}
	}
}
