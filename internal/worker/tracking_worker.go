package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orderwarden/internal/model"
	"orderwarden/internal/service"
	"orderwarden/internal/store"
)

const (
	DefaultInterval  = 10 * time.Minute
	DefaultBatchSize = 5
)

type StaleLister interface {
	ListStale(ctx context.Context, before time.Time, limit int) ([]store.OwnedOrder, error)
}

type Refresher interface {
	Refresh(ctx context.Context, owned store.OwnedOrder) (model.Order, error)
}

// TrackingWorker periodically re-checks in-flight orders in small batches.
type TrackingWorker struct {
	orders    StaleLister
	tracker   Refresher
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

func NewTrackingWorker(orders StaleLister, tracker Refresher, interval time.Duration, batchSize int) *TrackingWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &TrackingWorker{
		orders:    orders,
		tracker:   tracker,
		interval:  interval,
		batchSize: batchSize,
		now:       time.Now,
	}
}

func (w *TrackingWorker) Start(ctx context.Context) {
	slog.Info("starting tracking worker", "interval", w.interval, "batch", w.batchSize)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("tracking worker stopped")
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				slog.Error("batch processing failed", "error", err)
			}
		}
	}
}

func (w *TrackingWorker) processBatch(ctx context.Context) error {
	orders, err := w.orders.ListStale(ctx, w.now().Add(-w.interval), w.batchSize)
	if err != nil {
		return fmt.Errorf("list stale orders: %w", err)
	}

	for _, owned := range orders {
		if ctx.Err() != nil {
			return nil
		}
		updated, err := w.tracker.Refresh(ctx, owned)
		if err != nil {
			if errors.Is(err, service.ErrRateLimited) {
				slog.Warn("rate limited, stopping batch", "order", owned.Order.OrderID)
				return nil
			}
			slog.Error("failed to refresh tracking", "order", owned.Order.OrderID, "error", err)
			continue
		}
		slog.Info("order updated",
			"order", updated.OrderID,
			"status", updated.LastStatus,
			"risk", updated.RiskLevel,
		)
	}

	return nil
}
