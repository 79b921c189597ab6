package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderwarden/internal/model"
	"orderwarden/internal/store"
)

type TrackingService struct {
	store   store.Store
	carrier Carrier
	now     func() time.Time
}

func NewTrackingService(s store.Store, carrier Carrier, now func() time.Time) *TrackingService {
	if now == nil {
		now = time.Now
	}
	return &TrackingService{store: s, carrier: carrier, now: now}
}

// Check looks up the current tracking status of one of the user's orders,
// stores it with a fresh risk level and returns the suggested buyer message.
func (s *TrackingService) Check(ctx context.Context, userID, id string) (model.CheckResult, error) {
	o, err := s.store.GetOrder(ctx, userID, id)
	if err != nil {
		return model.CheckResult{}, fmt.Errorf("get order: %w", err)
	}

	updated, a, err := s.refresh(ctx, userID, o)
	if err != nil {
		return model.CheckResult{}, err
	}
	return model.CheckResult{Order: updated, RecommendedMessage: a.Message}, nil
}

// Refresh re-checks an order on behalf of its owner.
func (s *TrackingService) Refresh(ctx context.Context, owned store.OwnedOrder) (model.Order, error) {
	updated, _, err := s.refresh(ctx, owned.UserID, owned.Order)
	return updated, err
}

func (s *TrackingService) refresh(ctx context.Context, userID string, o model.Order) (model.Order, Assessment, error) {
	carrier := o.Carrier
	if carrier == "" {
		carrier = DetectCarrier(o.TrackingNumber)
	}

	info, err := s.carrier.Track(ctx, carrier, o.TrackingNumber)
	switch {
	case errors.Is(err, ErrNotRegistered):
		info = TrackingInfo{Status: model.StatusUnknown, EventAt: s.now()}
	case err != nil:
		return model.Order{}, Assessment{}, fmt.Errorf("track %s: %w", o.TrackingNumber, err)
	}

	status := info.Status.Normalize()
	eventAt := info.EventAt
	if eventAt.IsZero() {
		eventAt = s.now()
	}
	a := Assess(status, eventAt, s.now())

	updated, err := s.store.UpdateTracking(ctx, userID, o.ID, store.TrackingUpdate{
		Carrier:      carrier,
		Status:       status,
		LastUpdateAt: eventAt,
		RiskLevel:    a.Level,
	})
	if err != nil {
		return model.Order{}, Assessment{}, fmt.Errorf("update tracking: %w", err)
	}
	return updated, a, nil
}
