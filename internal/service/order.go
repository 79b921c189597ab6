package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"orderwarden/internal/model"
	"orderwarden/internal/store"
)

var ErrInvalidOrder = errors.New("invalid order")

type OrderService struct {
	store    store.Store
	validate *validator.Validate
}

func NewOrderService(s store.Store) *OrderService {
	return &OrderService{store: s, validate: validator.New()}
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.store.ListOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Create stores a new order. A carrier left empty is detected from the
// tracking number.
func (s *OrderService) Create(ctx context.Context, userID string, in model.NewOrder) (model.Order, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.TrackingNumber = strings.TrimSpace(in.TrackingNumber)
	in.Carrier = strings.ToLower(strings.TrimSpace(in.Carrier))

	if err := s.validate.Struct(in); err != nil {
		return model.Order{}, fmt.Errorf("%w: %s", ErrInvalidOrder, validationMessage(err))
	}
	if in.Carrier == "" {
		in.Carrier = DetectCarrier(in.TrackingNumber)
	}

	o, err := s.store.CreateOrder(ctx, userID, in)
	if err != nil {
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteOrder(ctx, userID, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "max":
			parts = append(parts, fe.Field()+" must be at most "+fe.Param()+" characters")
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, ", ")
}
