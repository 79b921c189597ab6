package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"orderwarden/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateOrder validates the add-order form, creates the order and inserts it
// into the collection once the API confirms it.
func (d *Dashboard) CreateOrder(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.TrackingNumber = strings.TrimSpace(in.TrackingNumber)
	in.Carrier = strings.TrimSpace(in.Carrier)

	if err := validate.Struct(in); err != nil {
		msg := describeValidation(err)
		d.notes.Error(msg)
		return nil, fmt.Errorf("%w: %s", ErrInvalidOrder, msg)
	}

	done, err := d.begin("create")
	if err != nil {
		return nil, err
	}
	defer done()

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	created, err := d.api.CreateOrder(ctx, in)
	if err != nil {
		return nil, d.fail("Adding order", err)
	}

	d.mu.Lock()
	d.vm.AddOrder(*created)
	d.mu.Unlock()

	d.notes.Success("Order " + created.OrderID + " added")
	return created, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	name := map[string]string{
		"OrderID":        "Order ID",
		"TrackingNumber": "Tracking number",
		"Carrier":        "Carrier",
	}[fe.Field()]
	if name == "" {
		name = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "max":
		return name + " must be at most " + fe.Param() + " characters"
	default:
		return name + " is invalid"
	}
}

// DeletePolicy decides what happens to the local collection when a delete
// request fails.
type DeletePolicy int

const (
	// DeleteConfirmed removes only ids the API confirmed from the
	// collection. Every attempted id is deselected either way.
	DeleteConfirmed DeletePolicy = iota
	// DeleteBestEffort removes every attempted id, whatever the outcome, so
	// nothing stays selected after a bulk action. Nothing is rolled back.
	DeleteBestEffort
)

func (p DeletePolicy) String() string {
	if p == DeleteBestEffort {
		return "best-effort"
	}
	return "confirmed"
}

type DeleteResult struct {
	Attempted []string
	Deleted   []string
	Failed    []string
}

func (r DeleteResult) Succeeded() int {
	return len(r.Deleted)
}

// Delete issues one request per id, sequentially, and applies policy to
// the local state afterwards. The returned error joins every per-id
// failure; the result is always valid.
func (d *Dashboard) Delete(ctx context.Context, ids []string, policy DeletePolicy) (DeleteResult, error) {
	var (
		res  DeleteResult
		errs []error
		busy []string
	)

	for _, id := range ids {
		done, err := d.begin(deleteKey(id))
		if err != nil {
			res.Failed = append(res.Failed, id)
			busy = append(busy, id)
			errs = append(errs, fmt.Errorf("delete %s: %w", id, err))
			continue
		}

		res.Attempted = append(res.Attempted, id)
		err = d.deleteOne(ctx, id)
		done()

		if err != nil {
			res.Failed = append(res.Failed, id)
			errs = append(errs, err)
			if errors.Is(err, ErrUnauthenticated) || ctx.Err() != nil {
				break
			}
			continue
		}
		res.Deleted = append(res.Deleted, id)
	}

	d.mu.Lock()
	if policy == DeleteBestEffort {
		d.vm.Remove(res.Attempted...)
	} else {
		d.vm.Remove(res.Deleted...)
		d.vm.Deselect(res.Attempted...)
	}
	// A delete already in flight owns the order; only drop it from the
	// selection.
	d.vm.Deselect(busy...)
	d.mu.Unlock()

	err := errors.Join(errs...)
	d.report(res, err, len(ids))

	d.log.Info("orders deleted",
		"policy", policy.String(),
		"attempted", len(res.Attempted),
		"deleted", len(res.Deleted),
		"failed", len(res.Failed),
	)
	return res, err
}

func (d *Dashboard) deleteOne(ctx context.Context, id string) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	return d.api.DeleteOrder(ctx, id)
}

func (d *Dashboard) report(res DeleteResult, err error, requested int) {
	if errors.Is(err, ErrUnauthenticated) {
		d.signIn()
		return
	}
	if requested == 1 {
		if err != nil {
			d.fail("Deleting order", err)
			return
		}
		d.notes.Success("Order deleted")
		return
	}
	if err != nil {
		d.notes.Error(fmt.Sprintf("Deleted %d of %d orders", res.Succeeded(), requested))
		d.log.Error("bulk delete incomplete", "error", err)
		return
	}
	d.notes.Success(fmt.Sprintf("Deleted %d orders", res.Succeeded()))
}

// DeleteOne deletes a single order and keeps it on failure.
func (d *Dashboard) DeleteOne(ctx context.Context, id string) error {
	_, err := d.Delete(ctx, []string{id}, DeleteConfirmed)
	return err
}

// DeleteSelected deletes every selected order best-effort.
func (d *Dashboard) DeleteSelected(ctx context.Context) (DeleteResult, error) {
	d.mu.Lock()
	ids := d.vm.Selected()
	d.mu.Unlock()

	if len(ids) == 0 {
		return DeleteResult{}, nil
	}
	return d.Delete(ctx, ids, DeleteBestEffort)
}

// Check asks the backend to re-poll the carrier for one order and replaces
// the order in place with the result.
func (d *Dashboard) Check(ctx context.Context, id string) (*model.CheckResult, error) {
	done, err := d.begin(checkKey(id))
	if err != nil {
		return nil, err
	}
	defer done()

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	res, err := d.api.CheckTracking(ctx, id)
	if err != nil {
		return nil, d.fail("Tracking check", err)
	}

	d.mu.Lock()
	d.vm.ReplaceOrder(res.Order)
	d.mu.Unlock()

	switch {
	case res.RecommendedMessage != "" && res.Order.RiskLevel == model.RiskHigh:
		d.notes.Error(res.RecommendedMessage)
	case res.RecommendedMessage != "":
		d.notes.Info(res.RecommendedMessage)
	default:
		d.notes.Success(fmt.Sprintf("%s: %s", res.Order.OrderID, res.Order.LastStatus.Label()))
	}
	return res, nil
}
