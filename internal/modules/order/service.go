package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/tmwansa/markethub-backend/internal/modules/bundle"
	"github.com/tmwansa/markethub-backend/internal/modules/inventory"
	"github.com/tmwansa/markethub-backend/internal/modules/notification"
	"github.com/tmwansa/markethub-backend/internal/modules/shipping"
)

// Service defines the order placement and fulfillment use cases.
type Service interface {
	// CreateOrder validates the request, persists the order atomically,
	// then reserves stock per line outside that transaction. A reservation
	// failure leaves the committed order cancelled, never half-reserved.
	CreateOrder(ctx context.Context, req CreateRequest) (*Order, error)

	// UpdateStatus records a status transition. Moving to shipped fulfills
	// every variant line's reservation first.
	UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest) (*Order, error)

	// CancelOrder cancels a pending or processing order, releasing its
	// reservations best-effort.
	CancelOrder(ctx context.Context, id int64, reason string) (*Order, error)

	// GetOrder retrieves an order with items and history.
	GetOrder(ctx context.Context, id int64) (*Order, error)

	// GetUserOrders returns a user's orders, newest first.
	GetUserOrders(ctx context.Context, userID int64) ([]*Order, error)

	// ListOrders pages the order listing with filters.
	ListOrders(ctx context.Context, f Filter) (*PaginatedOrders, error)

	// OrdersByStatus returns all orders currently in a status.
	OrdersByStatus(ctx context.Context, status Status) ([]*Order, error)

	// SalesSummary aggregates non-cancelled orders over a date range.
	SalesSummary(ctx context.Context, start, end time.Time) (*SalesSummary, error)

	// StatusBreakdown counts orders and revenue per status over a range.
	StatusBreakdown(ctx context.Context, start, end time.Time) ([]*StatusBreakdownRow, error)
}

type service struct {
	repo       Repository
	inventory  InventoryGateway
	bundles    BundleGateway
	shipping   ShippingGateway
	commission CommissionGateway
	bus        EventBus
}

// NewService wires the orchestrator with its collaborators.
func NewService(repo Repository, inv InventoryGateway, bundles BundleGateway,
	ship ShippingGateway, comm CommissionGateway, bus EventBus) Service {
	return &service{
		repo:       repo,
		inventory:  inv,
		bundles:    bundles,
		shipping:   ship,
		commission: comm,
		bus:        bus,
	}
}

// linePlan carries the per-line reservation plan from the pre-transaction
// checks into the post-commit reservation phase.
type linePlan struct {
	variantID  *int64
	bundleID   *int64
	quantity   int
	locationID int64
}

func (s *service) CreateOrder(ctx context.Context, req CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, E(KindInvalidRequest, "order must contain at least one item")
	}
	if req.UserID == 0 {
		return nil, E(KindInvalidRequest, "user_id is required")
	}

	// Phase 1: validation, before anything is persisted. A failure here
	// leaves no partial state.
	if req.ShippingMethodID != nil {
		if err := s.shipping.ValidateMethod(ctx, *req.ShippingMethodID); err != nil {
			switch {
			case errors.Is(err, shipping.ErrMethodNotFound):
				return nil, Wrap(KindNotFound, err, "shipping method %d not found", *req.ShippingMethodID)
			case errors.Is(err, shipping.ErrMethodInactive):
				return nil, Wrap(KindInvalidRequest, err, "shipping method %d is inactive", *req.ShippingMethodID)
			default:
				return nil, err
			}
		}
	}

	plans := make([]linePlan, 0, len(req.Items))
	for _, line := range req.Items {
		if (line.VariantID == nil) == (line.BundleID == nil) {
			return nil, E(KindInvalidRequest, "exactly one of variant_id or bundle_id is required per item")
		}
		if line.Quantity <= 0 {
			return nil, E(KindInvalidRequest, "quantity must be positive")
		}

		if line.BundleID != nil {
			if err := s.bundles.ValidateForOrder(ctx, *line.BundleID, line.Quantity); err != nil {
				return nil, Wrap(KindUnprocessable, err, "bundle %d rejected", *line.BundleID)
			}
			plans = append(plans, linePlan{bundleID: line.BundleID, quantity: line.Quantity})
			continue
		}

		locationID, err := s.inventory.FindFulfillmentLocation(ctx, *line.VariantID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if locationID == 0 {
			return nil, E(KindInsufficientInventory,
				"insufficient inventory for variant %d, requested %d", *line.VariantID, line.Quantity)
		}
		plans = append(plans, linePlan{variantID: line.VariantID, quantity: line.Quantity, locationID: locationID})
	}

	// Phase 2: one atomic unit of work. Variants are re-fetched here so
	// totals never act on the stale phase 1 reads, and the commission
	// split is attributed per line with the seller resolved from the
	// variant or bundle.
	var o *Order
	err := s.repo.WithinTx(ctx, func(tx TxStore) error {
		var subtotal, totalWeight float64
		items := make([]*Item, 0, len(plans))

		for _, plan := range plans {
			var (
				snapshot Item
				sellerID int64
			)
			if plan.variantID != nil {
				v, err := tx.VariantForOrder(ctx, *plan.variantID)
				if err != nil {
					return err
				}
				if v == nil {
					return E(KindNotFound, "variant %d not found", *plan.variantID)
				}
				snapshot = Item{
					VariantID:   plan.variantID,
					UnitPrice:   v.Price,
					ProductName: v.ProductName,
					SKU:         v.SKU,
				}
				sellerID = v.SellerID
				totalWeight += v.Weight * float64(plan.quantity)
			} else {
				b, err := tx.BundleForOrder(ctx, *plan.bundleID)
				if err != nil {
					return err
				}
				if b == nil {
					return E(KindNotFound, "bundle %d not found", *plan.bundleID)
				}
				snapshot = Item{
					BundleID:    plan.bundleID,
					UnitPrice:   b.Price,
					ProductName: b.Name,
					SKU:         b.SKU,
				}
				sellerID = b.SellerID
			}

			snapshot.Quantity = plan.quantity
			snapshot.LineTotal = round2(snapshot.UnitPrice * float64(plan.quantity))
			snapshot.SellerID = sellerID

			fee, sellerAmount, err := s.commission.SplitLine(ctx, snapshot.LineTotal, sellerID)
			if err != nil {
				return fmt.Errorf("commission for seller %d: %w", sellerID, err)
			}
			snapshot.PlatformFee = fee
			snapshot.SellerAmount = sellerAmount

			subtotal += snapshot.LineTotal
			item := snapshot
			items = append(items, &item)
		}
		subtotal = round2(subtotal)

		var shippingCost float64
		if req.ShippingMethodID != nil {
			var err error
			shippingCost, err = s.shipping.CalculateRate(ctx, *req.ShippingMethodID, subtotal, totalWeight)
			if err != nil {
				return fmt.Errorf("calculate shipping rate: %w", err)
			}
		}

		seq, err := tx.NextSequence(ctx)
		if err != nil {
			return err
		}

		o = &Order{
			ExternalRef:       fmt.Sprintf("ORD-%d-%04d", time.Now().Year(), seq),
			UserID:            req.UserID,
			Subtotal:          subtotal,
			ShippingAmount:    shippingCost,
			Total:             round2(subtotal + shippingCost),
			Status:            StatusPending,
			ShippingMethodID:  req.ShippingMethodID,
			BillingAddressID:  req.BillingAddressID,
			ShippingAddressID: req.ShippingAddressID,
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for _, item := range items {
			item.OrderID = o.ID
			if err := tx.InsertItem(ctx, item); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return tx.InsertStatusHistory(ctx, o.ID, StatusPending, "order placed")
	})
	if err != nil {
		return nil, err
	}

	// Phase 3: reserve stock outside the committed transaction. On
	// failure the order is compensated to cancelled, not rolled back.
	if err := s.reserveAll(ctx, o.ID, plans); err != nil {
		return nil, err
	}

	created, err := s.mustGet(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, notification.NewEvent(notification.EventOrderPlaced, map[string]interface{}{
		"order_id":     created.ID,
		"external_ref": created.ExternalRef,
		"user_id":      created.UserID,
		"total":        created.Total,
		"item_count":   len(created.Items),
	}))
	return created, nil
}

// reserveAll reserves each line sequentially. When a line fails, the
// reservations that already succeeded are released through the same path
// cancellation uses, and the order is transitioned to cancelled.
func (s *service) reserveAll(ctx context.Context, orderID int64, plans []linePlan) error {
	var reserved []linePlan
	for _, plan := range plans {
		var err error
		if plan.bundleID != nil {
			err = s.bundles.Reserve(ctx, *plan.bundleID, plan.quantity, orderID)
		} else {
			err = s.inventory.Reserve(ctx, *plan.variantID, plan.locationID, plan.quantity, orderID)
		}
		if err == nil {
			reserved = append(reserved, plan)
			continue
		}

		s.releasePlans(ctx, orderID, reserved)
		note := fmt.Sprintf("inventory reservation failed: %v", err)
		if uerr := s.repo.UpdateStatus(ctx, orderID, StatusCancelled, note); uerr != nil {
			slog.ErrorContext(ctx, "failed to cancel order after reservation failure",
				"order_id", orderID, "error", uerr)
		}

		if errors.Is(err, inventory.ErrInsufficientStock) || errors.Is(err, bundle.ErrUnavailable) {
			return Wrap(KindInsufficientInventory, err, "failed to reserve inventory for order %d", orderID)
		}
		return Wrap(KindUnprocessable, err, "failed to reserve inventory for order %d", orderID)
	}
	return nil
}

// releasePlans best-effort releases already-held reservations. Failures
// are logged, never propagated.
func (s *service) releasePlans(ctx context.Context, orderID int64, plans []linePlan) {
	for _, plan := range plans {
		var err error
		if plan.bundleID != nil {
			err = s.bundles.Release(ctx, *plan.bundleID, plan.quantity, orderID)
		} else {
			err = s.inventory.Release(ctx, *plan.variantID, plan.locationID, plan.quantity, orderID)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to release reservation",
				"order_id", orderID, "error", err)
		}
	}
}

func (s *service) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest) (*Order, error) {
	switch req.Status {
	case StatusPending, StatusProcessing, StatusShipped, StatusCancelled:
	default:
		return nil, E(KindInvalidRequest, "unknown status %q", req.Status)
	}

	o, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}

	// Moving to shipped converts every variant line's reservation into a
	// permanent decrement before the status is recorded.
	if req.Status == StatusShipped && o.Status != StatusShipped {
		for _, item := range o.Items {
			if item.VariantID == nil {
				continue
			}
			locationID, err := s.inventory.ReservedLocation(ctx, *item.VariantID)
			if err != nil {
				return nil, err
			}
			if locationID == 0 {
				return nil, E(KindInvalidState, "no reserved inventory for variant %s", item.SKU)
			}
			if err := s.inventory.Fulfill(ctx, *item.VariantID, locationID, item.Quantity, id); err != nil {
				if errors.Is(err, inventory.ErrNotReserved) {
					return nil, Wrap(KindInvalidState, err, "no reserved inventory for variant %s", item.SKU)
				}
				return nil, Wrap(KindUnprocessable, err, "failed to fulfill inventory for variant %s", item.SKU)
			}
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status, req.Note); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, notification.NewEvent(notification.EventOrderStatusChanged, map[string]interface{}{
		"order_id":     o.ID,
		"external_ref": o.ExternalRef,
		"user_id":      o.UserID,
		"old_status":   o.Status,
		"new_status":   req.Status,
	}))
	return s.mustGet(ctx, id)
}

func (s *service) CancelOrder(ctx context.Context, id int64, reason string) (*Order, error) {
	o, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending && o.Status != StatusProcessing {
		return nil, E(KindInvalidState, "only pending or processing orders can be cancelled (current: %s)", o.Status)
	}

	// Releases are best-effort per line: a failure must never trap the
	// order in an uncancellable state.
	for _, item := range o.Items {
		if item.BundleID != nil {
			if err := s.bundles.Release(ctx, *item.BundleID, item.Quantity, id); err != nil {
				slog.ErrorContext(ctx, "failed to release bundle reservation",
					"order_id", id, "bundle_id", *item.BundleID, "error", err)
			}
			continue
		}

		locationID, err := s.inventory.ReservedLocation(ctx, *item.VariantID)
		if err != nil || locationID == 0 {
			slog.WarnContext(ctx, "no reserved inventory to release",
				"order_id", id, "variant_id", *item.VariantID, "error", err)
			continue
		}
		if err := s.inventory.Release(ctx, *item.VariantID, locationID, item.Quantity, id); err != nil {
			slog.ErrorContext(ctx, "failed to release reservation",
				"order_id", id, "variant_id", *item.VariantID, "error", err)
		}
	}

	note := reason
	if note == "" {
		note = "cancelled by user"
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled, note); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, notification.NewEvent(notification.EventOrderCancelled, map[string]interface{}{
		"order_id":     o.ID,
		"external_ref": o.ExternalRef,
		"user_id":      o.UserID,
		"reason":       note,
	}))
	return s.mustGet(ctx, id)
}

func (s *service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return s.mustGet(ctx, id)
}

func (s *service) GetUserOrders(ctx context.Context, userID int64) ([]*Order, error) {
	return s.repo.FindByUser(ctx, userID)
}

func (s *service) ListOrders(ctx context.Context, f Filter) (*PaginatedOrders, error) {
	return s.repo.FindWithFilters(ctx, f)
}

func (s *service) OrdersByStatus(ctx context.Context, status Status) ([]*Order, error) {
	return s.repo.FindByStatus(ctx, status)
}

func (s *service) SalesSummary(ctx context.Context, start, end time.Time) (*SalesSummary, error) {
	return s.repo.SalesSummary(ctx, start, end)
}

func (s *service) StatusBreakdown(ctx context.Context, start, end time.Time) ([]*StatusBreakdownRow, error) {
	return s.repo.StatusBreakdown(ctx, start, end)
}

func (s *service) mustGet(ctx context.Context, id int64) (*Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, E(KindNotFound, "order %d not found", id)
	}
	return o, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
